package camera

import (
	"math"

	"go.viam.com/cameramodels/utils"
)

// distortionKind is the lens distortion applied on the normalized plane.
type distortionKind int

const (
	noDistortion distortionKind = iota
	// polynomialRadial scales by 1 + k1*r² + ... + kn*r²ⁿ.
	polynomialRadial
	// brownConrady is radial (k1, k2) plus tangential (p1, p2) distortion.
	brownConrady
	// rationalBrownConrady is brownConrady with a rational radial term (k1..k6).
	rationalBrownConrady
	// thinPrism is brownConrady with k3, k4 and thin prism (sx1, sy1) terms.
	thinPrism
	// fieldOfView is the single parameter FOV model of Devernay and Faugeras.
	fieldOfView
)

const (
	maxDistortionParams = 8

	maxUndistortIterations = 100
	undistortTolerance     = 1e-12

	// below this, the FOV model switches to its series expansions.
	fovEpsilon = 1e-4
)

// distortion selects a distortion kind. n is the number of radial coefficients of a
// polynomialRadial distortion and is ignored by the other kinds.
type distortion struct {
	kind distortionKind
	n    int
}

func (d distortion) numParams() int {
	switch d.kind {
	case noDistortion:
		return 0
	case polynomialRadial:
		return d.n
	case brownConrady:
		return 4
	case rationalBrownConrady, thinPrism:
		return 8
	case fieldOfView:
		return 1
	default:
		panic("unreachable distortion kind")
	}
}

func (d distortion) paramNames() []string {
	switch d.kind {
	case noDistortion:
		return nil
	case polynomialRadial:
		if d.n == 1 {
			return []string{"k"}
		}
		names := make([]string, d.n)
		for i := range names {
			names[i] = "k" + string(rune('1'+i))
		}
		return names
	case brownConrady:
		return []string{"k1", "k2", "p1", "p2"}
	case rationalBrownConrady:
		return []string{"k1", "k2", "p1", "p2", "k3", "k4", "k5", "k6"}
	case thinPrism:
		return []string{"k1", "k2", "p1", "p2", "k3", "k4", "sx1", "sy1"}
	case fieldOfView:
		return []string{"omega"}
	default:
		panic("unreachable distortion kind")
	}
}

// distort maps the undistorted normalized point (x, y) to its distorted position using the
// coefficients k. When jxy is non-nil it receives the row-major 2x2 Jacobian with respect to
// (x, y); when jk is non-empty it receives the row-major 2xnumParams Jacobian with respect to k.
func (d distortion) distort(k []float64, x, y float64, jxy *[4]float64, jk []float64) (float64, float64) {
	switch d.kind {
	case noDistortion:
		if jxy != nil {
			*jxy = [4]float64{1, 0, 0, 1}
		}
		return x, y
	case polynomialRadial:
		return distortPolynomialRadial(k[:d.n], x, y, jxy, jk)
	case brownConrady:
		r2 := x*x + y*y
		radial := 1 + r2*(k[0]+r2*k[1])
		dRadial := k[0] + 2*k[1]*r2
		if len(jk) > 0 {
			n := 4
			r4 := r2 * r2
			jk[0], jk[n+0] = x*r2, y*r2
			jk[1], jk[n+1] = x*r4, y*r4
			jk[2], jk[n+2] = 2*x*y, r2+2*y*y
			jk[3], jk[n+3] = r2+2*x*x, 2*x*y
		}
		return applyRadialTangential(x, y, radial, dRadial, k[2], k[3], 0, 0, jxy)
	case rationalBrownConrady:
		return distortRational(k, x, y, jxy, jk)
	case thinPrism:
		r2 := x*x + y*y
		r4 := r2 * r2
		r6 := r4 * r2
		r8 := r4 * r4
		radial := 1 + k[0]*r2 + k[1]*r4 + k[4]*r6 + k[5]*r8
		dRadial := k[0] + 2*k[1]*r2 + 3*k[4]*r4 + 4*k[5]*r6
		if len(jk) > 0 {
			n := 8
			jk[0], jk[n+0] = x*r2, y*r2
			jk[1], jk[n+1] = x*r4, y*r4
			jk[2], jk[n+2] = 2*x*y, r2+2*y*y
			jk[3], jk[n+3] = r2+2*x*x, 2*x*y
			jk[4], jk[n+4] = x*r6, y*r6
			jk[5], jk[n+5] = x*r8, y*r8
			jk[6], jk[n+6] = r2, 0
			jk[7], jk[n+7] = 0, r2
		}
		return applyRadialTangential(x, y, radial, dRadial, k[2], k[3], k[6], k[7], jxy)
	case fieldOfView:
		f, dfdr2, dfdw := fovFactor(x*x+y*y, k[0])
		if jxy != nil {
			*jxy = [4]float64{
				f + 2*x*x*dfdr2, 2 * x * y * dfdr2,
				2 * x * y * dfdr2, f + 2*y*y*dfdr2,
			}
		}
		if len(jk) > 0 {
			jk[0], jk[1] = x*dfdw, y*dfdw
		}
		return x * f, y * f
	default:
		panic("unreachable distortion kind")
	}
}

// undistort inverts distort with Newton-Raphson iterations starting from the distorted point.
func (d distortion) undistort(k []float64, xd, yd float64) (float64, float64) {
	if d.kind == noDistortion {
		return xd, yd
	}
	xu, yu := xd, yd
	var j [4]float64
	for i := 0; i < maxUndistortIterations; i++ {
		xEst, yEst := d.distort(k, xu, yu, &j, nil)
		errX := xEst - xd
		errY := yEst - yd
		if errX*errX+errY*errY < undistortTolerance*undistortTolerance {
			break
		}
		det := j[0]*j[3] - j[1]*j[2]
		if det == 0 || !utils.IsFinite(det, errX, errY) {
			break
		}
		// [xu, yu] -= J^-1 * [errX, errY]
		stepX := (j[3]*errX - j[1]*errY) / det
		stepY := (-j[2]*errX + j[0]*errY) / det
		if !utils.IsFinite(xu-stepX, yu-stepY) {
			break
		}
		xu -= stepX
		yu -= stepY
	}
	return xu, yu
}

func distortPolynomialRadial(k []float64, x, y float64, jxy *[4]float64, jk []float64) (float64, float64) {
	n := len(k)
	r2 := x*x + y*y
	radial, dRadial := 1.0, 0.0
	pow := 1.0
	for i, ki := range k {
		dRadial += float64(i+1) * ki * pow
		pow *= r2
		radial += ki * pow
		if len(jk) > 0 {
			jk[i], jk[n+i] = x*pow, y*pow
		}
	}
	if jxy != nil {
		*jxy = [4]float64{
			radial + 2*x*x*dRadial, 2 * x * y * dRadial,
			2 * x * y * dRadial, radial + 2*y*y*dRadial,
		}
	}
	return x * radial, y * radial
}

func distortRational(k []float64, x, y float64, jxy *[4]float64, jk []float64) (float64, float64) {
	k1, k2, p1, p2, k3, k4, k5, k6 := k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7]
	r2 := x*x + y*y
	r4 := r2 * r2
	r6 := r4 * r2
	num := 1 + k1*r2 + k2*r4 + k3*r6
	den := utils.SafeDivisor(1 + k4*r2 + k5*r4 + k6*r6)
	dNum := k1 + 2*k2*r2 + 3*k3*r4
	dDen := k4 + 2*k5*r2 + 3*k6*r4
	radial := num / den
	dRadial := (dNum*den - num*dDen) / (den * den)
	if len(jk) > 0 {
		n := 8
		iden := 1 / den
		scale := -num * iden * iden
		jk[0], jk[n+0] = x*r2*iden, y*r2*iden
		jk[1], jk[n+1] = x*r4*iden, y*r4*iden
		jk[2], jk[n+2] = 2*x*y, r2+2*y*y
		jk[3], jk[n+3] = r2+2*x*x, 2*x*y
		jk[4], jk[n+4] = x*r6*iden, y*r6*iden
		jk[5], jk[n+5] = x*r2*scale, y*r2*scale
		jk[6], jk[n+6] = x*r4*scale, y*r4*scale
		jk[7], jk[n+7] = x*r6*scale, y*r6*scale
	}
	return applyRadialTangential(x, y, radial, dRadial, p1, p2, 0, 0, jxy)
}

// applyRadialTangential applies
//
//	x_d = x*radial + 2*p1*x*y + p2*(r² + 2*x²) + sx1*r²
//	y_d = y*radial + 2*p2*x*y + p1*(r² + 2*y²) + sy1*r²
//
// where dRadial is the derivative of radial with respect to r².
func applyRadialTangential(
	x, y, radial, dRadial, p1, p2, sx1, sy1 float64,
	jxy *[4]float64,
) (float64, float64) {
	r2 := x*x + y*y
	xy := x * y
	xd := x*radial + 2*p1*xy + p2*(r2+2*x*x) + sx1*r2
	yd := y*radial + 2*p2*xy + p1*(r2+2*y*y) + sy1*r2
	if jxy != nil {
		*jxy = [4]float64{
			radial + 2*x*x*dRadial + 2*p1*y + 6*p2*x + 2*sx1*x,
			2*xy*dRadial + 2*p1*x + 2*p2*y + 2*sx1*y,
			2*xy*dRadial + 2*p2*y + 2*p1*x + 2*sy1*x,
			radial + 2*y*y*dRadial + 2*p2*x + 6*p1*y + 2*sy1*y,
		}
	}
	return xd, yd
}

// fovFactor returns the FOV radial scale atan(2*r*tan(omega/2))/(r*omega) together with its
// derivatives with respect to r² and omega.
func fovFactor(r2, omega float64) (f, dfdr2, dfdw float64) {
	omega2 := omega * omega
	if omega2 < fovEpsilon {
		return 1 + omega2/12 - omega2*r2/3, -omega2 / 3, omega/6 - 2*omega*r2/3
	}
	t := math.Tan(omega / 2)
	dt := (1 + t*t) / 2
	if r2 < fovEpsilon {
		t3 := t * t * t
		f = 2*t/omega - 8*t3*r2/(3*omega)
		dfdr2 = -8 * t3 / (3 * omega)
		dfdw = (2*dt*omega-2*t)/omega2 - 8*r2*(3*t*t*dt*omega-t3)/(3*omega2)
		return f, dfdr2, dfdw
	}
	r := math.Sqrt(r2)
	s := 1 + 4*r2*t*t
	g := math.Atan(2 * r * t)
	f = g / (r * omega)
	dfdr := 2*t/(s*r*omega) - g/(r2*omega)
	dfdr2 = dfdr / (2 * r)
	dfdw = (1+t*t)/(s*omega) - g/(r*omega2)
	return f, dfdr2, dfdw
}
