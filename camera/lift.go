package camera

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/cameramodels/utils"
)

// maxAngularNorm bounds the magnitude of points handed to angular projections. Larger points are
// scaled down first; their angles do not change and their point Jacobian scales by the inverse.
const maxAngularNorm = 1e100

// liftKind is how a central model moves a point in the camera frame onto its normalized plane.
type liftKind int

const (
	// perspectiveLift divides by depth: (X/Z, Y/Z).
	perspectiveLift liftKind = iota
	// equidistantLift keeps the angle from the optical axis as the radius: theta*(X, Y)/rho.
	equidistantLift
)

// apply lifts p. When j is non-nil it receives the row-major 2x3 Jacobian of the lift.
func (l liftKind) apply(p r3.Vector, j *[6]float64) (float64, float64) {
	switch l {
	case perspectiveLift:
		return liftPerspective(p, j)
	case equidistantLift:
		return liftEquidistant(p, j)
	default:
		panic("unreachable lift kind")
	}
}

// unapply returns a point in the camera frame along the ray through the normalized point (x, y).
func (l liftKind) unapply(x, y float64) r3.Vector {
	switch l {
	case perspectiveLift:
		return r3.Vector{X: x, Y: y, Z: 1}
	case equidistantLift:
		theta := math.Hypot(x, y)
		if theta < utils.Epsilon {
			return r3.Vector{X: x, Y: y, Z: 1}.Normalize()
		}
		s := math.Sin(theta) / theta
		return r3.Vector{X: x * s, Y: y * s, Z: math.Cos(theta)}
	default:
		panic("unreachable lift kind")
	}
}

// liftPerspective divides by depth. Depths closer to zero than utils.Epsilon are clamped, and so
// are results beyond utils.MaxNormalized, where the lift is flat.
func liftPerspective(p r3.Vector, j *[6]float64) (float64, float64) {
	z := utils.SafeDivisor(p.Z)
	iz := 1 / z
	rawX, rawY := p.X*iz, p.Y*iz
	x := lo.Clamp(rawX, -utils.MaxNormalized, utils.MaxNormalized)
	y := lo.Clamp(rawY, -utils.MaxNormalized, utils.MaxNormalized)
	if j != nil {
		*j = [6]float64{
			iz, 0, -x * iz,
			0, iz, -y * iz,
		}
		if x != rawX {
			j[0], j[1], j[2] = 0, 0, 0
		}
		if y != rawY {
			j[3], j[4], j[5] = 0, 0, 0
		}
	}
	return x, y
}

// angularScale returns the factor points larger than maxAngularNorm are divided by, or 1.
func angularScale(p r3.Vector) float64 {
	s := math.Max(math.Max(math.Abs(p.X), math.Abs(p.Y)), math.Abs(p.Z))
	if s > maxAngularNorm {
		return s
	}
	return 1
}

// liftEquidistant maps p to theta*(X, Y)/rho where theta is the angle between p and the optical
// axis and rho the distance of p from it. Near the axis the first order expansion is used.
func liftEquidistant(p r3.Vector, j *[6]float64) (float64, float64) {
	if s := angularScale(p); s != 1 {
		x, y := liftEquidistant(p.Mul(1/s), j)
		if j != nil {
			for i := range j {
				j[i] /= s
			}
		}
		return x, y
	}
	rho := math.Hypot(p.X, p.Y)
	if rho < utils.Epsilon && p.Z > utils.Epsilon {
		iz := 1 / p.Z
		if j != nil {
			c := -2 * iz * iz * iz / 3
			*j = [6]float64{
				iz + p.X*p.X*c, p.X * p.Y * c, -p.X * iz * iz,
				p.X * p.Y * c, iz + p.Y*p.Y*c, -p.Y * iz * iz,
			}
		}
		return p.X * iz, p.Y * iz
	}

	rhoP := math.Max(rho, utils.Epsilon)
	theta := math.Atan2(rho, p.Z)
	q := theta / rhoP
	if j != nil {
		n2 := math.Max(rho*rho+p.Z*p.Z, utils.Epsilon*utils.Epsilon)
		c := p.Z/(rhoP*rhoP*n2) - theta/(rhoP*rhoP*rhoP)
		*j = [6]float64{
			q + p.X*p.X*c, p.X * p.Y * c, -p.X / n2,
			p.X * p.Y * c, q + p.Y*p.Y*c, -p.Y / n2,
		}
	}
	return q * p.X, q * p.Y
}
