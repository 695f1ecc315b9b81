// Package camera defines the camera models used to move between points in a camera's
// frame and pixels in its image, and the Camera type that binds a model to its parameters.
//
// Points are expressed in the camera frame: +Z looks out of the lens, +X points to the right
// of the image and +Y points down the image. Pixels are (column, row).
package camera

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/cameramodels/utils"
)

// Model is a projection between the camera frame and the image plane. Every Model is stateless;
// the parameter vector is supplied on each call and must already have NumParams entries
// (see CheckParams). Models never return NaN or infinite values for finite input, but they do
// not filter points behind the camera: visibility checks belong to the caller.
//
// The set of models is closed; the only implementations live in this package.
type Model interface {
	ID() ModelID
	Name() string
	NumParams() int
	// ParamNames returns the name of each parameter in order.
	ParamNames() []string
	// CheckParams returns an InvalidArityError if params is not exactly NumParams long.
	CheckParams(params []float64) error

	// Project maps a point in the camera frame to pixel coordinates.
	Project(params []float64, p r3.Vector) r2.Point
	// ProjectWithJacobian projects p and writes the analytic derivatives of the pixel with
	// respect to the point (2x3) into jacPoint and with respect to the parameters
	// (2xNumParams) into jacParams. Either matrix may be nil; matrices of other shapes panic.
	ProjectWithJacobian(params []float64, p r3.Vector, jacPoint, jacParams *mat.Dense) r2.Point
	// Unproject maps a pixel back into the camera frame. Perspective models return the
	// point on the z=1 plane; fisheye and spherical models return a unit ray.
	Unproject(params []float64, px r2.Point) r3.Vector

	// Focal returns a single focal length summarizing the model, 1 for models without one.
	Focal(params []float64) float64
	// PrincipalPoint returns the pixel the optical axis projects to.
	PrincipalPoint(params []float64) r2.Point
	// CameraMatrix returns the 3x3 intrinsic matrix K, or an error for models without one.
	CameraMatrix(params []float64) (*mat.Dense, error)

	isModel()
}

func checkArity(m Model, params []float64) error {
	if len(params) != m.NumParams() {
		return NewInvalidArityError(m.Name(), m.NumParams(), len(params))
	}
	return nil
}

type focalLayout int

const (
	// f, cx, cy.
	singleFocal focalLayout = iota
	// fx, fy, cx, cy.
	dualFocal
)

func (fl focalLayout) numParams() int {
	if fl == singleFocal {
		return 3
	}
	return 4
}

func (fl focalLayout) paramNames() []string {
	if fl == singleFocal {
		return []string{"f", "cx", "cy"}
	}
	return []string{"fx", "fy", "cx", "cy"}
}

func (fl focalLayout) focals(params []float64) (float64, float64) {
	if fl == singleFocal {
		return params[0], params[0]
	}
	return params[0], params[1]
}

func (fl focalLayout) principalPoint(params []float64) (float64, float64) {
	if fl == singleFocal {
		return params[1], params[2]
	}
	return params[2], params[3]
}

// centralModel covers every model that lifts a point onto a normalized plane, distorts it there
// and scales it into pixels with a focal length and principal point.
type centralModel struct {
	id    ModelID
	name  string
	focal focalLayout
	lift  liftKind
	dist  distortion
}

func (m *centralModel) isModel() {}

func (m *centralModel) ID() ModelID {
	return m.id
}

func (m *centralModel) Name() string {
	return m.name
}

func (m *centralModel) NumParams() int {
	return m.focal.numParams() + m.dist.numParams()
}

func (m *centralModel) ParamNames() []string {
	return append(m.focal.paramNames(), m.dist.paramNames()...)
}

func (m *centralModel) CheckParams(params []float64) error {
	return checkArity(m, params)
}

func (m *centralModel) Project(params []float64, p r3.Vector) r2.Point {
	x, y := m.lift.apply(p, nil)
	xd, yd := m.dist.distort(params[m.focal.numParams():], x, y, nil, nil)
	fx, fy := m.focal.focals(params)
	cx, cy := m.focal.principalPoint(params)
	return r2.Point{X: fx*xd + cx, Y: fy*yd + cy}
}

func (m *centralModel) ProjectWithJacobian(params []float64, p r3.Vector, jacPoint, jacParams *mat.Dense) r2.Point {
	var jl [6]float64
	var jd [4]float64
	var jk [2 * maxDistortionParams]float64

	nIntrinsics := m.focal.numParams()
	n := m.dist.numParams()
	x, y := m.lift.apply(p, &jl)
	xd, yd := m.dist.distort(params[nIntrinsics:], x, y, &jd, jk[:2*n])
	fx, fy := m.focal.focals(params)
	cx, cy := m.focal.principalPoint(params)

	if jacPoint != nil {
		// diag(fx, fy) * d(distortion) * d(lift)
		for c := 0; c < 3; c++ {
			dx := jd[0]*jl[c] + jd[1]*jl[3+c]
			dy := jd[2]*jl[c] + jd[3]*jl[3+c]
			jacPoint.Set(0, c, fx*dx)
			jacPoint.Set(1, c, fy*dy)
		}
	}
	if jacParams != nil {
		jacParams.Zero()
		if m.focal == singleFocal {
			jacParams.Set(0, 0, xd)
			jacParams.Set(1, 0, yd)
			jacParams.Set(0, 1, 1)
			jacParams.Set(1, 2, 1)
		} else {
			jacParams.Set(0, 0, xd)
			jacParams.Set(1, 1, yd)
			jacParams.Set(0, 2, 1)
			jacParams.Set(1, 3, 1)
		}
		for i := 0; i < n; i++ {
			jacParams.Set(0, nIntrinsics+i, fx*jk[i])
			jacParams.Set(1, nIntrinsics+i, fy*jk[n+i])
		}
	}
	return r2.Point{X: fx*xd + cx, Y: fy*yd + cy}
}

func (m *centralModel) Unproject(params []float64, px r2.Point) r3.Vector {
	fx, fy := m.focal.focals(params)
	cx, cy := m.focal.principalPoint(params)
	xd := (px.X - cx) / utils.SafeDivisor(fx)
	yd := (px.Y - cy) / utils.SafeDivisor(fy)
	x, y := m.dist.undistort(params[m.focal.numParams():], xd, yd)
	return m.lift.unapply(x, y)
}

func (m *centralModel) Focal(params []float64) float64 {
	fx, fy := m.focal.focals(params)
	return (fx + fy) / 2
}

func (m *centralModel) PrincipalPoint(params []float64) r2.Point {
	cx, cy := m.focal.principalPoint(params)
	return r2.Point{X: cx, Y: cy}
}

// CameraMatrix creates the camera matrix
// [[fx 0 cx],
//
//	[0 fy cy],
//	[0 0  1]].
func (m *centralModel) CameraMatrix(params []float64) (*mat.Dense, error) {
	fx, fy := m.focal.focals(params)
	cx, cy := m.focal.principalPoint(params)
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, fx)
	cameraMatrix.Set(1, 1, fy)
	cameraMatrix.Set(0, 2, cx)
	cameraMatrix.Set(1, 2, cy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix, nil
}

// errNoCameraMatrix is returned by models that have no linear intrinsic matrix.
var errNoCameraMatrix = errors.New("camera model has no intrinsic matrix")
