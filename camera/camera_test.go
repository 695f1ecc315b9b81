package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewCamera(t *testing.T) {
	params := []float64{500, 510, 320, 240}
	cam, err := NewCamera(Pinhole, 640, 480, params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cam.ModelID(), test.ShouldEqual, Pinhole)
	test.That(t, cam.String(), test.ShouldEqual, "PINHOLE 640x480 [500 510 320 240]")

	// the camera keeps its own copy of the parameters
	params[0] = 1
	test.That(t, cam.Params()[0], test.ShouldEqual, 500.0)
	cam.Params()[1] = 2
	test.That(t, cam.Params()[1], test.ShouldEqual, 510.0)

	byName, err := NewCameraFromName("PINHOLE", 640, 480, []float64{500, 510, 320, 240})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, byName, test.ShouldResemble, cam)
}

func TestNewCameraErrors(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		_, err := NewCamera(42, 640, 480, []float64{1, 2, 3})
		var unknown *UnknownModelError
		test.That(t, errors.As(err, &unknown), test.ShouldBeTrue)
		test.That(t, unknown.ID, test.ShouldEqual, ModelID(42))
	})
	t.Run("unknown name", func(t *testing.T) {
		_, err := NewCameraFromName("simple_pinhole", 640, 480, []float64{1, 2, 3})
		test.That(t, err, test.ShouldWrap, ErrUnknownModel)
	})
	t.Run("arity", func(t *testing.T) {
		_, err := NewCamera(SimpleRadial, 640, 480, []float64{500, 320, 240})
		var arity *InvalidArityError
		test.That(t, errors.As(err, &arity), test.ShouldBeTrue)
		test.That(t, *arity, test.ShouldResemble, InvalidArityError{Model: "SIMPLE_RADIAL", Expected: 4, Actual: 3})
	})
	t.Run("size", func(t *testing.T) {
		for _, size := range [][2]int{{0, 480}, {640, 0}, {-1, 480}, {640, -5}} {
			_, err := NewCamera(SimplePinhole, size[0], size[1], []float64{500, 320, 240})
			test.That(t, err, test.ShouldWrap, ErrInvalidSize)
		}
	})
}

func TestCameraMutators(t *testing.T) {
	cam, err := NewCamera(SimplePinhole, 640, 480, []float64{500, 320, 240})
	test.That(t, err, test.ShouldBeNil)
	orig := cam

	test.That(t, cam.SetParams([]float64{1, 2}), test.ShouldWrap, ErrInvalidArity)
	test.That(t, cam, test.ShouldResemble, orig)

	test.That(t, cam.SetModel(99, []float64{1, 2, 3}), test.ShouldWrap, ErrUnknownModel)
	test.That(t, cam.SetModel(FOV, []float64{1, 2, 3}), test.ShouldWrap, ErrInvalidArity)
	test.That(t, cam, test.ShouldResemble, orig)

	test.That(t, cam.SetSize(0, 10), test.ShouldWrap, ErrInvalidSize)
	test.That(t, cam, test.ShouldResemble, orig)

	test.That(t, cam.SetParams([]float64{600, 300, 200}), test.ShouldBeNil)
	focal, err := cam.Focal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, focal, test.ShouldEqual, 600.0)

	fovParams := []float64{400, 410, 300, 200, 0.8}
	test.That(t, cam.SetModel(FOV, fovParams), test.ShouldBeNil)
	fovParams[4] = 0
	test.That(t, cam.ModelID(), test.ShouldEqual, FOV)
	test.That(t, cam.Params(), test.ShouldResemble, []float64{400, 410, 300, 200, 0.8})

	test.That(t, cam.SetSize(1280, 720), test.ShouldBeNil)
	test.That(t, cam.Width(), test.ShouldEqual, 1280)
	test.That(t, cam.Height(), test.ShouldEqual, 720)

	// the copy taken before mutating is unaffected
	test.That(t, orig.ModelID(), test.ShouldEqual, SimplePinhole)
	test.That(t, orig.Params(), test.ShouldResemble, []float64{500, 320, 240})
}

func TestZeroValueCamera(t *testing.T) {
	var cam Camera
	// the zero value is a SIMPLE_PINHOLE without parameters
	_, err := cam.Project(r3.Vector{Z: 1})
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
	_, err = cam.Unproject(r2.Point{})
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
	_, err = cam.Focal()
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
	_, _, err = cam.Jacobian(r3.Vector{Z: 1})
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)
	_, err = cam.ProjectAll([]r3.Vector{{Z: 1}})
	test.That(t, err, test.ShouldWrap, ErrInvalidArity)

	name, err := cam.ModelName()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, name, test.ShouldEqual, "SIMPLE_PINHOLE")

	test.That(t, cam.SetParams([]float64{500, 320, 240}), test.ShouldBeNil)
	_, err = cam.Project(r3.Vector{Z: 1})
	test.That(t, err, test.ShouldBeNil)
}

func TestCameraUnknownModelFailsAtQueryTime(t *testing.T) {
	cam := Camera{id: 77, width: 10, height: 10, params: []float64{1, 2, 3}}
	_, err := cam.ModelName()
	test.That(t, err, test.ShouldWrap, ErrUnknownModel)
	_, err = cam.Project(r3.Vector{Z: 1})
	test.That(t, err, test.ShouldWrap, ErrUnknownModel)
	_, err = cam.PrincipalPoint()
	test.That(t, err, test.ShouldWrap, ErrUnknownModel)
	test.That(t, cam.SetParams([]float64{1, 2, 3}), test.ShouldWrap, ErrUnknownModel)
}

func TestCameraJacobian(t *testing.T) {
	cam, err := NewCamera(OpenCV, 640, 480, typicalParams[OpenCV])
	test.That(t, err, test.ShouldBeNil)

	p := r3.Vector{X: 0.3, Y: -0.2, Z: 2}
	jacPoint, jacParams, err := cam.Jacobian(p)
	test.That(t, err, test.ShouldBeNil)
	rows, cols := jacPoint.Dims()
	test.That(t, rows, test.ShouldEqual, 2)
	test.That(t, cols, test.ShouldEqual, 3)
	rows, cols = jacParams.Dims()
	test.That(t, rows, test.ShouldEqual, 2)
	test.That(t, cols, test.ShouldEqual, 8)

	// focal and principal point derivatives are the distorted point and identity
	px, err := cam.Project(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jacParams.At(0, 0), test.ShouldAlmostEqual, (px.X-320)/500, 1e-12)
	test.That(t, jacParams.At(1, 1), test.ShouldAlmostEqual, (px.Y-240)/510, 1e-12)
	test.That(t, jacParams.At(0, 1), test.ShouldEqual, 0.0)
	test.That(t, jacParams.At(0, 2), test.ShouldEqual, 1.0)
	test.That(t, jacParams.At(1, 3), test.ShouldEqual, 1.0)
}

func TestProjectWithJacobianShape(t *testing.T) {
	cam, err := NewCamera(OpenCV, 640, 480, typicalParams[OpenCV])
	test.That(t, err, test.ShouldBeNil)
	p := r3.Vector{X: 0.3, Y: -0.2, Z: 2}

	_, err = cam.ProjectWithJacobian(p, mat.NewDense(3, 3, nil), nil)
	test.That(t, err, test.ShouldWrap, ErrJacobianShape)
	test.That(t, err.Error(), test.ShouldContainSubstring, "point Jacobian must be 2x3, got 3x3")

	_, err = cam.ProjectWithJacobian(p, nil, mat.NewDense(2, 4, nil))
	test.That(t, err, test.ShouldWrap, ErrJacobianShape)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parameter Jacobian must be 2x8, got 2x4")

	jacPoint := mat.NewDense(2, 3, nil)
	jacParams := mat.NewDense(2, 8, nil)
	px, err := cam.ProjectWithJacobian(p, jacPoint, jacParams)
	test.That(t, err, test.ShouldBeNil)
	plain, err := cam.Project(p)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, px, test.ShouldResemble, plain)
	test.That(t, jacParams.At(0, 2), test.ShouldEqual, 1.0)
}

func TestCameraNormalizedPerspective(t *testing.T) {
	cam, err := NewCamera(Radial, 640, 480, typicalParams[Radial])
	test.That(t, err, test.ShouldBeNil)
	for _, x := range []r2.Point{{X: 0, Y: 0}, {X: 0.3, Y: -0.1}, {X: -0.45, Y: 0.5}} {
		px, err := cam.ProjectNormalized(x)
		test.That(t, err, test.ShouldBeNil)
		back, err := cam.UnprojectNormalized(px)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.X, test.ShouldAlmostEqual, x.X, 1e-9)
		test.That(t, back.Y, test.ShouldAlmostEqual, x.Y, 1e-9)
	}
}

func TestIsInside(t *testing.T) {
	cam, err := NewCamera(SimplePinhole, 640, 480, []float64{500, 320, 240})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cam.IsInside(r2.Point{X: 0, Y: 0}), test.ShouldBeTrue)
	test.That(t, cam.IsInside(r2.Point{X: 639.5, Y: 479.5}), test.ShouldBeTrue)
	test.That(t, cam.IsInside(r2.Point{X: 640, Y: 10}), test.ShouldBeFalse)
	test.That(t, cam.IsInside(r2.Point{X: 10, Y: -0.1}), test.ShouldBeFalse)
}

func TestFieldOfView(t *testing.T) {
	cam, err := NewCamera(Pinhole, 640, 480, []float64{500, 400, 320, 240})
	test.That(t, err, test.ShouldBeNil)
	horizontal, vertical, err := cam.FieldOfView()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, horizontal.Radians(), test.ShouldAlmostEqual, 2*math.Atan(320.0/500), 1e-9)
	test.That(t, vertical.Radians(), test.ShouldAlmostEqual, 2*math.Atan(240.0/400), 1e-9)

	horizontal, vertical, err = newEquirectangularCamera(t).FieldOfView()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, horizontal.Degrees(), test.ShouldAlmostEqual, 360, 1e-6)
	test.That(t, vertical.Degrees(), test.ShouldAlmostEqual, 180, 1e-6)

	// a 180 degree equidistant fisheye
	fisheye, err := NewCamera(SimpleRadialFisheye, 1000, 1000, []float64{1000 / math.Pi, 500, 500, 0})
	test.That(t, err, test.ShouldBeNil)
	horizontal, _, err = fisheye.FieldOfView()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, horizontal.Degrees(), test.ShouldAlmostEqual, 180, 1e-6)

	var zero Camera
	_, _, err = zero.FieldOfView()
	test.That(t, err, test.ShouldNotBeNil)
}
