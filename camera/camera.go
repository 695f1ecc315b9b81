package camera

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/cameramodels/utils"
)

// Camera binds a camera model to its parameters and image resolution. The model is resolved
// from its identifier on every call rather than cached.
//
// A Camera is a value; copies are independent because mutators replace the parameter vector
// instead of editing it. Concurrent reads are safe. Mutating a Camera while another goroutine
// reads it is not, and must be serialized by the caller.
type Camera struct {
	id     ModelID
	width  int
	height int
	params []float64
}

// NewCamera returns a camera of the given model. It fails with an UnknownModelError if id is not
// registered, an InvalidArityError if params does not have the model's arity, and ErrInvalidSize
// if width or height is not positive. params is copied.
func NewCamera(id ModelID, width, height int, params []float64) (Camera, error) {
	model, err := Lookup(id)
	if err != nil {
		return Camera{}, err
	}
	if err := model.CheckParams(params); err != nil {
		return Camera{}, err
	}
	if err := checkSize(width, height); err != nil {
		return Camera{}, err
	}
	return Camera{
		id:     id,
		width:  width,
		height: height,
		params: copyParams(params),
	}, nil
}

// NewCameraFromName is NewCamera with the model given by its canonical name.
func NewCameraFromName(name string, width, height int, params []float64) (Camera, error) {
	id, err := IDFor(name)
	if err != nil {
		return Camera{}, err
	}
	return NewCamera(id, width, height, params)
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return newInvalidSizeError(width, height)
	}
	return nil
}

func copyParams(params []float64) []float64 {
	out := make([]float64, len(params))
	copy(out, params)
	return out
}

// resolve looks the model up and re-checks the parameter count.
func (c Camera) resolve() (Model, error) {
	model, err := Lookup(c.id)
	if err != nil {
		return nil, err
	}
	if err := model.CheckParams(c.params); err != nil {
		return nil, err
	}
	return model, nil
}

// ModelID returns the identifier of the camera's model.
func (c Camera) ModelID() ModelID {
	return c.id
}

// ModelName returns the canonical name of the camera's model.
func (c Camera) ModelName() (string, error) {
	return NameFor(c.id)
}

// Width returns the image width in pixels.
func (c Camera) Width() int {
	return c.width
}

// Height returns the image height in pixels.
func (c Camera) Height() int {
	return c.height
}

// Params returns a copy of the parameter vector.
func (c Camera) Params() []float64 {
	return copyParams(c.params)
}

// SetParams replaces the parameter vector. The camera is unchanged if the length does not match
// the model.
func (c *Camera) SetParams(params []float64) error {
	model, err := Lookup(c.id)
	if err != nil {
		return err
	}
	if err := model.CheckParams(params); err != nil {
		return err
	}
	c.params = copyParams(params)
	return nil
}

// SetModel replaces the model and its parameters together. The camera is unchanged on error.
func (c *Camera) SetModel(id ModelID, params []float64) error {
	model, err := Lookup(id)
	if err != nil {
		return err
	}
	if err := model.CheckParams(params); err != nil {
		return err
	}
	c.id = id
	c.params = copyParams(params)
	return nil
}

// SetSize replaces the image resolution.
func (c *Camera) SetSize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

// Focal returns the camera's focal length: f for single focal models, the mean of fx and fy for
// the others, and exactly 1 for models without a focal length such as EQUIRECTANGULAR.
func (c Camera) Focal() (float64, error) {
	model, err := c.resolve()
	if err != nil {
		return 0, err
	}
	return model.Focal(c.params), nil
}

// PrincipalPoint returns the pixel the optical axis projects to.
func (c Camera) PrincipalPoint() (r2.Point, error) {
	model, err := c.resolve()
	if err != nil {
		return r2.Point{}, err
	}
	return model.PrincipalPoint(c.params), nil
}

// CameraMatrix returns the 3x3 intrinsic matrix K of the camera.
func (c Camera) CameraMatrix() (*mat.Dense, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, err
	}
	return model.CameraMatrix(c.params)
}

// Project maps a point in the camera frame to pixel coordinates. Points behind the camera still
// produce a pixel; checking visibility is up to the caller.
func (c Camera) Project(p r3.Vector) (r2.Point, error) {
	model, err := c.resolve()
	if err != nil {
		return r2.Point{}, err
	}
	return model.Project(c.params, p), nil
}

// ProjectWithJacobian projects p and fills the 2x3 point Jacobian and the 2xNumParams parameter
// Jacobian. Either matrix may be nil; a matrix of any other shape is an ErrJacobianShape error.
func (c Camera) ProjectWithJacobian(p r3.Vector, jacPoint, jacParams *mat.Dense) (r2.Point, error) {
	model, err := c.resolve()
	if err != nil {
		return r2.Point{}, err
	}
	if err := checkJacobianShape("point", jacPoint, 3); err != nil {
		return r2.Point{}, err
	}
	if err := checkJacobianShape("parameter", jacParams, model.NumParams()); err != nil {
		return r2.Point{}, err
	}
	return model.ProjectWithJacobian(c.params, p, jacPoint, jacParams), nil
}

func checkJacobianShape(name string, jac *mat.Dense, cols int) error {
	if jac == nil {
		return nil
	}
	if r, c := jac.Dims(); r != 2 || c != cols {
		return errors.Wrapf(ErrJacobianShape, "%s Jacobian must be 2x%d, got %dx%d", name, cols, r, c)
	}
	return nil
}

// Jacobian returns the derivatives of the projection of p with respect to the point (2x3) and
// with respect to the camera parameters (2xN).
func (c Camera) Jacobian(p r3.Vector) (*mat.Dense, *mat.Dense, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, nil, err
	}
	jacPoint := mat.NewDense(2, 3, nil)
	jacParams := mat.NewDense(2, model.NumParams(), nil)
	model.ProjectWithJacobian(c.params, p, jacPoint, jacParams)
	return jacPoint, jacParams, nil
}

// Unproject maps a pixel back into the camera frame. Perspective models return the point on the
// z=1 plane, fisheye and spherical models a unit ray.
func (c Camera) Unproject(px r2.Point) (r3.Vector, error) {
	model, err := c.resolve()
	if err != nil {
		return r3.Vector{}, err
	}
	return model.Unproject(c.params, px), nil
}

// ProjectNormalized projects the point (x, y, 1).
func (c Camera) ProjectNormalized(x r2.Point) (r2.Point, error) {
	return c.Project(r3.Vector{X: x.X, Y: x.Y, Z: 1})
}

// ProjectNormalizedWithJacobian projects the point (x, y, 1) and returns the 2x2 derivative of the
// pixel with respect to (x, y).
func (c Camera) ProjectNormalizedWithJacobian(x r2.Point) (r2.Point, *mat.Dense, error) {
	model, err := c.resolve()
	if err != nil {
		return r2.Point{}, nil, err
	}
	jacPoint := mat.NewDense(2, 3, nil)
	px := model.ProjectWithJacobian(c.params, r3.Vector{X: x.X, Y: x.Y, Z: 1}, jacPoint, nil)
	return px, mat.DenseCopyOf(jacPoint.Slice(0, 2, 0, 2)), nil
}

// UnprojectNormalized unprojects px and returns the ray's intersection with the z=1 plane.
// Rays parallel to or behind that plane give degenerate but finite results.
func (c Camera) UnprojectNormalized(px r2.Point) (r2.Point, error) {
	ray, err := c.Unproject(px)
	if err != nil {
		return r2.Point{}, err
	}
	z := utils.SafeDivisor(ray.Z)
	return r2.Point{X: ray.X / z, Y: ray.Y / z}, nil
}

const fieldOfViewSegments = 256

// FieldOfView returns the angles spanned by the image's center row and center column. The rays of
// consecutive pixels along each line are accumulated, so spherical models may report up to 360
// degrees.
func (c Camera) FieldOfView() (horizontal, vertical s1.Angle, err error) {
	model, err := c.resolve()
	if err != nil {
		return 0, 0, err
	}
	pp := model.PrincipalPoint(c.params)
	sweep := func(from, to r2.Point) s1.Angle {
		var total s1.Angle
		prev := model.Unproject(c.params, from)
		for i := 1; i <= fieldOfViewSegments; i++ {
			t := float64(i) / fieldOfViewSegments
			ray := model.Unproject(c.params, from.Add(to.Sub(from).Mul(t)))
			total += prev.Angle(ray)
			prev = ray
		}
		return total
	}
	w, h := float64(c.width), float64(c.height)
	horizontal = sweep(r2.Point{X: 0, Y: pp.Y}, r2.Point{X: w, Y: pp.Y})
	vertical = sweep(r2.Point{X: pp.X, Y: 0}, r2.Point{X: pp.X, Y: h})
	return horizontal, vertical, nil
}

// IsInside reports whether px falls within the image bounds.
func (c Camera) IsInside(px r2.Point) bool {
	return px.X >= 0 && px.Y >= 0 && px.X < float64(c.width) && px.Y < float64(c.height)
}

func (c Camera) String() string {
	return fmt.Sprintf("%s %dx%d %v", c.id, c.width, c.height, c.params)
}
