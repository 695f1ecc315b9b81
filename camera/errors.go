package camera

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownModel is wrapped by every UnknownModelError.
	ErrUnknownModel = errors.New("unknown camera model")
	// ErrInvalidArity is wrapped by every InvalidArityError.
	ErrInvalidArity = errors.New("invalid number of camera parameters")
	// ErrInvalidSize is returned when an image width or height is not positive.
	ErrInvalidSize = errors.New("invalid image size")
	// ErrJacobianShape is returned when a Jacobian destination has the wrong dimensions.
	ErrJacobianShape = errors.New("invalid Jacobian dimensions")
)

// UnknownModelError is returned when a model identifier or name is not in the registry.
type UnknownModelError struct {
	ID   ModelID
	Name string
	// ByName is set when the lookup was done with a name rather than an identifier.
	ByName bool
}

func (e *UnknownModelError) Error() string {
	if e.ByName {
		return fmt.Sprintf("%v: no model named %q", ErrUnknownModel, e.Name)
	}
	return fmt.Sprintf("%v: no model with id %d", ErrUnknownModel, int(e.ID))
}

// Unwrap returns ErrUnknownModel.
func (e *UnknownModelError) Unwrap() error {
	return ErrUnknownModel
}

// NewUnknownModelIDError is used when a model identifier is not registered.
func NewUnknownModelIDError(id ModelID) error {
	return &UnknownModelError{ID: id}
}

// NewUnknownModelNameError is used when a model name is not registered.
func NewUnknownModelNameError(name string) error {
	return &UnknownModelError{ID: -1, Name: name, ByName: true}
}

// InvalidArityError is returned when a parameter vector does not have the length its model requires.
type InvalidArityError struct {
	Model    string
	Expected int
	Actual   int
}

func (e *InvalidArityError) Error() string {
	return fmt.Sprintf("%v: model %s expects %d parameters, got %d", ErrInvalidArity, e.Model, e.Expected, e.Actual)
}

// Unwrap returns ErrInvalidArity.
func (e *InvalidArityError) Unwrap() error {
	return ErrInvalidArity
}

// NewInvalidArityError is used when the parameter count does not match the model.
func NewInvalidArityError(model string, expected, actual int) error {
	return &InvalidArityError{Model: model, Expected: expected, Actual: actual}
}

func newInvalidSizeError(width, height int) error {
	return errors.Wrapf(ErrInvalidSize, "width and height must be positive, got (%d, %d)", width, height)
}
