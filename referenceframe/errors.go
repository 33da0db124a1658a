package referenceframe

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownFrame is returned when a frame name is not registered in a model.
	ErrUnknownFrame = errors.New("unknown frame")

	// ErrUnknownJoint is returned when a joint name is not registered in a model.
	ErrUnknownJoint = errors.New("unknown joint")

	// ErrDimensionMismatch is returned when a vector's length does not match the model's degrees of freedom.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidModel is returned when a model description cannot be turned into a kinematic tree.
	ErrInvalidModel = errors.New("invalid model")
)

// NewUnknownFrameError returns an error indicating that the named frame is not part of the model.
func NewUnknownFrameError(name string) error {
	return errors.Wrapf(ErrUnknownFrame, "frame %q", name)
}

// NewUnknownJointError returns an error indicating that the named joint is not part of the model.
func NewUnknownJointError(name string) error {
	return errors.Wrapf(ErrUnknownJoint, "joint %q", name)
}

// NewDimensionMismatchError returns an error indicating that a vector has the wrong number of elements.
func NewDimensionMismatchError(what string, actual, expected int) error {
	return errors.Wrapf(ErrDimensionMismatch, "%s has length %d, expected %d", what, actual, expected)
}

// NewInvalidModelError returns an error describing why a model description was rejected.
func NewInvalidModelError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidModel, format, args...)
}

// CheckDimension returns a dimension mismatch error if actual differs from expected.
func CheckDimension(what string, actual, expected int) error {
	if actual != expected {
		return NewDimensionMismatchError(what, actual, expected)
	}
	return nil
}
