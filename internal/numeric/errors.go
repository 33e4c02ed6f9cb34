package numeric

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when two values cannot be broadcast together.
var ErrShapeMismatch = errors.New("shape mismatch")

// ShapeError describes a failed broadcast.
type ShapeError struct {
	A, B Shape
	Axis int // Output axis where the dimensions disagree
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%v: %v vs %v (axis %d)", ErrShapeMismatch, e.A, e.B, e.Axis)
}

// Unwrap makes errors.Is(err, ErrShapeMismatch) work.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}
