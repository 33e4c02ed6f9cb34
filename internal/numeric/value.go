// Package numeric is the array layer under the autodiff engine.
//
// A Value is an immutable float64 array with a shape; a scalar has an empty
// shape and one element. Binary kernels broadcast NumPy-style. Elementary
// functions (sin, exp, log, ...) are applied elementwise through math and
// never re-derived here.
package numeric

import (
	"fmt"
	"strings"
)

// Value is a dense row-major float64 array.
//
// Values are treated as immutable: kernels always allocate their result, and
// Data returns the backing slice only for reading.
type Value struct {
	shape Shape
	data  []float64
}

// Scalar wraps a single float64.
func Scalar(f float64) Value {
	return Value{data: []float64{f}}
}

// Vector copies xs into a one-dimensional value.
func Vector(xs []float64) Value {
	data := make([]float64, len(xs))
	copy(data, xs)
	return Value{shape: Shape{len(xs)}, data: data}
}

// New copies data into a value of the given shape.
func New(shape Shape, data []float64) (Value, error) {
	if err := shape.Validate(); err != nil {
		return Value{}, err
	}
	if shape.NumElements() != len(data) {
		return Value{}, fmt.Errorf("numeric: shape %v needs %d elements, got %d", shape, shape.NumElements(), len(data))
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return Value{shape: shape.Clone(), data: buf}, nil
}

// Full returns a value of the given shape with every element set to f.
func Full(shape Shape, f float64) Value {
	data := make([]float64, shape.NumElements())
	for i := range data {
		data[i] = f
	}
	return Value{shape: shape.Clone(), data: data}
}

// Zeros returns a zero-filled value of the given shape.
func Zeros(shape Shape) Value {
	return Value{shape: shape.Clone(), data: make([]float64, shape.NumElements())}
}

// Ones returns a one-filled value of the given shape.
func Ones(shape Shape) Value {
	return Full(shape, 1)
}

// Shape returns the value's shape.
func (v Value) Shape() Shape {
	return v.shape
}

// Len returns the number of elements.
func (v Value) Len() int {
	return len(v.data)
}

// Data returns the backing slice. Callers must not modify it.
func (v Value) Data() []float64 {
	return v.data
}

// IsScalar reports whether v has an empty shape.
func (v Value) IsScalar() bool {
	return len(v.shape) == 0
}

// IsValid reports whether v holds data. The zero Value is invalid.
func (v Value) IsValid() bool {
	return v.data != nil
}

// At returns the i-th element in row-major order.
func (v Value) At(i int) float64 {
	return v.data[i]
}

// Float returns the single element of a scalar or one-element value.
func (v Value) Float() (float64, bool) {
	if len(v.data) != 1 {
		return 0, false
	}
	return v.data[0], true
}

// AllZero reports whether every element equals zero.
func (v Value) AllZero() bool {
	for _, x := range v.data {
		if x != 0 {
			return false
		}
	}
	return true
}

// Find returns the index of the first element matching pred.
func (v Value) Find(pred func(float64) bool) (int, bool) {
	for i, x := range v.data {
		if pred(x) {
			return i, true
		}
	}
	return -1, false
}

// String formats scalars as plain numbers and arrays as [a b c].
func (v Value) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	if v.IsScalar() {
		return fmt.Sprintf("%g", v.data[0])
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, x := range v.data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", x)
	}
	sb.WriteByte(']')
	return sb.String()
}

// From converts float64, int, []float64 or Value into a Value.
func From(x any) (Value, bool) {
	switch t := x.(type) {
	case Value:
		return t, t.IsValid()
	case float64:
		return Scalar(t), true
	case float32:
		return Scalar(float64(t)), true
	case int:
		return Scalar(float64(t)), true
	case int64:
		return Scalar(float64(t)), true
	case []float64:
		if len(t) == 0 {
			return Value{}, false
		}
		return Vector(t), true
	default:
		return Value{}, false
	}
}
