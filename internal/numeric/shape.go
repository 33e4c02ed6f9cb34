package numeric

import "fmt"

// Shape represents the dimensions of a value. A nil or empty Shape is a scalar.
type Shape []int

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that all dimensions are positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes applies NumPy broadcasting rules to two shapes.
//
// Shapes are compared right to left; two dimensions are compatible when they
// are equal or one of them is 1, and missing dimensions count as 1.
//
//	(3, 1) with (3, 5) → (3, 5)
//	()     with (4,)   → (4,)
//	(3, 4) with (3, 5) → ShapeError
func BroadcastShapes(a, b Shape) (Shape, error) {
	n := max(len(a), len(b))
	if n == 0 {
		return Shape{}, nil
	}
	result := make(Shape, n)

	for i := 0; i < n; i++ {
		aDim, bDim := 1, 1
		if ai := len(a) - 1 - i; ai >= 0 {
			aDim = a[ai]
		}
		if bi := len(b) - 1 - i; bi >= 0 {
			bDim = b[bi]
		}

		switch {
		case aDim == bDim, bDim == 1:
			result[n-1-i] = aDim
		case aDim == 1:
			result[n-1-i] = bDim
		default:
			return nil, &ShapeError{A: a.Clone(), B: b.Clone(), Axis: n - 1 - i}
		}
	}

	return result, nil
}

// broadcastStrides returns strides that read an input of shape in as if it had
// shape out. Padded and size-1 dimensions get stride 0.
func broadcastStrides(in, out Shape) []int {
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	orig := in.ComputeStrides()

	for i := range out {
		j := i - offset
		switch {
		case j < 0:
			strides[i] = 0
		case in[j] == 1:
			strides[i] = 0
		default:
			strides[i] = orig[j]
		}
	}
	return strides
}

// flatIndex maps a flat index in the output to a flat index in a broadcast input.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	idx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		idx += coord * inStrides[i]
	}
	return idx
}
