package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{nil, 1},
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.shape.NumElements(), "shape %v", tt.shape)
	}
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{2, 3}.Validate())
	require.NoError(t, Shape(nil).Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.Error(t, Shape{-1}.Validate())
}

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
	assert.Empty(t, Shape{}.ComputeStrides())
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name string
		a, b Shape
		want Shape
	}{
		{"scalars", nil, Shape{}, Shape{}},
		{"scalar and vector", nil, Shape{4}, Shape{4}},
		{"equal", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}},
		{"column and matrix", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}},
		{"row and column", Shape{1, 4}, Shape{3, 1}, Shape{3, 4}},
		{"missing leading axes", Shape{5}, Shape{2, 3, 5}, Shape{2, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BroadcastShapes(tt.a, tt.b)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)

			// symmetric
			got, err = BroadcastShapes(tt.b, tt.a)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestBroadcastShapesMismatch(t *testing.T) {
	_, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5})
	require.ErrorIs(t, err, ErrShapeMismatch)

	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Axis)
	assert.Equal(t, Shape{3, 4}, se.A)

	_, err = BroadcastShapes(Shape{2}, Shape{3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestBroadcastStrides(t *testing.T) {
	out := Shape{2, 3}
	assert.Equal(t, []int{0, 1}, broadcastStrides(Shape{3}, out))
	assert.Equal(t, []int{1, 0}, broadcastStrides(Shape{2, 1}, out))
	assert.Equal(t, []int{0, 0}, broadcastStrides(Shape{}, out))

	// element (1, 2) of a (2, 3) output reads element 1 of a (2, 1) input
	assert.Equal(t, 1, flatIndex(5, out.ComputeStrides(), broadcastStrides(Shape{2, 1}, out)))
}
