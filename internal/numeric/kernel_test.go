package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adgraph/internal/parallel"
)

// kernels returns a sequential and a parallel kernel. The parallel one splits
// even small inputs so the chunked paths run.
func kernels() map[string]*Kernel {
	return map[string]*Kernel{
		"sequential": NewKernel(parallel.Sequential()),
		"parallel":   NewKernel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}),
	}
}

func TestKernelArithmetic(t *testing.T) {
	a := Vector([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	b := Vector([]float64{8, 7, 6, 5, 4, 3, 2, 1})

	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			sum, err := k.Add(a, b)
			require.NoError(t, err)
			assert.Equal(t, []float64{9, 9, 9, 9, 9, 9, 9, 9}, sum.Data())

			diff, err := k.Sub(a, b)
			require.NoError(t, err)
			assert.Equal(t, []float64{-7, -5, -3, -1, 1, 3, 5, 7}, diff.Data())

			prod, err := k.Mul(a, b)
			require.NoError(t, err)
			assert.Equal(t, []float64{8, 14, 18, 20, 20, 18, 14, 8}, prod.Data())

			quot, err := k.Div(a, b)
			require.NoError(t, err)
			assert.InDelta(t, 0.125, quot.At(0), 1e-15)
			assert.Equal(t, 8.0, quot.At(7))

			assert.Equal(t, []float64{2, 4, 6, 8, 10, 12, 14, 16}, k.Scale(a, 2).Data())
			assert.Equal(t, []float64{-1, -2, -3, -4, -5, -6, -7, -8}, k.Neg(a).Data())
			assert.Equal(t, 1.5, k.AddScalar(a, 0.5).At(0))
			assert.Equal(t, 1.0, a.At(0), "inputs are not modified")

			sq := k.Map(a, func(x float64) float64 { return x * x })
			assert.Equal(t, 64.0, sq.At(7))
		})
	}
}

func TestKernelBroadcast(t *testing.T) {
	col, err := New(Shape{2, 1}, []float64{10, 20})
	require.NoError(t, err)
	row := Vector([]float64{1, 2, 3})

	for name, k := range kernels() {
		t.Run(name, func(t *testing.T) {
			sum, err := k.Add(col, row)
			require.NoError(t, err)
			assert.Equal(t, Shape{2, 3}, sum.Shape())
			assert.Equal(t, []float64{11, 12, 13, 21, 22, 23}, sum.Data())

			scaled, err := k.Mul(Scalar(2), row)
			require.NoError(t, err)
			assert.Equal(t, []float64{2, 4, 6}, scaled.Data())

			shifted, err := k.Sub(row, Scalar(1))
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1, 2}, shifted.Data())

			_, err = k.Add(row, Vector([]float64{1, 2}))
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestKernelBroadcastTo(t *testing.T) {
	k := Default()

	v, err := k.BroadcastTo(Scalar(3), Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, v.Data())

	same := Vector([]float64{1, 2})
	v, err = k.BroadcastTo(same, Shape{2})
	require.NoError(t, err)
	assert.Equal(t, same.Data(), v.Data())

	_, err = k.BroadcastTo(Vector([]float64{1, 2, 3}), Shape{2})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestKernelDivisionFollowsIEEE(t *testing.T) {
	q, err := Default().Div(Vector([]float64{1, -1, 0}), Scalar(0))
	require.NoError(t, err)
	assert.True(t, math.IsInf(q.At(0), 1))
	assert.True(t, math.IsInf(q.At(1), -1))
	assert.True(t, math.IsNaN(q.At(2)))
}

func TestEqualApprox(t *testing.T) {
	a := Vector([]float64{1, 2})
	assert.True(t, EqualApprox(a, Vector([]float64{1, 2 + 1e-12}), 1e-9))
	assert.False(t, EqualApprox(a, Vector([]float64{1, 2.1}), 1e-9))
	assert.False(t, EqualApprox(a, Scalar(1), 1))
}
