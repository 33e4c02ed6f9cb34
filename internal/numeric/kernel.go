package numeric

import (
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/adgraph/internal/parallel"
)

// Kernel runs elementwise array operations.
//
// Equal-shape arithmetic goes through gonum's floats routines on chunks split
// by parallel.Range; mixed shapes fall back to a strided broadcast loop.
type Kernel struct {
	cfg parallel.Config
}

var defaultKernel = NewKernel(parallel.DefaultConfig())

// NewKernel creates a kernel with the given parallel configuration.
func NewKernel(cfg parallel.Config) *Kernel {
	return &Kernel{cfg: cfg}
}

// Default returns the shared kernel configured with parallel.DefaultConfig.
func Default() *Kernel {
	return defaultKernel
}

// Config returns the kernel's parallel configuration.
func (k *Kernel) Config() parallel.Config {
	return k.cfg
}

// Map applies f to every element of v.
func (k *Kernel) Map(v Value, f func(float64) float64) Value {
	out := make([]float64, len(v.data))
	parallel.Range(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(v.data[i])
		}
	}, k.cfg)
	return Value{shape: v.shape.Clone(), data: out}
}

// Zip applies f elementwise to the broadcast of a and b.
func (k *Kernel) Zip(a, b Value, f func(x, y float64) float64) (Value, error) {
	shape, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		return Value{}, err
	}
	out := make([]float64, shape.NumElements())

	switch {
	case len(a.data) == len(out) && len(b.data) == len(out):
		parallel.Range(len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = f(a.data[i], b.data[i])
			}
		}, k.cfg)
	case len(b.data) == 1 && len(a.data) == len(out):
		y := b.data[0]
		parallel.Range(len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = f(a.data[i], y)
			}
		}, k.cfg)
	case len(a.data) == 1 && len(b.data) == len(out):
		x := a.data[0]
		parallel.Range(len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = f(x, b.data[i])
			}
		}, k.cfg)
	default:
		outStrides := shape.ComputeStrides()
		aStrides := broadcastStrides(a.shape, shape)
		bStrides := broadcastStrides(b.shape, shape)
		parallel.Range(len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = f(a.data[flatIndex(i, outStrides, aStrides)], b.data[flatIndex(i, outStrides, bStrides)])
			}
		}, k.cfg)
	}

	return Value{shape: shape, data: out}, nil
}

// sameShape runs a gonum floats routine on equal-length operands chunk by chunk.
func (k *Kernel) sameShape(a, b Value, fn func(dst, s, t []float64) []float64) Value {
	out := make([]float64, len(a.data))
	parallel.Range(len(out), func(start, end int) {
		fn(out[start:end], a.data[start:end], b.data[start:end])
	}, k.cfg)
	return Value{shape: a.shape.Clone(), data: out}
}

// Add returns a + b.
func (k *Kernel) Add(a, b Value) (Value, error) {
	if a.shape.Equal(b.shape) {
		return k.sameShape(a, b, floats.AddTo), nil
	}
	return k.Zip(a, b, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b.
func (k *Kernel) Sub(a, b Value) (Value, error) {
	if a.shape.Equal(b.shape) {
		return k.sameShape(a, b, floats.SubTo), nil
	}
	return k.Zip(a, b, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b.
func (k *Kernel) Mul(a, b Value) (Value, error) {
	if a.shape.Equal(b.shape) {
		return k.sameShape(a, b, floats.MulTo), nil
	}
	return k.Zip(a, b, func(x, y float64) float64 { return x * y })
}

// Div returns a / b. Division by zero follows IEEE 754; callers check domains.
func (k *Kernel) Div(a, b Value) (Value, error) {
	if a.shape.Equal(b.shape) {
		return k.sameShape(a, b, floats.DivTo), nil
	}
	return k.Zip(a, b, func(x, y float64) float64 { return x / y })
}

// Scale returns c * v.
func (k *Kernel) Scale(v Value, c float64) Value {
	out := make([]float64, len(v.data))
	parallel.Range(len(out), func(start, end int) {
		floats.ScaleTo(out[start:end], c, v.data[start:end])
	}, k.cfg)
	return Value{shape: v.shape.Clone(), data: out}
}

// AddScalar returns v + c.
func (k *Kernel) AddScalar(v Value, c float64) Value {
	out := make([]float64, len(v.data))
	copy(out, v.data)
	parallel.Range(len(out), func(start, end int) {
		floats.AddConst(c, out[start:end])
	}, k.cfg)
	return Value{shape: v.shape.Clone(), data: out}
}

// Neg returns -v.
func (k *Kernel) Neg(v Value) Value {
	return k.Scale(v, -1)
}

// BroadcastTo expands v to shape.
func (k *Kernel) BroadcastTo(v Value, shape Shape) (Value, error) {
	if v.shape.Equal(shape) {
		return v, nil
	}
	return k.Zip(v, Zeros(shape), func(x, _ float64) float64 { return x })
}

// EqualApprox reports whether a and b have equal shapes and elements within tol.
func EqualApprox(a, b Value, tol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	return floats.EqualApprox(a.data, b.data, tol)
}
