package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

func nth(t *testing.T, root autodiff.Node, n int, b autodiff.Bindings, opts ...autodiff.Option) float64 {
	t.Helper()
	v, err := autodiff.NthDerivative(root, n, b, opts...)
	require.NoError(t, err)
	return scalar(t, v)
}

func TestNthDerivativeOfExp(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := autodiff.Exp(x)
	b := bind(t, x, 0.0)

	for n := 0; n <= 6; n++ {
		assert.InDelta(t, 1.0, nth(t, f, n, b), 1e-12, "order %d", n)
	}
}

func TestNthDerivativeOrderZeroIsValue(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := autodiff.Tanh(x.Mul(y)).Add(autodiff.Sqrt(y))
	b := bind(t, x, 0.3, y, 2.0)

	v, err := autodiff.Eval(f, b)
	require.NoError(t, err)
	assert.Equal(t, scalar(t, v), nth(t, f, 0, b))
}

func TestNthDerivativeOfSin(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := autodiff.Sin(x)

	for _, at := range []float64{0, 0.7, 2} {
		b := bind(t, x, at)
		for n := 0; n <= 7; n++ {
			want := math.Sin(at + float64(n)*math.Pi/2)
			assert.InDelta(t, want, nth(t, f, n, b), 1e-9, "order %d at %v", n, at)
		}
	}
}

func TestNthDerivativeMatchesHyperdual(t *testing.T) {
	// e^x / sqrt(sin(x)^3 + cos(x)^3)
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := autodiff.Exp(x).Div(autodiff.Sqrt(
		autodiff.Sin(x).PowScalar(3).Add(autodiff.Cos(x).PowScalar(3))))
	b := bind(t, x, 1.5)

	assert.InDelta(t, 4.4978, nth(t, f, 0, b), 1e-4)
	assert.InDelta(t, 4.0534, nth(t, f, 1, b), 1e-4)
	assert.InDelta(t, 9.4631, nth(t, f, 2, b), 1e-4)

	// x^x = exp(x log x)
	xx := x.Pow(x)
	for _, at := range []float64{0.5, 2} {
		h := hyperdual.Number{Real: at, E1mag: 1, E2mag: 1}
		want := hyperdual.Exp(hyperdual.Mul(h, hyperdual.Log(h)))
		b := bind(t, x, at)
		assert.InDelta(t, want.Real, nth(t, xx, 0, b), 1e-12)
		assert.InDelta(t, want.E1mag, nth(t, xx, 1, b), 1e-12)
		assert.InDelta(t, want.E1E2mag, nth(t, xx, 2, b), 1e-10)
	}
}

func TestNthDerivativeContextReuse(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := autodiff.Tan(x).Mul(autodiff.Arctan(y)).Add(autodiff.Logistic(x.Sub(y)))
	b := bind(t, x, 0.4, y, -0.3)

	c, err := autodiff.NewContext(g, b)
	require.NoError(t, err)
	for _, n := range []int{3, 5, 2, 3} {
		got, err := c.NthDerivative(f, n)
		require.NoError(t, err)
		want := nth(t, f, n, b)
		assert.InDelta(t, want, scalar(t, got), 1e-9, "order %d", n)
	}
}

func TestNthDerivativeOfIntegerPowerAtZero(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := x.PowScalar(3)
	b := bind(t, x, 0.0)

	want := []float64{0, 0, 0, 6, 0, 0}
	for n, w := range want {
		assert.Equal(t, w, nth(t, f, n, b), "order %d", n)
	}
}

func TestNthDerivativeOfFractionalPowerAtZero(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := x.PowScalar(2.5)
	b := bind(t, x, 0.0)

	assert.Equal(t, 0.0, nth(t, f, 1, b))
	assert.Equal(t, 0.0, nth(t, f, 2, b))

	_, err := autodiff.NthDerivative(f, 3, b)
	assert.ErrorIs(t, err, autodiff.ErrDomain)
	var de *autodiff.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, f.ID(), de.Node)

	// away from zero the general recurrence applies
	at := 1.7
	assert.InDelta(t, 2.5*1.5*0.5*math.Pow(at, -0.5), nth(t, f, 3, bind(t, x, at)), 1e-9)
}

func TestNthDerivativeAlongDirection(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := x.Mul(y)
	b := bind(t, x, 1.0, y, 1.0)
	opts := []autodiff.Option{autodiff.WithDirection(x, 2.0), autodiff.WithDirection(y, 3.0)}

	// (1+2t)(1+3t) = 1 + 5t + 6t²
	assert.Equal(t, 5.0, nth(t, f, 1, b, opts...))
	assert.Equal(t, 12.0, nth(t, f, 2, b, opts...))
	assert.Equal(t, 0.0, nth(t, f, 3, b, opts...))

	// default velocity is 1
	assert.Equal(t, 2.0, nth(t, f, 1, b))
	assert.Equal(t, 2.0, nth(t, f, 2, b))
}

func TestNthDerivativeOnArrays(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := autodiff.Cos(x)
	xs := []float64{-1, 0, 0.5, 3}

	v, err := autodiff.NthDerivative(f, 4, bind(t, x, xs))
	require.NoError(t, err)
	require.Equal(t, numeric.Shape{4}, v.Shape())
	for i, at := range xs {
		assert.InDelta(t, math.Cos(at), v.At(i), 1e-9)
	}

	// a constant term still broadcasts to the bound shape
	c := g.Scalar(2).Add(x.MulScalar(0))
	v, err = autodiff.NthDerivative(c, 2, bind(t, x, xs))
	require.NoError(t, err)
	assert.Equal(t, numeric.Shape{4}, v.Shape())
	assert.True(t, v.AllZero())
}

func TestNthDerivativeInvalidOrder(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	_, err := autodiff.NthDerivative(autodiff.Exp(x), -1, bind(t, x, 1.0))
	assert.ErrorIs(t, err, autodiff.ErrInvalidOrder)
}

func TestNthDerivativeAttributesCompanionErrors(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := x.Pow(y)
	b := bind(t, x, -1.0, y, 2.0)

	v, err := autodiff.Eval(f, b)
	require.NoError(t, err)
	assert.Equal(t, 1.0, scalar(t, v))

	_, err = autodiff.NthDerivative(f, 1, b)
	require.ErrorIs(t, err, autodiff.ErrDomain)
	var de *autodiff.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, f.ID(), de.Node)
	assert.Equal(t, "**", de.Op)

	// arcsin's companion (1 - g²)^-0.5 fails at the boundary
	a := autodiff.Arcsin(x)
	_, err = autodiff.NthDerivative(a, 2, bind(t, x, 1.0, y, 0.0))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, a.ID(), de.Node)
}
