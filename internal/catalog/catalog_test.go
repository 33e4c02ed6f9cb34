package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/adgraph/autodiff"
)

func TestLookup(t *testing.T) {
	f, err := Lookup("rosenbrock")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, f.Vars)

	_, err = Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestNamesAreSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	f, err := Lookup("booth")
	require.NoError(t, err)
	a, b := f.Build(), f.Build()
	assert.NotSame(t, a.Graph, b.Graph)
	assert.Equal(t, a.Graph.Len(), b.Graph.Len())
}

func TestBindChecksArity(t *testing.T) {
	f, err := Lookup("fike")
	require.NoError(t, err)
	_, err = f.Build().Bind([]float64{1, 2})
	assert.Error(t, err)
}

func TestGradientVanishesAtMinimum(t *testing.T) {
	for _, f := range All() {
		if f.Minimum == nil {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			in := f.Build()
			b, err := in.Bind(f.Minimum)
			require.NoError(t, err)

			_, p, err := autodiff.Forward(in.Root, b)
			require.NoError(t, err)
			for _, v := range in.Vars {
				g, ok := p.At(v).Float()
				require.True(t, ok)
				assert.InDelta(t, 0, g, 1e-9, "∂/∂%s", v.Name())
			}
		})
	}
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	for _, f := range All() {
		t.Run(f.Name, func(t *testing.T) {
			in := f.Build()
			value := func(x []float64) float64 {
				b, err := in.Bind(x)
				require.NoError(t, err)
				v, err := autodiff.Eval(in.Root, b)
				require.NoError(t, err)
				s, _ := v.Float()
				return s
			}

			b, err := in.Bind(f.Start)
			require.NoError(t, err)
			rg := autodiff.NewReverseGraph(in.Graph)
			_, err = rg.Evaluate(in.Root, b)
			require.NoError(t, err)
			require.NoError(t, rg.Outer(in.Root))

			got := make([]float64, len(in.Vars))
			for i, v := range in.Vars {
				g, err := rg.Gradient(v)
				require.NoError(t, err)
				got[i], _ = g.Float()
			}
			want := fd.Gradient(nil, value, f.Start, &fd.Settings{Formula: fd.Central})
			assert.True(t, floats.EqualApprox(want, got, 1e-5), "got %v, want %v", got, want)
		})
	}
}
