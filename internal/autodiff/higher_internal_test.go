package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertNoTransients checks that no overlay node or cache entry survived.
func assertNoTransients(t *testing.T, c *EvaluationContext) {
	t.Helper()
	assert.Empty(t, c.overlay)
	base := ID(len(c.g.nodes))
	for id := range c.values {
		assert.Less(t, id, base, "value cached for transient node %d", id)
	}
	for id := range c.partials {
		assert.Less(t, id, base, "partials cached for transient node %d", id)
	}
	for id := range c.second {
		assert.Less(t, id, base, "second partials cached for transient node %d", id)
	}
	for key := range c.taylor {
		assert.Less(t, key.id, base, "coefficient %d cached for transient node %d", key.order, key.id)
	}
}

func TestNthDerivativeReleasesCompanions(t *testing.T) {
	g := NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := Sin(Cos(x).Mul(y)).Add(Arcsin(x.MulScalar(0.3))).Add(x.Pow(y))

	b, err := Bind(x, 0.6, y, 1.4)
	require.NoError(t, err)
	c, err := NewContext(g, b)
	require.NoError(t, err)

	for _, n := range []int{1, 4, 2} {
		_, err := c.NthDerivative(f, n)
		require.NoError(t, err)
		assertNoTransients(t, c)
	}
	assert.Equal(t, 1, c.Visits(x))
}

func TestNthDerivativeReleasesCompanionsOnError(t *testing.T) {
	g := NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	f := Tanh(x).Add(x.Pow(y))

	b, err := Bind(x, -2.0, y, 3.0)
	require.NoError(t, err)
	c, err := NewContext(g, b)
	require.NoError(t, err)

	_, err = c.NthDerivative(f, 3)
	require.ErrorIs(t, err, ErrDomain)
	assertNoTransients(t, c)
}

func TestTransientIDsFollowTheGraph(t *testing.T) {
	g := NewGraph()
	x := g.Variable("x")
	f := Sin(x)

	b, err := Bind(x, 0.1)
	require.NoError(t, err)
	c, err := NewContext(g, b)
	require.NoError(t, err)
	require.NoError(t, c.begin(f))

	mark := len(c.overlay)
	h := c.companion(f.id, c.at(f.id))
	assert.Equal(t, ID(g.Len()), h)
	assert.True(t, c.isTransient(h))
	assert.False(t, c.isTransient(f.id))

	_, err = c.eval(h)
	require.NoError(t, err)
	c.release(mark, 0)
	assertNoTransients(t, c)

	// released IDs are handed out again
	assert.Equal(t, h, c.tConst(2))
}
