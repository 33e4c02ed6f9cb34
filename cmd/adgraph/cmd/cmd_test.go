package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/catalog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := NewRootCmd(&out, &logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	for _, name := range catalog.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "(1, 1)")
}

func TestEvalModes(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"eval", "booth", "--at", "x=1", "--at", "y=3", "--mode", "eval"}, []string{"value", "0"}},
		{[]string{"eval", "booth", "--at", "x=0", "--at", "y=0"}, []string{"∂/∂x", "-34", "∂/∂y", "-38"}},
		{[]string{"eval", "booth", "--mode", "reverse"}, []string{"∂/∂x", "-34"}},
		{[]string{"eval", "booth", "--mode", "hessian"}, []string{"∂²/∂x∂x", "10", "∂²/∂x∂y", "8"}},
		{[]string{"eval", "gaussian", "--at", "x=0", "--at", "y=0", "--mode", "nth", "--order", "2"}, []string{"derivative", "-2"}},
		{[]string{"eval", "gaussian", "--at", "x=0,1", "--at", "y=0", "--mode", "eval"}, []string{"[1 0.6065"}},
	}
	for _, tt := range tests {
		t.Run(tt.args[1]+"_"+tt.args[len(tt.args)-1], func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestEvalFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "function: booth\nmode: hessian\npoint:\n  x: 1.2\n  y: 0.8\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := execute(t, "eval", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "booth")
	assert.Contains(t, out, "1.2")
	assert.Regexp(t, `∂²/∂x∂y\s+8\n`, out)
}

func TestEvalErrors(t *testing.T) {
	_, err := execute(t, "eval", "nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownFunction)

	_, err = execute(t, "eval", "booth", "--at", "z=1")
	assert.ErrorIs(t, err, autodiff.ErrUnboundVariable)

	_, err = execute(t, "eval", "booth", "--at", "x")
	assert.Error(t, err)

	_, err = execute(t, "eval", "booth", "--mode", "sideways")
	assert.Error(t, err)

	_, err = execute(t, "eval", "logistic_loss", "--mode", "nth", "--order", "-1")
	assert.Error(t, err)

	_, err = execute(t, "eval")
	assert.Error(t, err)
}

func TestMinimize(t *testing.T) {
	out, err := execute(t, "minimize", "booth", "--optimizer", "newton")
	require.NoError(t, err)
	assert.Contains(t, out, "converged  true")

	out, err = execute(t, "minimize", "booth", "--optimizer", "sgd", "--lr", "0.05", "--steps", "3000", "--tol", "1e-6")
	require.NoError(t, err)
	assert.Contains(t, out, "converged  true")

	_, err = execute(t, "minimize", "booth", "--optimizer", "lbfgs")
	assert.Error(t, err)

	_, err = execute(t, "minimize", "booth", "--from", "1")
	assert.Error(t, err)
}
