package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/adgraph/internal/numeric"
)

const yamlRun = `
function: rosenbrock
mode: nth
order: 3
point:
  x: 1.2
  y: [0.8, 1]
direction:
  x: 2
parallel:
  enabled: true
  workers: 2
  min_chunk: 16
`

const tomlRun = `
function = "rosenbrock"
mode = "nth"
order = 3

[point]
x = 1.2
y = [0.8, 1]

[direction]
x = 2

[parallel]
enabled = true
workers = 2
min_chunk = 16
`

func TestDecodeFormatsAgree(t *testing.T) {
	for name, tt := range map[string]struct {
		data   string
		format Format
	}{
		"yaml": {yamlRun, FormatYAML},
		"toml": {tomlRun, FormatTOML},
	} {
		t.Run(name, func(t *testing.T) {
			run, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, "rosenbrock", run.Function)
			assert.Equal(t, ModeNth, run.Mode)
			assert.Equal(t, 3, run.Order)
			assert.Equal(t, Parallel{Enabled: true, Workers: 2, MinChunk: 16}, run.Parallel)

			values, err := run.Values()
			require.NoError(t, err)
			assert.True(t, numeric.EqualApprox(numeric.Scalar(1.2), values["x"], 0))
			assert.True(t, numeric.EqualApprox(numeric.Vector([]float64{0.8, 1}), values["y"], 0))

			vel, err := run.Velocities()
			require.NoError(t, err)
			assert.True(t, numeric.EqualApprox(numeric.Scalar(2), vel["x"], 0))

			cfg := run.Parallel.Config()
			assert.Equal(t, 2, cfg.NumWorkers)
			assert.Equal(t, 16, cfg.MinChunkSize)
		})
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	run, err := Decode([]byte("function: booth\npoint: {x: 1, y: 3}\n"), FormatYAML)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Mode, run.Mode)
	assert.Equal(t, def.Order, run.Order)
	assert.Equal(t, def.Parallel, run.Parallel)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"missing function", "mode: eval\n", FormatYAML},
		{"unknown mode", "function: booth\nmode: sideways\n", FormatYAML},
		{"negative order", "function: booth\nmode: nth\norder: -1\n", FormatYAML},
		{"bad point", "function: booth\npoint: {x: abc}\n", FormatYAML},
		{"empty list", "function: booth\npoint: {x: []}\n", FormatYAML},
		{"no workers", "function: booth\nparallel: {enabled: true, workers: 0}\n", FormatYAML},
		{"unknown yaml key", "function: booth\nspeed: 3\n", FormatYAML},
		{"unknown toml key", "function = \"booth\"\nspeed = 3\n", FormatTOML},
		{"bad format", "function: booth\n", Format(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			assert.Error(t, err)
		})
	}

	_, err := Decode([]byte("mode: eval\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadDetectsFormat(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "run.yml")
	tml := filepath.Join(dir, "run.toml")
	require.NoError(t, os.WriteFile(yml, []byte(yamlRun), 0o600))
	require.NoError(t, os.WriteFile(tml, []byte(tomlRun), 0o600))

	a, err := Load(yml, FormatAuto)
	require.NoError(t, err)
	b, err := Load(tml, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, a.Function, b.Function)
	assert.Equal(t, a.Order, b.Order)

	_, err = Load(filepath.Join(dir, "run.json"), FormatAuto)
	assert.Error(t, err)

	_, err = DetectFormat("run.json")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestToValue(t *testing.T) {
	v, err := ToValue(int64(3))
	require.NoError(t, err)
	assert.Equal(t, "3", v.String())

	v, err = ToValue([]any{1, 2.5})
	require.NoError(t, err)
	assert.Equal(t, "[1 2.5]", v.String())

	_, err = ToValue([]any{1, "x"})
	assert.Error(t, err)
	_, err = ToValue("1")
	assert.Error(t, err)
}
