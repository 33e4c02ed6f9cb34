// Package config loads evaluation runs from YAML or TOML files.
//
// A run names a catalog function, the evaluation mode and the point:
//
//	function: rosenbrock
//	mode: hessian
//	point:
//	  x: 1.2
//	  y: [0.8, 0.9]
//	parallel:
//	  enabled: true
//	  workers: 4
//
// Point and direction entries are scalars or lists of numbers.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/adgraph/internal/numeric"
	"github.com/born-ml/adgraph/internal/parallel"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Format is a configuration file format.
type Format int

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = iota
	// FormatYAML is YAML.
	FormatYAML
	// FormatTOML is TOML.
	FormatTOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// Mode is the evaluation strategy of a run.
type Mode string

// Evaluation modes.
const (
	ModeEval    Mode = "eval"
	ModeForward Mode = "forward"
	ModeReverse Mode = "reverse"
	ModeNth     Mode = "nth"
	ModeHessian Mode = "hessian"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeEval, ModeForward, ModeReverse, ModeNth, ModeHessian}

// Parallel configures the numeric kernels.
type Parallel struct {
	Enabled  bool `yaml:"enabled" toml:"enabled"`
	Workers  int  `yaml:"workers" toml:"workers"`
	MinChunk int  `yaml:"min_chunk" toml:"min_chunk"`
}

// Config returns the kernel configuration.
func (p Parallel) Config() parallel.Config {
	return parallel.Config{Enabled: p.Enabled, NumWorkers: p.Workers, MinChunkSize: p.MinChunk}
}

// Run describes one evaluation.
type Run struct {
	Function  string         `yaml:"function" toml:"function"`
	Mode      Mode           `yaml:"mode" toml:"mode"`
	Order     int            `yaml:"order" toml:"order"` // For ModeNth
	Point     map[string]any `yaml:"point" toml:"point"`
	Direction map[string]any `yaml:"direction" toml:"direction"`
	Parallel  Parallel       `yaml:"parallel" toml:"parallel"`
}

// DefaultConfig returns a forward-mode run with the default kernel settings.
func DefaultConfig() Run {
	p := parallel.DefaultConfig()
	return Run{
		Mode:  ModeForward,
		Order: 1,
		Parallel: Parallel{
			Enabled:  p.Enabled,
			Workers:  p.NumWorkers,
			MinChunk: p.MinChunkSize,
		},
	}
}

// Load reads a run from path. Fields missing from the file keep their
// DefaultConfig values.
func Load(path string, format Format) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("config: %w", err)
	}
	if format == FormatAuto {
		if format, err = DetectFormat(path); err != nil {
			return Run{}, err
		}
	}
	return Decode(data, format)
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatAuto, fmt.Errorf("%w: cannot detect format of %q", ErrInvalidConfig, path)
	}
}

// Decode parses a run and validates it.
func Decode(data []byte, format Format) (Run, error) {
	run := DefaultConfig()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&run); err != nil {
			return Run{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &run)
		if err != nil {
			return Run{}, fmt.Errorf("config: parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Run{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
		}
	default:
		return Run{}, fmt.Errorf("%w: unsupported format %s", ErrInvalidConfig, format)
	}
	if err := run.Validate(); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Validate checks the run's fields.
func (r Run) Validate() error {
	if r.Function == "" {
		return fmt.Errorf("%w: function is required", ErrInvalidConfig)
	}
	known := false
	for _, m := range Modes {
		known = known || r.Mode == m
	}
	if !known {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, r.Mode)
	}
	if r.Mode == ModeNth && r.Order < 0 {
		return fmt.Errorf("%w: order must be >= 0, got %d", ErrInvalidConfig, r.Order)
	}
	if r.Parallel.Enabled && r.Parallel.Workers < 1 {
		return fmt.Errorf("%w: parallel.workers must be >= 1", ErrInvalidConfig)
	}
	if _, err := r.Values(); err != nil {
		return err
	}
	if _, err := r.Velocities(); err != nil {
		return err
	}
	return nil
}

// Values converts the point entries.
func (r Run) Values() (map[string]numeric.Value, error) {
	return convert("point", r.Point)
}

// Velocities converts the direction entries.
func (r Run) Velocities() (map[string]numeric.Value, error) {
	return convert("direction", r.Direction)
}

func convert(field string, in map[string]any) (map[string]numeric.Value, error) {
	out := make(map[string]numeric.Value, len(in))
	for name, x := range in {
		v, err := ToValue(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidConfig, field, name, err)
		}
		out[name] = v
	}
	return out, nil
}

// ToValue converts a decoded YAML or TOML number or list of numbers.
func ToValue(x any) (numeric.Value, error) {
	if f, ok := toFloat(x); ok {
		return numeric.Scalar(f), nil
	}
	list, ok := x.([]any)
	if !ok || len(list) == 0 {
		return numeric.Value{}, fmt.Errorf("want a number or a non-empty list of numbers, got %T", x)
	}
	xs := make([]float64, len(list))
	for i, e := range list {
		f, ok := toFloat(e)
		if !ok {
			return numeric.Value{}, fmt.Errorf("element %d: want a number, got %T", i, e)
		}
		xs[i] = f
	}
	return numeric.Vector(xs), nil
}

func toFloat(x any) (float64, bool) {
	switch t := x.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
