package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

// MinimizeConfig controls the driver loop.
type MinimizeConfig struct {
	Steps   int     // Maximum number of steps (default: 1000)
	GradTol float64 // Stop when every gradient element is below this in magnitude (default: 1e-8)

	// OnStep, when set, is called after each step with the objective value
	// before the step.
	OnStep func(step int, value float64)
}

// Result is the outcome of Minimize.
type Result struct {
	Params    autodiff.Bindings
	Value     float64
	Steps     int
	Converged bool
}

// Minimize runs opt on the scalar objective f starting from start, which is
// not modified. Gradients come from a ReverseGraph that is reset before every
// step, so recorded edges never accumulate across iterations.
func Minimize(ctx context.Context, f autodiff.Node, start autodiff.Bindings, opt Optimizer, cfg MinimizeConfig) (*Result, error) {
	if cfg.Steps == 0 {
		cfg.Steps = 1000
	}
	if cfg.GradTol == 0 {
		cfg.GradTol = 1e-8
	}

	params := make(autodiff.Bindings, len(start))
	for n, v := range start {
		params[n] = v
	}
	vars := sortedParams(params)
	rg := autodiff.NewReverseGraph(f.Graph())

	res := &Result{Params: params}
	for step := 0; step < cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rg.ResetAll()
		v, err := rg.Evaluate(f, params)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		value, ok := v.Float()
		if !ok {
			return res, fmt.Errorf("%w: objective has shape %v", autodiff.ErrNotScalar, v.Shape())
		}
		res.Value = value
		if err := rg.Outer(f); err != nil {
			return res, err
		}

		grads := make(Gradients, len(vars))
		largest := 0.0
		for _, x := range vars {
			g, err := rg.Gradient(x)
			if err != nil {
				continue // f does not depend on x
			}
			grads[x] = g
			largest = math.Max(largest, maxAbs(g))
		}
		if largest < cfg.GradTol {
			res.Converged = true
			return res, nil
		}

		if err := opt.Step(f, params, grads); err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		res.Steps = step + 1
		if cfg.OnStep != nil {
			cfg.OnStep(step, value)
		}
	}

	v, err := autodiff.Eval(f, params)
	if err != nil {
		return res, err
	}
	res.Value, _ = v.Float()
	return res, nil
}

func maxAbs(v numeric.Value) float64 {
	m := 0.0
	for _, x := range v.Data() {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
