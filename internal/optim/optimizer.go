// Package optim minimizes scalar expressions with gradients from the autodiff
// engine.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - SGD: gradient descent with momentum
//   - Adam: adaptive moment estimation
//   - Newton: Newton steps from the exact Hessian
//   - Minimize: the driver loop
//
// Parameters are the bound values of an expression's variables, so an
// optimizer updates Bindings in place.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.01})
//	res, err := optim.Minimize(ctx, f, start, opt, optim.MinimizeConfig{Steps: 500})
package optim

import (
	"fmt"
	"sort"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Gradients maps each variable to ∂f/∂variable.
type Gradients map[autodiff.Node]numeric.Value

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to params. f is the objective, so optimizers
	// that need more than the gradient (Newton) can evaluate it.
	Step(f autodiff.Node, params autodiff.Bindings, grads Gradients) error

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// getGradient returns the gradient of param, or false when the objective does
// not depend on it.
func getGradient(param autodiff.Node, grads Gradients) (numeric.Value, bool) {
	g, ok := grads[param]
	return g, ok && g.IsValid()
}

// update applies fn elementwise to a parameter and its gradient and stores
// the result in params.
func update(params autodiff.Bindings, param autodiff.Node, grad numeric.Value, fn func(i int, p, g float64) float64) error {
	cur := params[param]
	if cur.Len() != grad.Len() {
		return fmt.Errorf("optim: gradient of %s has %d elements, parameter has %d", param.Name(), grad.Len(), cur.Len())
	}
	pd, gd := cur.Data(), grad.Data()
	out := make([]float64, len(pd))
	for i := range pd {
		out[i] = fn(i, pd[i], gd[i])
	}
	next, err := numeric.New(cur.Shape(), out)
	if err != nil {
		return err
	}
	params[param] = next
	return nil
}

// sortedParams returns the bound variables in construction order, so
// optimizer state is keyed deterministically.
func sortedParams(params autodiff.Bindings) []autodiff.Node {
	out := make([]autodiff.Node, 0, len(params))
	for n := range params {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
