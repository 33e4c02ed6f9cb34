package optim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

// ErrNotPositiveDefinite is returned when damping cannot make the Hessian
// positive definite.
var ErrNotPositiveDefinite = errors.New("hessian is not positive definite")

// Newton takes damped Newton steps:
//
//	(H + λI) d = g
//	param = param - lr * d
//
// λ starts at zero and grows by Growth until the Cholesky factorization of
// H + λI succeeds. Every parameter must be bound to a scalar.
type Newton struct {
	lr       float64
	damping  float64
	growth   float64
	maxTries int
}

// NewtonConfig holds configuration for the Newton optimizer.
type NewtonConfig struct {
	LR       float64 // Step scale (default: 1)
	Damping  float64 // First non-zero λ (default: 1e-6)
	Growth   float64 // λ multiplier per retry (default: 10)
	MaxTries int     // Factorization attempts (default: 20)
}

// NewNewton creates a Newton optimizer. Zero fields select the defaults.
func NewNewton(config NewtonConfig) *Newton {
	if config.LR == 0 {
		config.LR = 1
	}
	if config.Damping == 0 {
		config.Damping = 1e-6
	}
	if config.Growth == 0 {
		config.Growth = 10
	}
	if config.MaxTries == 0 {
		config.MaxTries = 20
	}
	return &Newton{lr: config.LR, damping: config.Damping, growth: config.Growth, maxTries: config.MaxTries}
}

// Step solves for the Newton direction at params and applies it.
func (n *Newton) Step(f autodiff.Node, params autodiff.Bindings, grads Gradients) error {
	vars := sortedParams(params)
	h, err := autodiff.Hessian(f, params)
	if err != nil {
		return err
	}
	hm, err := h.Matrix(vars...)
	if err != nil {
		return err
	}

	g := mat.NewVecDense(len(vars), nil)
	for i, v := range vars {
		gv, ok := getGradient(v, grads)
		if !ok {
			continue
		}
		x, ok := gv.Float()
		if !ok {
			return fmt.Errorf("%w: gradient of %s", autodiff.ErrNotScalar, v.Name())
		}
		g.SetVec(i, x)
	}

	chol, err := n.factorize(hm)
	if err != nil {
		return err
	}
	var d mat.VecDense
	if err := chol.SolveVecTo(&d, g); err != nil {
		return fmt.Errorf("optim: newton solve: %w", err)
	}

	for i, v := range vars {
		x, _ := params[v].Float()
		params[v] = numeric.Scalar(x - n.lr*d.AtVec(i))
	}
	return nil
}

// factorize returns the Cholesky factorization of H + λI for the smallest λ
// in the damping schedule that makes it positive definite.
func (n *Newton) factorize(h *mat.SymDense) (*mat.Cholesky, error) {
	size := h.SymmetricDim()
	damped := mat.NewSymDense(size, nil)
	lambda := 0.0
	for range n.maxTries {
		damped.CopySym(h)
		for i := range size {
			damped.SetSym(i, i, h.At(i, i)+lambda)
		}
		var chol mat.Cholesky
		if chol.Factorize(damped) {
			return &chol, nil
		}
		if lambda == 0 {
			lambda = n.damping
		} else {
			lambda *= n.growth
		}
	}
	return nil, fmt.Errorf("%w: after %d attempts, λ = %g", ErrNotPositiveDefinite, n.maxTries, lambda)
}

// GetLR returns the step scale.
func (n *Newton) GetLR() float64 {
	return n.lr
}
