package optim

import (
	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

// SGD implements gradient descent with optional momentum.
//
// Update rule (without momentum):
//
//	param = param - lr * gradient
//
// Update rule (with momentum):
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
type SGD struct {
	lr         float64
	momentum   float64
	velocities map[autodiff.Node][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer. A zero LR selects the default.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[autodiff.Node][]float64),
	}
}

// Step performs a single optimization step. Parameters without a gradient
// are skipped.
func (s *SGD) Step(_ autodiff.Node, params autodiff.Bindings, grads Gradients) error {
	for _, param := range sortedParams(params) {
		grad, ok := getGradient(param, grads)
		if !ok {
			continue
		}
		var err error
		if s.momentum == 0 {
			err = update(params, param, grad, func(_ int, p, g float64) float64 {
				return p - s.lr*g
			})
		} else {
			err = s.updateWithMomentum(params, param, grad)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SGD) updateWithMomentum(params autodiff.Bindings, param autodiff.Node, grad numeric.Value) error {
	velocity, exists := s.velocities[param]
	if !exists || len(velocity) != grad.Len() {
		velocity = make([]float64, grad.Len())
		s.velocities[param] = velocity
	}
	return update(params, param, grad, func(i int, p, g float64) float64 {
		velocity[i] = s.momentum*velocity[i] + g
		return p - s.lr*velocity[i]
	})
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR sets the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
