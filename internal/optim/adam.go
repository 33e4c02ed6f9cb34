package optim

import (
	"math"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int                         // Timestep for bias correction
	m     map[autodiff.Node][]float64 // First moment estimates
	v     map[autodiff.Node][]float64 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    // Learning rate (default: 0.001)
	Betas [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer. Zero fields select the defaults.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     make(map[autodiff.Node][]float64),
		v:     make(map[autodiff.Node][]float64),
	}
}

// Step performs a single optimization step. Parameters with no gradient are
// skipped.
func (a *Adam) Step(_ autodiff.Node, params autodiff.Bindings, grads Gradients) error {
	a.t++

	biasCorrection1 := 1 - math.Pow(a.beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(a.beta2, float64(a.t))

	for _, param := range sortedParams(params) {
		grad, ok := getGradient(param, grads)
		if !ok {
			continue
		}
		if err := a.updateParameter(params, param, grad, biasCorrection1, biasCorrection2); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adam) updateParameter(params autodiff.Bindings, param autodiff.Node, grad numeric.Value, bc1, bc2 float64) error {
	m, ok := a.m[param]
	if !ok || len(m) != grad.Len() {
		m = make([]float64, grad.Len())
		a.m[param] = m
	}
	v, ok := a.v[param]
	if !ok || len(v) != grad.Len() {
		v = make([]float64, grad.Len())
		a.v[param] = v
	}

	return update(params, param, grad, func(i int, p, g float64) float64 {
		m[i] = a.beta1*m[i] + (1-a.beta1)*g
		v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
		mHat := m[i] / bc1
		vHat := v[i] / bc2
		return p - a.lr*mHat/(math.Sqrt(vHat)+a.eps)
	})
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.lr
}
