// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"

	"github.com/born-ml/adgraph/autodiff"
	"github.com/born-ml/adgraph/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// Gradients maps parameters to their gradients.
type Gradients = optim.Gradients

// ErrNotPositiveDefinite is returned by Newton when damping cannot make the
// Hessian positive definite.
var ErrNotPositiveDefinite = optim.ErrNotPositiveDefinite

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Newton

// Newton represents the damped Newton optimizer.
type Newton = optim.Newton

// NewtonConfig contains configuration for Newton optimizer.
type NewtonConfig = optim.NewtonConfig

// NewNewton creates a new Newton optimizer.
func NewNewton(config NewtonConfig) *Newton {
	return optim.NewNewton(config)
}

// MinimizeConfig controls the Minimize loop.
type MinimizeConfig = optim.MinimizeConfig

// Result is the outcome of Minimize.
type Result = optim.Result

// Minimize runs opt on the scalar expression f from start.
//
// Example:
//
//	res, err := optim.Minimize(ctx, f, start,
//	    optim.NewNewton(optim.NewtonConfig{}),
//	    optim.MinimizeConfig{Steps: 20},
//	)
func Minimize(ctx context.Context, f autodiff.Node, start autodiff.Bindings, opt Optimizer, cfg MinimizeConfig) (*Result, error) {
	return optim.Minimize(ctx, f, start, opt, cfg)
}
