// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim minimizes scalar expressions built with package autodiff.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with optional momentum
//   - Adam: adaptive moment estimation with bias correction
//   - Newton: damped Newton steps on the exact Hessian
//   - Minimize: the loop that evaluates, differentiates and steps
//
// # Basic Usage
//
//	g := autodiff.NewGraph()
//	x := g.Variable("x")
//	y := g.Variable("y")
//	f := x.SubScalar(1).PowScalar(2).Add(y.Mul(y))
//
//	start, _ := autodiff.Bind(x, 0.0, y, 3.0)
//	res, err := optim.Minimize(ctx, f, start,
//	    optim.NewAdam(optim.AdamConfig{LR: 0.1}),
//	    optim.MinimizeConfig{Steps: 500, GradTol: 1e-6},
//	)
//
// # Optimizers
//
// SGD:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//
// Newton (the step is solved with a Cholesky factorization, damping the
// Hessian until it is positive definite):
//
//	opt := optim.NewNewton(optim.NewtonConfig{LR: 1})
package optim
