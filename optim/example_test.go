// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"context"
	"fmt"

	"github.com/born-ml/adgraph/autodiff"
	"github.com/born-ml/adgraph/optim"
)

func ExampleMinimize() {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	// (x-1)² + 2(y+3)²
	f := x.SubScalar(1).PowScalar(2).Add(y.AddScalar(3).PowScalar(2).MulScalar(2))

	start, _ := autodiff.Bind(x, 0.0, y, 0.0)
	res, err := optim.Minimize(context.Background(), f, start,
		optim.NewNewton(optim.NewtonConfig{}),
		optim.MinimizeConfig{Steps: 10},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	px, _ := res.Params[x].Float()
	py, _ := res.Params[y].Float()
	fmt.Printf("converged=%t x=%.3f y=%.3f\n", res.Converged, px, py)

	// Output:
	// converged=true x=1.000 y=-3.000
}
