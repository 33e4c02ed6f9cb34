package optim_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/numeric"
	"github.com/born-ml/adgraph/internal/optim"
)

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func scalarOf(t *testing.T, v numeric.Value) float64 {
	t.Helper()
	f, ok := v.Float()
	if !ok {
		t.Fatalf("expected a scalar, got %v", v)
	}
	return f
}

// quadratic returns (x-3)² + (y+1)² with its variables.
func quadratic() (f, x, y autodiff.Node) {
	g := autodiff.NewGraph()
	x = g.Variable("x")
	y = g.Variable("y")
	f = x.SubScalar(3).PowScalar(2).Add(y.AddScalar(1).PowScalar(2))
	return f, x, y
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	params := autodiff.Bindings{x: numeric.Scalar(2)}

	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1})
	if err := optimizer.Step(x, params, optim.Gradients{x: numeric.Scalar(1)}); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	if actual := scalarOf(t, params[x]); !floatEqual(actual, 1.9, 1e-12) {
		t.Errorf("SGD update: got %f, want %f", actual, 1.9)
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	params := autodiff.Bindings{x: numeric.Scalar(1)}
	grads := optim.Gradients{x: numeric.Scalar(1)}

	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// First step: velocity = 1, x = 1 - 0.1 = 0.9
	if err := optimizer.Step(x, params, grads); err != nil {
		t.Fatal(err)
	}
	if actual := scalarOf(t, params[x]); !floatEqual(actual, 0.9, 1e-12) {
		t.Errorf("step 1: got %f, want 0.9", actual)
	}

	// Second step: velocity = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	if err := optimizer.Step(x, params, grads); err != nil {
		t.Fatal(err)
	}
	if actual := scalarOf(t, params[x]); !floatEqual(actual, 0.71, 1e-12) {
		t.Errorf("step 2: got %f, want 0.71", actual)
	}
}

// TestSGD_ArrayParameter tests elementwise updates.
func TestSGD_ArrayParameter(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	params := autodiff.Bindings{x: numeric.Vector([]float64{1, 2, 3})}

	optimizer := optim.NewSGD(optim.SGDConfig{LR: 0.5})
	err := optimizer.Step(x, params, optim.Gradients{x: numeric.Vector([]float64{2, 0, -2})})
	if err != nil {
		t.Fatal(err)
	}
	want := numeric.Vector([]float64{0, 2, 4})
	if !numeric.EqualApprox(params[x], want, 1e-12) {
		t.Errorf("got %v, want %v", params[x], want)
	}

	err = optimizer.Step(x, params, optim.Gradients{x: numeric.Vector([]float64{1, 2})})
	if err == nil {
		t.Error("expected an error for a gradient of the wrong size")
	}
}

// TestAdam_FirstStep tests that the first bias-corrected step has size lr.
func TestAdam_FirstStep(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	y := g.Variable("y")
	params := autodiff.Bindings{x: numeric.Scalar(1), y: numeric.Scalar(5)}

	optimizer := optim.NewAdam(optim.AdamConfig{LR: 0.1})
	if optimizer.GetLR() != 0.1 {
		t.Errorf("GetLR: got %f", optimizer.GetLR())
	}

	// y has no gradient and must not move
	if err := optimizer.Step(x, params, optim.Gradients{x: numeric.Scalar(2)}); err != nil {
		t.Fatal(err)
	}
	if actual := scalarOf(t, params[x]); !floatEqual(actual, 0.9, 1e-6) {
		t.Errorf("Adam step: got %f, want 0.9", actual)
	}
	if actual := scalarOf(t, params[y]); actual != 5 {
		t.Errorf("parameter without gradient moved to %f", actual)
	}
}

// TestAdam_Defaults tests the default hyperparameters.
func TestAdam_Defaults(t *testing.T) {
	optimizer := optim.NewAdam(optim.AdamConfig{})
	if optimizer.GetLR() != 0.001 {
		t.Errorf("default LR: got %f, want 0.001", optimizer.GetLR())
	}
	if sgd := optim.NewSGD(optim.SGDConfig{}); sgd.GetLR() != 0.01 {
		t.Errorf("default SGD LR: got %f, want 0.01", sgd.GetLR())
	}
}

// TestNewton_QuadraticInOneStep tests that Newton solves a quadratic exactly.
func TestNewton_QuadraticInOneStep(t *testing.T) {
	f, x, y := quadratic()
	start := autodiff.Bindings{x: numeric.Scalar(0), y: numeric.Scalar(0)}

	res, err := optim.Minimize(context.Background(), f, start, optim.NewNewton(optim.NewtonConfig{}), optim.MinimizeConfig{Steps: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged || res.Steps != 1 {
		t.Errorf("got converged=%v after %d steps, want convergence after 1", res.Converged, res.Steps)
	}
	if !floatEqual(scalarOf(t, res.Params[x]), 3, 1e-12) || !floatEqual(scalarOf(t, res.Params[y]), -1, 1e-12) {
		t.Errorf("minimum at (%v, %v), want (3, -1)", res.Params[x], res.Params[y])
	}
	if scalarOf(t, start[x]) != 0 {
		t.Error("Minimize modified the starting point")
	}
}

// TestNewton_Damping tests the damping schedule on a concave objective.
func TestNewton_Damping(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Variable("x")
	f := x.Mul(x).Neg()
	params := autodiff.Bindings{x: numeric.Scalar(1)}
	grads := optim.Gradients{x: numeric.Scalar(-2)}

	// H = -2 needs λ > 2: 0, 1e-6, ..., 1e-1 fail and 1 fails, 10 succeeds.
	if err := optim.NewNewton(optim.NewtonConfig{}).Step(f, params, grads); err != nil {
		t.Fatalf("damped step failed: %v", err)
	}
	// (−2 + 10) d = −2, d = −0.25, x = 1.25
	if actual := scalarOf(t, params[x]); !floatEqual(actual, 1.25, 1e-12) {
		t.Errorf("damped step: got %f, want 1.25", actual)
	}

	err := optim.NewNewton(optim.NewtonConfig{MaxTries: 2}).Step(f, params, grads)
	if !errors.Is(err, optim.ErrNotPositiveDefinite) {
		t.Errorf("got %v, want ErrNotPositiveDefinite", err)
	}
}

// TestMinimize_GradientMethods tests that SGD and Adam reach the minimum.
func TestMinimize_GradientMethods(t *testing.T) {
	tests := []struct {
		name     string
		opt      optim.Optimizer
		converge bool    // Whether the gradient tolerance must be reached
		tol      float64 // Distance to the minimizer
	}{
		{"sgd", optim.NewSGD(optim.SGDConfig{LR: 0.1}), true, 1e-5},
		{"sgd_momentum", optim.NewSGD(optim.SGDConfig{LR: 0.05, Momentum: 0.5}), true, 1e-5},
		{"adam", optim.NewAdam(optim.AdamConfig{LR: 0.05}), false, 5e-2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, x, y := quadratic()
			start := autodiff.Bindings{x: numeric.Scalar(0), y: numeric.Scalar(0)}

			steps := 0
			res, err := optim.Minimize(context.Background(), f, start, tt.opt, optim.MinimizeConfig{
				Steps:   3000,
				GradTol: 1e-6,
				OnStep:  func(int, float64) { steps++ },
			})
			if err != nil {
				t.Fatal(err)
			}
			if tt.converge && !res.Converged {
				t.Fatalf("did not converge in %d steps, value %g", res.Steps, res.Value)
			}
			if steps != res.Steps {
				t.Errorf("OnStep called %d times for %d steps", steps, res.Steps)
			}
			if !floatEqual(scalarOf(t, res.Params[x]), 3, tt.tol) || !floatEqual(scalarOf(t, res.Params[y]), -1, tt.tol) {
				t.Errorf("minimum at (%v, %v), want (3, -1)", res.Params[x], res.Params[y])
			}
		})
	}
}

// TestMinimize_Errors tests cancellation and non-scalar objectives.
func TestMinimize_Errors(t *testing.T) {
	f, x, y := quadratic()
	start := autodiff.Bindings{x: numeric.Scalar(0), y: numeric.Scalar(0)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := optim.Minimize(ctx, f, start, optim.NewSGD(optim.SGDConfig{}), optim.MinimizeConfig{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}

	vec := autodiff.Bindings{x: numeric.Vector([]float64{0, 1}), y: numeric.Scalar(0)}
	_, err = optim.Minimize(context.Background(), f, vec, optim.NewSGD(optim.SGDConfig{}), optim.MinimizeConfig{})
	if !errors.Is(err, autodiff.ErrNotScalar) {
		t.Errorf("got %v, want ErrNotScalar", err)
	}
}
