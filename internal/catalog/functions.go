package catalog

import (
	"github.com/born-ml/adgraph/autodiff"
)

func init() {
	register(Function{
		Name:        "rosenbrock",
		Description: "(1-x)² + 100(y-x²)², curved valley",
		Vars:        []string{"x", "y"},
		Start:       []float64{-1.2, 1},
		Minimum:     []float64{1, 1},
		build: func(g *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x, y := v[0], v[1]
			return g.Scalar(1).Sub(x).PowScalar(2).
				Add(y.Sub(x.PowScalar(2)).PowScalar(2).MulScalar(100))
		},
	})

	register(Function{
		Name:        "himmelblau",
		Description: "(x²+y-11)² + (x+y²-7)², four minima",
		Vars:        []string{"x", "y"},
		Start:       []float64{0, 0},
		Minimum:     []float64{3, 2},
		build: func(_ *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x, y := v[0], v[1]
			a := x.PowScalar(2).Add(y).SubScalar(11)
			b := x.Add(y.PowScalar(2)).SubScalar(7)
			return a.PowScalar(2).Add(b.PowScalar(2))
		},
	})

	register(Function{
		Name:        "beale",
		Description: "(1.5-x+xy)² + (2.25-x+xy²)² + (2.625-x+xy³)²",
		Vars:        []string{"x", "y"},
		Start:       []float64{1, 1},
		Minimum:     []float64{3, 0.5},
		build: func(g *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x, y := v[0], v[1]
			term := func(c float64, p float64) autodiff.Node {
				return g.Scalar(c).Sub(x).Add(x.Mul(y.PowScalar(p))).PowScalar(2)
			}
			return term(1.5, 1).Add(term(2.25, 2)).Add(term(2.625, 3))
		},
	})

	register(Function{
		Name:        "booth",
		Description: "(x+2y-7)² + (2x+y-5)², quadratic bowl",
		Vars:        []string{"x", "y"},
		Start:       []float64{0, 0},
		Minimum:     []float64{1, 3},
		build: func(_ *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x, y := v[0], v[1]
			a := x.Add(y.MulScalar(2)).SubScalar(7)
			b := x.MulScalar(2).Add(y).SubScalar(5)
			return a.PowScalar(2).Add(b.PowScalar(2))
		},
	})

	register(Function{
		Name:        "fike",
		Description: "eˣ / sqrt(sin³x + cos³x)",
		Vars:        []string{"x"},
		Start:       []float64{1.5},
		build: func(_ *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x := v[0]
			return autodiff.Exp(x).Div(autodiff.Sqrt(
				autodiff.Sin(x).PowScalar(3).Add(autodiff.Cos(x).PowScalar(3))))
		},
	})

	register(Function{
		Name:        "gaussian",
		Description: "exp(-(x²+y²)/2), smooth bump",
		Vars:        []string{"x", "y"},
		Start:       []float64{0.5, -0.5},
		build: func(_ *autodiff.Graph, v []autodiff.Node) autodiff.Node {
			x, y := v[0], v[1]
			return autodiff.Exp(x.PowScalar(2).Add(y.PowScalar(2)).MulScalar(-0.5))
		},
	})

	register(Function{
		Name:        "logistic_loss",
		Description: "negative log-likelihood of a one-feature logistic regression",
		Vars:        []string{"w", "b"},
		Start:       []float64{0, 0},
		build:       logisticLoss,
	})
}

// logisticData is a small, non-separable data set: feature, label.
var logisticData = [][2]float64{
	{-2, 0}, {-1, 0}, {-0.5, 1}, {0.5, 0}, {1, 1}, {2, 1},
}

// logisticLoss sums -[y log σ(wx+b) + (1-y) log(1-σ(wx+b))] over the data.
// log(1-σ(z)) is written as log σ(-z).
func logisticLoss(_ *autodiff.Graph, v []autodiff.Node) autodiff.Node {
	w, b := v[0], v[1]
	var loss autodiff.Node
	for _, d := range logisticData {
		z := w.MulScalar(d[0]).Add(b)
		if d[1] == 0 {
			z = z.Neg()
		}
		term := autodiff.Log(autodiff.Logistic(z)).Neg()
		if !loss.IsValid() {
			loss = term
			continue
		}
		loss = loss.Add(term)
	}
	return loss
}
