package ops

import "math"

// logisticRule: y = 1 / (1 + exp(-x)).
//
// Derivatives, written in terms of s = logistic(x):
//   - dy/dx = s(1 - s)
//   - d²y/dx² = s(1 - s)(1 - 2s)
//
// The value is computed with a sign split so large |x| never overflows exp.
var logisticRule = unaryRule{
	name:  "logistic",
	value: func(x, _ float64) float64 { return logistic(x) },
	d1: func(x, _ float64) float64 {
		s := logistic(x)
		return s * (1 - s)
	},
	d2: func(x, _ float64) float64 {
		s := logistic(x)
		return s * (1 - s) * (1 - 2*s)
	},
}

func logistic(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
