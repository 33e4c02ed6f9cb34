package ops

import "math"

// expRule: y = exp(x). Every derivative equals the value.
var expRule = unaryRule{
	name:  "exp",
	value: func(x, _ float64) float64 { return math.Exp(x) },
	d1:    func(x, _ float64) float64 { return math.Exp(x) },
	d2:    func(x, _ float64) float64 { return math.Exp(x) },
}

// sqrtRule: y = sqrt(x).
//
// The value is defined for x >= 0, the derivatives only for x > 0:
//   - dy/dx = 1 / (2 sqrt(x))
//   - d²y/dx² = -1 / (4 x^(3/2))
var sqrtRule = unaryRule{
	name:  "sqrt",
	value: func(x, _ float64) float64 { return math.Sqrt(x) },
	d1:    func(x, _ float64) float64 { return 0.5 / math.Sqrt(x) },
	d2:    func(x, _ float64) float64 { return -0.25 * math.Pow(x, -1.5) },
	domain: func(x, _ float64) string {
		if x < 0 {
			return "square root of negative number"
		}
		return ""
	},
	dDom: func(x, _ float64) string {
		if x <= 0 {
			return "square root is not differentiable at non-positive input"
		}
		return ""
	},
}
