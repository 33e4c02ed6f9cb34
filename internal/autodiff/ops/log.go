package ops

import "math"

// logRule: y = ln(x), defined for x > 0.
//
// Derivatives:
//   - dy/dx = 1/x
//   - d²y/dx² = -1/x²
var logRule = unaryRule{
	name:  "log",
	value: func(x, _ float64) float64 { return math.Log(x) },
	d1:    func(x, _ float64) float64 { return 1 / x },
	d2:    func(x, _ float64) float64 { return -1 / (x * x) },
	domain: func(x, _ float64) string {
		if x <= 0 {
			return "logarithm of non-positive number"
		}
		return ""
	},
}

// logbRule: y = log_p(x) = ln(x) / ln(p), defined for x > 0 and a base
// p > 0 with p != 1.
//
// Derivatives:
//   - dy/dx = 1 / (x ln p)
//   - d²y/dx² = -1 / (x² ln p)
var logbRule = unaryRule{
	name:  "logb",
	value: func(x, p float64) float64 { return math.Log(x) / math.Log(p) },
	d1:    func(x, p float64) float64 { return 1 / (x * math.Log(p)) },
	d2:    func(x, p float64) float64 { return -1 / (x * x * math.Log(p)) },
	domain: func(x, p float64) string {
		if p <= 0 || p == 1 {
			return "logarithm base must be positive and not 1"
		}
		if x <= 0 {
			return "logarithm of non-positive number"
		}
		return ""
	},
}
