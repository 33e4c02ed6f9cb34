package ops

import "math"

// sinRule: y = sin(x).
//
// Derivatives:
//   - dy/dx = cos(x)
//   - d²y/dx² = -sin(x)
var sinRule = unaryRule{
	name:  "sin",
	value: func(x, _ float64) float64 { return math.Sin(x) },
	d1:    func(x, _ float64) float64 { return math.Cos(x) },
	d2:    func(x, _ float64) float64 { return -math.Sin(x) },
}

// arcsinRule: y = arcsin(x), defined on [-1, 1].
//
// Derivatives (open interval only, the slope is unbounded at ±1):
//   - dy/dx = 1 / sqrt(1 - x²)
//   - d²y/dx² = x / (1 - x²)^(3/2)
var arcsinRule = unaryRule{
	name:  "arcsin",
	value: func(x, _ float64) float64 { return math.Asin(x) },
	d1:    func(x, _ float64) float64 { return 1 / math.Sqrt(1-x*x) },
	d2:    func(x, _ float64) float64 { return x / math.Pow(1-x*x, 1.5) },
	domain: func(x, _ float64) string {
		if x < -1 || x > 1 {
			return "argument outside [-1, 1]"
		}
		return ""
	},
	dDom: openUnitInterval,
}

func openUnitInterval(x, _ float64) string {
	if x <= -1 || x >= 1 {
		return "derivative undefined outside (-1, 1)"
	}
	return ""
}
