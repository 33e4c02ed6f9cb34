package ops

import "math"

// tanRule: y = tan(x).
//
// Derivatives, written in terms of t = tan(x):
//   - dy/dx = 1 + t²
//   - d²y/dx² = 2t(1 + t²)
var tanRule = unaryRule{
	name:  "tan",
	value: func(x, _ float64) float64 { return math.Tan(x) },
	d1: func(x, _ float64) float64 {
		t := math.Tan(x)
		return 1 + t*t
	},
	d2: func(x, _ float64) float64 {
		t := math.Tan(x)
		return 2 * t * (1 + t*t)
	},
}

// arctanRule: y = arctan(x).
//
// Derivatives:
//   - dy/dx = 1 / (1 + x²)
//   - d²y/dx² = -2x / (1 + x²)²
var arctanRule = unaryRule{
	name:  "arctan",
	value: func(x, _ float64) float64 { return math.Atan(x) },
	d1:    func(x, _ float64) float64 { return 1 / (1 + x*x) },
	d2: func(x, _ float64) float64 {
		d := 1 + x*x
		return -2 * x / (d * d)
	},
}
