package ops

import "math"

// tanhRule: y = tanh(x).
//
// Derivatives, written in terms of t = tanh(x):
//   - dy/dx = 1 - t²
//   - d²y/dx² = -2t(1 - t²)
var tanhRule = unaryRule{
	name:  "tanh",
	value: func(x, _ float64) float64 { return math.Tanh(x) },
	d1: func(x, _ float64) float64 {
		t := math.Tanh(x)
		return 1 - t*t
	},
	d2: func(x, _ float64) float64 {
		t := math.Tanh(x)
		return -2 * t * (1 - t*t)
	},
}

// sinhRule: y = sinh(x); dy/dx = cosh(x), d²y/dx² = sinh(x).
var sinhRule = unaryRule{
	name:  "sinh",
	value: func(x, _ float64) float64 { return math.Sinh(x) },
	d1:    func(x, _ float64) float64 { return math.Cosh(x) },
	d2:    func(x, _ float64) float64 { return math.Sinh(x) },
}

// coshRule: y = cosh(x); dy/dx = sinh(x), d²y/dx² = cosh(x).
var coshRule = unaryRule{
	name:  "cosh",
	value: func(x, _ float64) float64 { return math.Cosh(x) },
	d1:    func(x, _ float64) float64 { return math.Sinh(x) },
	d2:    func(x, _ float64) float64 { return math.Cosh(x) },
}
