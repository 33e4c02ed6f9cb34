package ops

import "math"

// cosRule: y = cos(x).
//
// Derivatives:
//   - dy/dx = -sin(x)
//   - d²y/dx² = -cos(x)
var cosRule = unaryRule{
	name:  "cos",
	value: func(x, _ float64) float64 { return math.Cos(x) },
	d1:    func(x, _ float64) float64 { return -math.Sin(x) },
	d2:    func(x, _ float64) float64 { return -math.Cos(x) },
}

// arccosRule: y = arccos(x), defined on [-1, 1].
// Its derivatives are the negated arcsin derivatives.
var arccosRule = unaryRule{
	name:   "arccos",
	value:  func(x, _ float64) float64 { return math.Acos(x) },
	d1:     func(x, _ float64) float64 { return -1 / math.Sqrt(1-x*x) },
	d2:     func(x, _ float64) float64 { return -x / math.Pow(1-x*x, 1.5) },
	domain: arcsinRule.domain,
	dDom:   openUnitInterval,
}
