package ops

import "math"

// negRule: y = -x.
var negRule = unaryRule{
	name:  "neg",
	value: func(x, _ float64) float64 { return -x },
	d1:    func(_, _ float64) float64 { return -1 },
	d2:    func(_, _ float64) float64 { return 0 },
}

// absRule: y = |x|.
//
// The derivative at exactly zero is +1, the right-hand derivative. This holds
// for forward, reverse, higher-order and Hessian evaluation alike; callers that
// need a subgradient convention must handle x == 0 themselves.
var absRule = unaryRule{
	name:  "abs",
	value: func(x, _ float64) float64 { return math.Abs(x) },
	d1:    func(x, _ float64) float64 { return AbsSign(x) },
	d2:    func(_, _ float64) float64 { return 0 },
}

// AbsSign returns the slope of |x|: -1 for negative x and +1 otherwise.
func AbsSign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// signRule: y = sign(x) with sign(0) = +1, the slope of |x|. It is flat on
// both sides of zero, so every derivative is zero.
var signRule = unaryRule{
	name:  "sign",
	value: func(x, _ float64) float64 { return AbsSign(x) },
	d1:    func(_, _ float64) float64 { return 0 },
	d2:    func(_, _ float64) float64 { return 0 },
}
