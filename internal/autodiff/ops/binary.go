package ops

import "math"

// Apply returns a op b.
func (op BinaryOp) Apply(a, b float64) float64 {
	switch op {
	case Add:
		return a + b
	case Sub:
		return a - b
	case Mul:
		return a * b
	case Div:
		return a / b
	case Pow:
		return math.Pow(a, b)
	default:
		panic("ops: unknown binary operator " + op.String())
	}
}

// CheckValue returns a non-empty reason when a op b is undefined.
func (op BinaryOp) CheckValue(a, b float64) string {
	switch op {
	case Div:
		if b == 0 {
			return "division by zero"
		}
	case Pow:
		return powDomain(a, b)
	}
	return ""
}

// CheckDeriv returns a non-empty reason when the first partials of a op b are
// undefined. wrtRight reports whether the right operand depends on a variable;
// when it does not, the partial with respect to it is never needed.
func (op BinaryOp) CheckDeriv(a, b float64, wrtRight bool) string {
	if r := op.CheckValue(a, b); r != "" {
		return r
	}
	if op != Pow {
		return ""
	}
	if wrtRight && a <= 0 {
		return "variable exponent requires a positive base"
	}
	if a == 0 && b > 0 && b < 1 {
		return "zero base with exponent below one"
	}
	return ""
}

// CheckDeriv2 is CheckDeriv for the second partials.
func (op BinaryOp) CheckDeriv2(a, b float64, wrtRight bool) string {
	if r := op.CheckDeriv(a, b, wrtRight); r != "" {
		return r
	}
	if op == Pow && a == 0 && b > 1 && b < 2 {
		return "zero base with exponent below two"
	}
	return ""
}

// Partials returns ∂(a op b)/∂a and ∂(a op b)/∂b.
//
//   - add: (1, 1)
//   - sub: (1, -1)
//   - mul: (b, a)
//   - div: (1/b, -a/b²)
//   - pow: (b a^(b-1), a^b ln a)
//
// For pow the right partial is zero unless wrtRight is set.
func (op BinaryOp) Partials(a, b float64, wrtRight bool) (da, db float64) {
	switch op {
	case Add:
		return 1, 1
	case Sub:
		return 1, -1
	case Mul:
		return b, a
	case Div:
		return 1 / b, -a / (b * b)
	case Pow:
		da = powDA(a, b)
		if wrtRight {
			db = math.Pow(a, b) * math.Log(a)
		}
		return da, db
	default:
		panic("ops: unknown binary operator " + op.String())
	}
}

// Partials2 returns the second partials ∂²/∂a², ∂²/∂a∂b and ∂²/∂b².
//
//   - add, sub: all zero
//   - mul: (0, 1, 0)
//   - div: (0, -1/b², 2a/b³)
//   - pow: (b(b-1)a^(b-2), a^(b-1)(1 + b ln a), a^b (ln a)²)
//
// For pow the mixed and right terms are zero unless wrtRight is set.
func (op BinaryOp) Partials2(a, b float64, wrtRight bool) (daa, dab, dbb float64) {
	switch op {
	case Add, Sub:
		return 0, 0, 0
	case Mul:
		return 0, 1, 0
	case Div:
		return 0, -1 / (b * b), 2 * a / (b * b * b)
	case Pow:
		daa = powDAA(a, b)
		if wrtRight {
			la := math.Log(a)
			dab = math.Pow(a, b-1) * (1 + b*la)
			dbb = math.Pow(a, b) * la * la
		}
		return daa, dab, dbb
	default:
		panic("ops: unknown binary operator " + op.String())
	}
}

// IsInteger reports whether x is a whole number.
func IsInteger(x float64) bool {
	return x == math.Trunc(x) && !math.IsInf(x, 0)
}

func powDomain(a, b float64) string {
	switch {
	case a < 0 && !IsInteger(b):
		return "negative base with non-integer exponent"
	case a == 0 && b < 0:
		return "zero base with negative exponent"
	}
	return ""
}

// powDA is b a^(b-1) with the b == 0 case pinned to 0, so a zero base never
// produces 0 * Inf.
func powDA(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return b * math.Pow(a, b-1)
}

func powDAA(a, b float64) float64 {
	if b == 0 || b == 1 {
		return 0
	}
	return b * (b - 1) * math.Pow(a, b-2)
}
