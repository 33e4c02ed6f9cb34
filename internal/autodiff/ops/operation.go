// Package ops defines the closed operator set of the expression graph.
//
// Each operator carries elementwise rules used by every evaluation strategy:
//   - Apply: the forward value
//   - Deriv: the first derivative, used by forward and reverse mode
//   - Deriv2: the second derivative, used by the Hessian
//   - domain checks for the value and for the derivatives
//
// Supported unary operators:
//   - Neg, Abs, Sign
//   - Sin, Cos, Tan, Arcsin, Arccos, Arctan
//   - Sinh, Cosh, Tanh, Logistic
//   - Exp, Log, Logb (log base p), Sqrt
//
// Supported binary operators: Add, Sub, Mul, Div, Pow.
package ops

import "fmt"

// UnaryOp tags a one-argument node.
type UnaryOp uint8

// Unary operators.
const (
	Neg UnaryOp = iota + 1
	Abs
	Sin
	Cos
	Tan
	Sinh
	Cosh
	Tanh
	Exp
	Log
	Logb
	Arcsin
	Arccos
	Arctan
	Sqrt
	Logistic
	Sign
)

// unaryRule holds the elementwise functions of one unary operator.
// p is the operator parameter (the base for Logb, unused otherwise).
type unaryRule struct {
	name   string
	value  func(x, p float64) float64
	d1     func(x, p float64) float64
	d2     func(x, p float64) float64
	domain func(x, p float64) string // value domain; "" when x is valid
	dDom   func(x, p float64) string // derivative domain; nil means same as domain
}

func (op UnaryOp) rule() *unaryRule {
	switch op {
	case Neg:
		return &negRule
	case Abs:
		return &absRule
	case Sin:
		return &sinRule
	case Cos:
		return &cosRule
	case Tan:
		return &tanRule
	case Sinh:
		return &sinhRule
	case Cosh:
		return &coshRule
	case Tanh:
		return &tanhRule
	case Exp:
		return &expRule
	case Log:
		return &logRule
	case Logb:
		return &logbRule
	case Arcsin:
		return &arcsinRule
	case Arccos:
		return &arccosRule
	case Arctan:
		return &arctanRule
	case Sqrt:
		return &sqrtRule
	case Logistic:
		return &logisticRule
	case Sign:
		return &signRule
	default:
		panic(fmt.Sprintf("ops: unknown unary operator %d", op))
	}
}

// Valid reports whether op is a known operator.
func (op UnaryOp) Valid() bool {
	return op >= Neg && op <= Sign
}

// String returns the operator name, e.g. "sin".
func (op UnaryOp) String() string {
	if !op.Valid() {
		return fmt.Sprintf("unary(%d)", op)
	}
	return op.rule().name
}

// Apply returns op(x).
func (op UnaryOp) Apply(x, p float64) float64 {
	return op.rule().value(x, p)
}

// Deriv returns op'(x).
func (op UnaryOp) Deriv(x, p float64) float64 {
	return op.rule().d1(x, p)
}

// Deriv2 returns op''(x).
func (op UnaryOp) Deriv2(x, p float64) float64 {
	return op.rule().d2(x, p)
}

// CheckValue returns a non-empty reason when op(x) is undefined.
func (op UnaryOp) CheckValue(x, p float64) string {
	r := op.rule()
	if r.domain == nil {
		return ""
	}
	return r.domain(x, p)
}

// CheckDeriv returns a non-empty reason when op is not differentiable at x.
func (op UnaryOp) CheckDeriv(x, p float64) string {
	r := op.rule()
	if r.dDom != nil {
		return r.dDom(x, p)
	}
	if r.domain == nil {
		return ""
	}
	return r.domain(x, p)
}

// BinaryOp tags a two-argument node.
type BinaryOp uint8

// Binary operators.
const (
	Add BinaryOp = iota + 1
	Sub
	Mul
	Div
	Pow
)

// Valid reports whether op is a known operator.
func (op BinaryOp) Valid() bool {
	return op >= Add && op <= Pow
}

// String returns the operator symbol.
func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Pow:
		return "**"
	default:
		return fmt.Sprintf("binary(%d)", op)
	}
}
