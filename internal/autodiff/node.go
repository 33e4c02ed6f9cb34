package autodiff

import (
	"fmt"
	"strings"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
)

// Node is a handle to an expression node. The zero Node is invalid.
//
// Builder methods never modify the receiver; they append a new node to the
// graph and return its handle. Mixing nodes of different graphs is a
// programming error and panics; use Graph.Apply for a checked variant.
type Node struct {
	g  *Graph
	id ID
}

// ID returns the node's arena index.
func (n Node) ID() ID {
	return n.id
}

// Graph returns the graph that owns n.
func (n Node) Graph() *Graph {
	return n.g
}

// IsValid reports whether n refers to a node.
func (n Node) IsValid() bool {
	return n.g != nil && int(n.id) < len(n.g.nodes)
}

// IsVariable reports whether n is an input variable.
func (n Node) IsVariable() bool {
	return n.rec().kind == kindVariable
}

// IsConstant reports whether n is a constant leaf.
func (n Node) IsConstant() bool {
	return n.rec().kind == kindConstant
}

// Name returns the variable name, or "" for other nodes.
func (n Node) Name() string {
	return n.rec().name
}

// DependsOn returns the variables reachable from n, in construction order.
func (n Node) DependsOn() []Node {
	deps := n.rec().deps
	out := make([]Node, len(deps))
	for i, id := range deps {
		out[i] = Node{g: n.g, id: id}
	}
	return out
}

// Uses reports whether v is one of the variables n depends on.
func (n Node) Uses(v Node) bool {
	return n.g == v.g && containsID(n.rec().deps, v.id)
}

func (n Node) rec() node {
	return n.g.nodes[n.id]
}

func (n Node) mustShare(other Node) {
	if n.g != other.g {
		panic(fmt.Errorf("%w: nodes belong to different graphs", ErrTypeMismatch))
	}
}

func (n Node) binary(op ops.BinaryOp, other Node) Node {
	n.mustShare(other)
	return n.g.binary(op, n.id, other.id)
}

// Add returns n + other.
func (n Node) Add(other Node) Node { return n.binary(ops.Add, other) }

// Sub returns n - other.
func (n Node) Sub(other Node) Node { return n.binary(ops.Sub, other) }

// Mul returns n * other.
func (n Node) Mul(other Node) Node { return n.binary(ops.Mul, other) }

// Div returns n / other.
func (n Node) Div(other Node) Node { return n.binary(ops.Div, other) }

// Pow returns n ** other.
func (n Node) Pow(other Node) Node { return n.binary(ops.Pow, other) }

// AddScalar returns n + c.
func (n Node) AddScalar(c float64) Node { return n.Add(n.g.Scalar(c)) }

// SubScalar returns n - c.
func (n Node) SubScalar(c float64) Node { return n.Sub(n.g.Scalar(c)) }

// MulScalar returns n * c.
func (n Node) MulScalar(c float64) Node { return n.Mul(n.g.Scalar(c)) }

// DivScalar returns n / c.
func (n Node) DivScalar(c float64) Node { return n.Div(n.g.Scalar(c)) }

// PowScalar returns n ** c.
func (n Node) PowScalar(c float64) Node { return n.Pow(n.g.Scalar(c)) }

// Neg returns -n.
func (n Node) Neg() Node { return n.g.unary(ops.Neg, 0, n.id) }

// Abs returns |n|.
func (n Node) Abs() Node { return n.g.unary(ops.Abs, 0, n.id) }

// Neg returns -n.
func Neg(n Node) Node { return n.g.unary(ops.Neg, 0, n.id) }

// Abs returns |n|. Its slope at zero is +1.
func Abs(n Node) Node { return n.g.unary(ops.Abs, 0, n.id) }

// Sign returns the slope of |n|: -1 for negative n, +1 otherwise.
func Sign(n Node) Node { return n.g.unary(ops.Sign, 0, n.id) }

// Sin returns sin(n).
func Sin(n Node) Node { return n.g.unary(ops.Sin, 0, n.id) }

// Cos returns cos(n).
func Cos(n Node) Node { return n.g.unary(ops.Cos, 0, n.id) }

// Tan returns tan(n).
func Tan(n Node) Node { return n.g.unary(ops.Tan, 0, n.id) }

// Sinh returns the hyperbolic sine of n.
func Sinh(n Node) Node { return n.g.unary(ops.Sinh, 0, n.id) }

// Cosh returns the hyperbolic cosine of n.
func Cosh(n Node) Node { return n.g.unary(ops.Cosh, 0, n.id) }

// Tanh returns the hyperbolic tangent of n.
func Tanh(n Node) Node { return n.g.unary(ops.Tanh, 0, n.id) }

// Exp returns e**n.
func Exp(n Node) Node { return n.g.unary(ops.Exp, 0, n.id) }

// Log returns the natural logarithm of n.
func Log(n Node) Node { return n.g.unary(ops.Log, 0, n.id) }

// Arcsin returns the inverse sine of n, defined on [-1, 1].
func Arcsin(n Node) Node { return n.g.unary(ops.Arcsin, 0, n.id) }

// Arccos returns the inverse cosine of n, defined on [-1, 1].
func Arccos(n Node) Node { return n.g.unary(ops.Arccos, 0, n.id) }

// Arctan returns the inverse tangent of n.
func Arctan(n Node) Node { return n.g.unary(ops.Arctan, 0, n.id) }

// Sqrt returns the square root of n.
func Sqrt(n Node) Node { return n.g.unary(ops.Sqrt, 0, n.id) }

// Logistic returns 1 / (1 + e**-n).
func Logistic(n Node) Node { return n.g.unary(ops.Logistic, 0, n.id) }

// Logb returns the logarithm of n in the given base.
func Logb(base float64, n Node) Node { return n.g.unary(ops.Logb, base, n.id) }

// String renders the expression in infix form, e.g. "(sin(x) * 2)".
func (n Node) String() string {
	if !n.IsValid() {
		return "<invalid node>"
	}
	var sb strings.Builder
	n.g.format(&sb, n.id)
	return sb.String()
}

func (g *Graph) format(sb *strings.Builder, id ID) {
	n := g.nodes[id]
	switch n.kind {
	case kindVariable:
		sb.WriteString(n.name)
	case kindConstant:
		sb.WriteString(n.value.String())
	case kindUnary:
		switch n.unary {
		case ops.Neg:
			sb.WriteString("-")
			g.format(sb, n.left)
			return
		case ops.Abs:
			sb.WriteString("|")
			g.format(sb, n.left)
			sb.WriteString("|")
			return
		}
		sb.WriteString(n.unary.String())
		sb.WriteString("(")
		if n.unary == ops.Logb {
			fmt.Fprintf(sb, "%g, ", n.param)
		}
		g.format(sb, n.left)
		sb.WriteString(")")
	case kindBinary:
		sb.WriteString("(")
		g.format(sb, n.left)
		sb.WriteString(" " + n.binary.String() + " ")
		g.format(sb, n.right)
		sb.WriteString(")")
	}
}
