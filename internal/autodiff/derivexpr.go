package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Markers returned by differ in place of a node.
const (
	zeroID ID = -1 // the derivative is identically zero
	oneID  ID = -2 // the derivative is the constant 1
)

// DerivativeExpr builds ∂ⁿroot/∂vⁿ as a new expression in root's graph,
// holding every other variable constant. Order 0 returns root itself and a
// derivative that vanishes identically is the scalar constant 0.
//
// The result is an ordinary node: it can be evaluated with any strategy,
// printed, or differentiated again. Its domain is checked on its own, so it
// may evaluate at points where root itself does not.
func DerivativeExpr(root, v Node, n int) (Node, error) {
	switch {
	case n < 0:
		return Node{}, fmt.Errorf("%w: %d", ErrInvalidOrder, n)
	case !root.IsValid() || !v.IsValid() || root.g != v.g:
		return Node{}, fmt.Errorf("%w: root and variable must share a graph", ErrTypeMismatch)
	case !v.IsVariable():
		return Node{}, fmt.Errorf("%w: %s is not a variable", ErrTypeMismatch, v)
	}

	cur := root.id
	for range n {
		if cur < 0 {
			// a constant 0 or 1 has a zero derivative
			cur = zeroID
			break
		}
		d := &differ{g: root.g, v: v.id, memo: make(map[ID]ID), one: zeroID}
		cur = d.diff(cur)
	}

	switch cur {
	case zeroID:
		return root.g.Scalar(0), nil
	case oneID:
		return root.g.Scalar(1), nil
	}
	return Node{g: root.g, id: cur}, nil
}

// differ builds the first derivative of one expression with respect to v.
// Results are memoized per node, so shared sub-expressions are
// differentiated once.
type differ struct {
	g    *Graph
	v    ID
	memo map[ID]ID
	one  ID // the materialized constant 1, zeroID until needed
}

func (d *differ) diff(id ID) ID {
	if r, ok := d.memo[id]; ok {
		return r
	}
	n := d.g.nodes[id]
	var r ID
	switch {
	case !containsID(n.deps, d.v):
		r = zeroID
	case n.kind == kindVariable:
		r = oneID
	case n.kind == kindUnary:
		r = d.unaryRule(id, n)
	default:
		r = d.binaryRule(id, n)
	}
	d.memo[id] = r
	return r
}

func (d *differ) unaryRule(f ID, n node) ID {
	dg := d.diff(n.left)
	if dg == zeroID {
		return zeroID
	}
	g := n.left
	oneMinusSq := func(x ID) ID {
		return d.binary(ops.Sub, d.scalar(1), d.binary(ops.Mul, x, x))
	}

	var slope ID
	switch n.unary {
	case ops.Neg:
		return d.neg(dg)
	case ops.Sign:
		return zeroID
	case ops.Abs:
		slope = d.unary(ops.Sign, g)
	case ops.Sin:
		slope = d.unary(ops.Cos, g)
	case ops.Cos:
		slope = d.neg(d.unary(ops.Sin, g))
	case ops.Tan:
		slope = d.binary(ops.Add, d.scalar(1), d.binary(ops.Mul, f, f))
	case ops.Sinh:
		slope = d.unary(ops.Cosh, g)
	case ops.Cosh:
		slope = d.unary(ops.Sinh, g)
	case ops.Tanh:
		slope = oneMinusSq(f)
	case ops.Exp:
		slope = f
	case ops.Logistic:
		slope = d.binary(ops.Mul, f, d.binary(ops.Sub, d.scalar(1), f))
	case ops.Arcsin:
		slope = d.binary(ops.Pow, oneMinusSq(g), d.scalar(-0.5))
	case ops.Arccos:
		slope = d.neg(d.binary(ops.Pow, oneMinusSq(g), d.scalar(-0.5)))
	case ops.Log:
		return d.div(dg, g)
	case ops.Logb:
		return d.div(dg, d.binary(ops.Mul, g, d.scalar(math.Log(n.param))))
	case ops.Sqrt:
		return d.div(dg, d.binary(ops.Mul, d.scalar(2), f))
	case ops.Arctan:
		return d.div(dg, d.binary(ops.Add, d.scalar(1), d.binary(ops.Mul, g, g)))
	default:
		panic("autodiff: no derivative rule for " + n.unary.String())
	}
	return d.mul(slope, dg)
}

func (d *differ) binaryRule(f ID, n node) ID {
	a, b := n.left, n.right
	da, db := d.diff(a), d.diff(b)
	switch n.binary {
	case ops.Add:
		return d.add(da, db)
	case ops.Sub:
		return d.sub(da, db)
	case ops.Mul:
		return d.add(d.mul(da, b), d.mul(a, db))
	case ops.Div:
		if db == zeroID {
			return d.div(da, b)
		}
		return d.div(d.sub(d.mul(da, b), d.mul(a, db)), d.binary(ops.Mul, b, b))
	}

	if db == zeroID {
		return d.mul(d.powerSlope(a, b), da)
	}
	// d(a^b) = a^b · (db · log a + b · da / a)
	t := d.mul(db, d.unary(ops.Log, a))
	t = d.add(t, d.div(d.mul(b, da), a))
	return d.mul(f, t)
}

// powerSlope returns b · a^(b-1) for an exponent b free of v. Constant
// exponents are folded so whole powers stay exact at a zero base.
func (d *differ) powerSlope(a, b ID) ID {
	rb := d.g.nodes[b]
	if rb.kind != kindConstant {
		return d.binary(ops.Mul, b, d.binary(ops.Pow, a, d.binary(ops.Sub, b, d.scalar(1))))
	}
	if rb.value.AllZero() {
		return zeroID
	}
	lower := numeric.Default().AddScalar(rb.value, -1)
	if lower.AllZero() {
		return b
	}
	return d.binary(ops.Mul, b, d.binary(ops.Pow, a, d.g.Constant(lower).id))
}

func (d *differ) lit(id ID) ID {
	if id != oneID {
		return id
	}
	if d.one == zeroID {
		d.one = d.scalar(1)
	}
	return d.one
}

func (d *differ) scalar(f float64) ID {
	return d.g.Scalar(f).id
}

func (d *differ) unary(op ops.UnaryOp, x ID) ID {
	return d.g.unary(op, 0, d.lit(x)).id
}

func (d *differ) binary(op ops.BinaryOp, a, b ID) ID {
	return d.g.binary(op, d.lit(a), d.lit(b)).id
}

func (d *differ) neg(a ID) ID {
	if a == zeroID {
		return zeroID
	}
	return d.unary(ops.Neg, a)
}

func (d *differ) add(a, b ID) ID {
	switch {
	case a == zeroID:
		return b
	case b == zeroID:
		return a
	}
	return d.binary(ops.Add, a, b)
}

func (d *differ) sub(a, b ID) ID {
	switch {
	case b == zeroID:
		return a
	case a == zeroID:
		return d.neg(b)
	}
	return d.binary(ops.Sub, a, b)
}

func (d *differ) mul(a, b ID) ID {
	switch {
	case a == zeroID || b == zeroID:
		return zeroID
	case a == oneID:
		return b
	case b == oneID:
		return a
	}
	return d.binary(ops.Mul, a, b)
}

func (d *differ) div(a, b ID) ID {
	switch {
	case a == zeroID:
		return zeroID
	case b == oneID:
		return a
	}
	return d.binary(ops.Div, a, b)
}
