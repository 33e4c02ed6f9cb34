package autodiff

import (
	"fmt"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Eval returns the value of root under the context's bindings.
func (c *EvaluationContext) Eval(root Node) (numeric.Value, error) {
	if err := c.begin(root); err != nil {
		return numeric.Value{}, err
	}
	return c.eval(root.id)
}

// eval computes a node's value once per context, children first.
func (c *EvaluationContext) eval(id ID) (numeric.Value, error) {
	if v, ok := c.values[id]; ok {
		return v, nil
	}
	c.visits[id]++

	n := c.at(id)
	var (
		v   numeric.Value
		err error
	)
	switch n.kind {
	case kindVariable:
		var ok bool
		if v, ok = c.bindings[id]; !ok {
			return numeric.Value{}, fmt.Errorf("%w: %s", ErrUnboundVariable, n.name)
		}
	case kindConstant:
		v = n.value
	case kindUnary:
		v, err = c.evalUnary(id, n)
	case kindBinary:
		v, err = c.evalBinary(id, n)
	}
	if err != nil {
		return numeric.Value{}, err
	}

	c.values[id] = v
	return v, nil
}

func (c *EvaluationContext) evalUnary(id ID, n node) (numeric.Value, error) {
	x, err := c.eval(n.left)
	if err != nil {
		return numeric.Value{}, err
	}
	if err := c.checkUnary(id, n, x, n.unary.CheckValue); err != nil {
		return numeric.Value{}, err
	}
	op, p := n.unary, n.param
	return c.kernel.Map(x, func(e float64) float64 { return op.Apply(e, p) }), nil
}

func (c *EvaluationContext) evalBinary(id ID, n node) (numeric.Value, error) {
	a, err := c.eval(n.left)
	if err != nil {
		return numeric.Value{}, err
	}
	b, err := c.eval(n.right)
	if err != nil {
		return numeric.Value{}, err
	}
	if a, b, err = c.pair(a, b); err != nil {
		return numeric.Value{}, err
	}
	if err := c.checkBinary(id, n, a, b, n.binary.CheckValue); err != nil {
		return numeric.Value{}, err
	}
	switch n.binary {
	case ops.Add:
		return c.kernel.Add(a, b)
	case ops.Sub:
		return c.kernel.Sub(a, b)
	case ops.Mul:
		return c.kernel.Mul(a, b)
	case ops.Div:
		return c.kernel.Div(a, b)
	default:
		return c.kernel.Zip(a, b, n.binary.Apply)
	}
}
