package autodiff

import (
	"fmt"

	"github.com/born-ml/adgraph/internal/numeric"
)

// Partials is the Jacobian row of an expression: its partial derivative with
// respect to every variable it depends on. Partials are elementwise, shaped
// like the expression's value.
type Partials struct {
	g      *Graph
	kernel *numeric.Kernel
	shape  numeric.Shape
	vars   []ID
	m      partialMap
}

// At returns ∂root/∂v. Variables the root does not depend on get zeros.
func (p *Partials) At(v Node) numeric.Value {
	d, ok := p.m[v.id]
	if !ok || v.g != p.g {
		return numeric.Zeros(p.shape)
	}
	out, err := p.kernel.BroadcastTo(d, p.shape)
	if err != nil {
		// Partials broadcast into the root shape by construction.
		panic(err)
	}
	return out
}

// Vars returns the variables the root depends on.
func (p *Partials) Vars() []Node {
	out := make([]Node, len(p.vars))
	for i, id := range p.vars {
		out[i] = Node{g: p.g, id: id}
	}
	return out
}

// Len returns the number of variables the root depends on.
func (p *Partials) Len() int {
	return len(p.vars)
}

// Only returns the derivative of a univariate expression.
func (p *Partials) Only() (numeric.Value, error) {
	if len(p.vars) != 1 {
		return numeric.Value{}, fmt.Errorf("%w: depends on %d variables", ErrNotUnivariate, len(p.vars))
	}
	return p.At(Node{g: p.g, id: p.vars[0]}), nil
}

// Forward evaluates root and its first partials in one memoized traversal.
func (c *EvaluationContext) Forward(root Node) (numeric.Value, *Partials, error) {
	if err := c.begin(root); err != nil {
		return numeric.Value{}, nil, err
	}
	v, err := c.eval(root.id)
	if err != nil {
		return numeric.Value{}, nil, err
	}
	m, err := c.forward(root.id)
	if err != nil {
		return numeric.Value{}, nil, err
	}
	return v, c.newPartials(root, v, m), nil
}

func (c *EvaluationContext) newPartials(root Node, v numeric.Value, m partialMap) *Partials {
	return &Partials{
		g:      c.g,
		kernel: c.kernel,
		shape:  v.Shape(),
		vars:   c.g.nodes[root.id].deps,
		m:      m,
	}
}

// forward returns a node's first partials, computing them once per context.
func (c *EvaluationContext) forward(id ID) (partialMap, error) {
	if m, ok := c.partials[id]; ok {
		return m, nil
	}
	v, err := c.eval(id)
	if err != nil {
		return nil, err
	}

	n := c.at(id)
	var m partialMap
	switch {
	case n.kind == kindVariable:
		m = partialMap{id: numeric.Ones(v.Shape())}
	case len(n.deps) == 0:
		m = partialMap{}
	case n.kind == kindUnary:
		m, err = c.forwardUnary(id, n)
	case n.kind == kindBinary:
		m, err = c.forwardBinary(id, n)
	}
	if err != nil {
		return nil, err
	}

	c.partials[id] = m
	return m, nil
}

func (c *EvaluationContext) forwardUnary(id ID, n node) (partialMap, error) {
	d, err := c.unaryDeriv(id, n)
	if err != nil {
		return nil, err
	}
	gp, err := c.forward(n.left)
	if err != nil {
		return nil, err
	}

	m := make(partialMap, len(gp))
	for v, gv := range gp {
		if m[v], err = c.mul(d, gv); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// unaryDeriv returns the elementwise derivative op'(x) of a unary node.
func (c *EvaluationContext) unaryDeriv(id ID, n node) (numeric.Value, error) {
	x, err := c.eval(n.left)
	if err != nil {
		return numeric.Value{}, err
	}
	if err := c.checkUnary(id, n, x, n.unary.CheckDeriv); err != nil {
		return numeric.Value{}, err
	}
	op, p := n.unary, n.param
	return c.kernel.Map(x, func(e float64) float64 { return op.Deriv(e, p) }), nil
}

// binaryPartials returns the elementwise first partials of a binary node,
// leaving a side invalid (zero) when that operand has no variables.
func (c *EvaluationContext) binaryPartials(id ID, n node) (da, db numeric.Value, err error) {
	a, err := c.eval(n.left)
	if err != nil {
		return da, db, err
	}
	b, err := c.eval(n.right)
	if err != nil {
		return da, db, err
	}
	if a, b, err = c.pair(a, b); err != nil {
		return da, db, err
	}

	op := n.binary
	wrtRight := len(c.at(n.right).deps) > 0
	err = c.checkBinary(id, n, a, b, func(x, y float64) string { return op.CheckDeriv(x, y, wrtRight) })
	if err != nil {
		return da, db, err
	}

	if len(c.at(n.left).deps) > 0 {
		da, err = c.kernel.Zip(a, b, func(x, y float64) float64 {
			d, _ := op.Partials(x, y, wrtRight)
			return d
		})
		if err != nil {
			return da, db, err
		}
	}
	if wrtRight {
		db, err = c.kernel.Zip(a, b, func(x, y float64) float64 {
			_, d := op.Partials(x, y, wrtRight)
			return d
		})
	}
	return da, db, err
}

func (c *EvaluationContext) forwardBinary(id ID, n node) (partialMap, error) {
	da, db, err := c.binaryPartials(id, n)
	if err != nil {
		return nil, err
	}
	ap, err := c.forward(n.left)
	if err != nil {
		return nil, err
	}
	bp, err := c.forward(n.right)
	if err != nil {
		return nil, err
	}

	m := make(partialMap, len(n.deps))
	for _, v := range n.deps {
		acc, err := c.mul(da, ap[v])
		if err != nil {
			return nil, err
		}
		if acc, err = c.mulAdd(acc, db, bp[v]); err != nil {
			return nil, err
		}
		if acc.IsValid() {
			m[v] = acc
		}
	}
	return m, nil
}

// JacobianForward stacks forward-mode partials: row i holds the partials of
// roots[i] with respect to vars, with zeros where a root does not reach a
// variable. All roots share one context, so common sub-expressions are
// evaluated once.
func JacobianForward(roots, vars []Node, b Bindings, opts ...Option) ([][]numeric.Value, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	c, err := NewContext(roots[0].g, b, opts...)
	if err != nil {
		return nil, err
	}

	rows := make([][]numeric.Value, len(roots))
	for i, root := range roots {
		_, p, err := c.Forward(root)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		rows[i] = make([]numeric.Value, len(vars))
		for j, x := range vars {
			rows[i][j] = p.At(x)
		}
	}
	return rows, nil
}
