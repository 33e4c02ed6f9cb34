package autodiff

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/adgraph/internal/numeric"
)

// HessianMatrix holds the value, the first partials and the second partials
// of an expression. Entries are elementwise, shaped like the value, and
// symmetric: At(x, y) and At(y, x) read the same entry.
type HessianMatrix struct {
	value    numeric.Value
	gradient *Partials
	m        secondMap
}

// Value returns the expression's value.
func (h *HessianMatrix) Value() numeric.Value {
	return h.value
}

// Gradient returns the expression's first partials.
func (h *HessianMatrix) Gradient() *Partials {
	return h.gradient
}

// Vars returns the variables the expression depends on.
func (h *HessianMatrix) Vars() []Node {
	return h.gradient.Vars()
}

// At returns ∂²f/∂x∂y. Pairs the expression does not depend on get zeros.
func (h *HessianMatrix) At(x, y Node) numeric.Value {
	shape := h.value.Shape()
	d, ok := h.m[newPairKey(x.id, y.id)]
	if !ok || x.g != h.gradient.g || y.g != h.gradient.g {
		return numeric.Zeros(shape)
	}
	out, err := h.gradient.kernel.BroadcastTo(d, shape)
	if err != nil {
		panic(err)
	}
	return out
}

// Matrix returns the Hessian of a scalar expression as a gonum symmetric
// matrix, ordered like vars. With no vars it uses Vars().
func (h *HessianMatrix) Matrix(vars ...Node) (*mat.SymDense, error) {
	if len(vars) == 0 {
		vars = h.Vars()
	}
	if h.value.Len() != 1 {
		return nil, fmt.Errorf("%w: hessian of a value with shape %v", ErrNotScalar, h.value.Shape())
	}
	m := mat.NewSymDense(len(vars), nil)
	for i := range vars {
		for j := i; j < len(vars); j++ {
			f, ok := h.At(vars[i], vars[j]).Float()
			if !ok {
				return nil, fmt.Errorf("%w: entry (%d, %d)", ErrNotScalar, i, j)
			}
			m.SetSym(i, j, f)
		}
	}
	return m, nil
}

// Hessian computes the second partials of root with the second-order chain
// rule, reusing the value and first-partial caches of the context.
//
// For a unary node f = op(g):
//
//	f_xy = op''(g) · g_x · g_y + op'(g) · g_xy
//
// For a binary node f = op(a, b):
//
//	f_xy = f_aa a_x a_y + f_ab (a_x b_y + a_y b_x) + f_bb b_x b_y + f_a a_xy + f_b b_xy
//
// Only pairs with x <= y are computed and stored, so the result is exactly
// symmetric.
func (c *EvaluationContext) Hessian(root Node) (*HessianMatrix, error) {
	v, p, err := c.Forward(root)
	if err != nil {
		return nil, err
	}
	m, err := c.hessian(root.id)
	if err != nil {
		return nil, err
	}
	return &HessianMatrix{value: v, gradient: p, m: m}, nil
}

func (c *EvaluationContext) hessian(id ID) (secondMap, error) {
	if m, ok := c.second[id]; ok {
		return m, nil
	}
	if _, err := c.forward(id); err != nil {
		return nil, err
	}

	n := c.at(id)
	var (
		m   secondMap
		err error
	)
	switch {
	case n.kind == kindVariable, len(n.deps) == 0:
		m = secondMap{}
	case n.kind == kindUnary:
		m, err = c.hessianUnary(id, n)
	case n.kind == kindBinary:
		m, err = c.hessianBinary(id, n)
	}
	if err != nil {
		return nil, err
	}

	c.second[id] = m
	return m, nil
}

func (c *EvaluationContext) hessianUnary(id ID, n node) (secondMap, error) {
	d1, err := c.unaryDeriv(id, n)
	if err != nil {
		return nil, err
	}
	x, err := c.eval(n.left)
	if err != nil {
		return nil, err
	}
	op, p := n.unary, n.param
	d2 := c.kernel.Map(x, func(e float64) float64 { return op.Deriv2(e, p) })

	gp, err := c.forward(n.left)
	if err != nil {
		return nil, err
	}
	gh, err := c.hessian(n.left)
	if err != nil {
		return nil, err
	}

	m := make(secondMap)
	for i, vx := range n.deps {
		for _, vy := range n.deps[i:] {
			key := pairKey{a: vx, b: vy}
			t, err := c.mul(gp[vx], gp[vy])
			if err != nil {
				return nil, err
			}
			if t, err = c.mul(d2, t); err != nil {
				return nil, err
			}
			if t, err = c.mulAdd(t, d1, gh[key]); err != nil {
				return nil, err
			}
			if t.IsValid() {
				m[key] = t
			}
		}
	}
	return m, nil
}

func (c *EvaluationContext) hessianBinary(id ID, n node) (secondMap, error) {
	da, db, err := c.binaryPartials(id, n)
	if err != nil {
		return nil, err
	}
	daa, dab, dbb, err := c.binarySecond(id, n)
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
	ah, err := c.hessian(n.left)
	if err != nil {
		return nil, err
	}
	bh, err := c.hessian(n.right)
	if err != nil {
		return nil, err
	}

	m := make(secondMap)
	for i, vx := range n.deps {
		for _, vy := range n.deps[i:] {
			key := pairKey{a: vx, b: vy}
			ax, ay, bx, by := ap[vx], ap[vy], bp[vx], bp[vy]

			var acc numeric.Value
			terms := [][3]numeric.Value{
				{daa, ax, ay},
				{dab, ax, by},
				{dab, ay, bx},
				{dbb, bx, by},
			}
			for _, t := range terms {
				prod, err := c.mul(t[1], t[2])
				if err != nil {
					return nil, err
				}
				if acc, err = c.mulAdd(acc, t[0], prod); err != nil {
					return nil, err
				}
			}
			if acc, err = c.mulAdd(acc, da, ah[key]); err != nil {
				return nil, err
			}
			if acc, err = c.mulAdd(acc, db, bh[key]); err != nil {
				return nil, err
			}
			if acc.IsValid() {
				m[key] = acc
			}
		}
	}
	return m, nil
}

// binarySecond returns the elementwise second partials of a binary node.
// Terms that involve an operand without variables are left invalid (zero).
func (c *EvaluationContext) binarySecond(id ID, n node) (daa, dab, dbb numeric.Value, err error) {
	a, err := c.eval(n.left)
	if err != nil {
		return daa, dab, dbb, err
	}
	b, err := c.eval(n.right)
	if err != nil {
		return daa, dab, dbb, err
	}
	if a, b, err = c.pair(a, b); err != nil {
		return daa, dab, dbb, err
	}

	op := n.binary
	wrtLeft := len(c.at(n.left).deps) > 0
	wrtRight := len(c.at(n.right).deps) > 0
	err = c.checkBinary(id, n, a, b, func(x, y float64) string { return op.CheckDeriv2(x, y, wrtRight) })
	if err != nil {
		return daa, dab, dbb, err
	}

	second := func(pick func(aa, ab, bb float64) float64) (numeric.Value, error) {
		return c.kernel.Zip(a, b, func(x, y float64) float64 {
			return pick(op.Partials2(x, y, wrtRight))
		})
	}
	if wrtLeft {
		if daa, err = second(func(aa, _, _ float64) float64 { return aa }); err != nil {
			return daa, dab, dbb, err
		}
	}
	if wrtLeft && wrtRight {
		if dab, err = second(func(_, ab, _ float64) float64 { return ab }); err != nil {
			return daa, dab, dbb, err
		}
	}
	if wrtRight {
		dbb, err = second(func(_, _, bb float64) float64 { return bb })
	}
	return daa, dab, dbb, err
}
