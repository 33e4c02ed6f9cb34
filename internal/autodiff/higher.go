package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// maxCauchyPower bounds the exponents expanded by repeated series products.
const maxCauchyPower = 64

// NthDerivative returns the n-th total derivative of root along the curve
// t ↦ x + t·v, where every variable x moves with its velocity v (1 unless set
// with WithDirection). Order 0 is the value.
//
// Internally it computes the Taylor coefficient f_n of root along that curve
// and returns f_n · n!. The recurrence for a unary node f = op(g) is
//
//	f_n = (1/n) Σ_{i=1..n} i · g_i · h_{n-i}
//
// where h = op'(g) is built as a transient companion expression (cos(g) for
// sin, 1 + f² for tan, f itself for exp, ...). Companion nodes and all of
// their cache entries are released as soon as the sum is done.
func (c *EvaluationContext) NthDerivative(root Node, n int) (numeric.Value, error) {
	if n < 0 {
		return numeric.Value{}, fmt.Errorf("%w: %d", ErrInvalidOrder, n)
	}
	if err := c.begin(root); err != nil {
		return numeric.Value{}, err
	}
	v, err := c.eval(root.id)
	if err != nil || n == 0 {
		return v, err
	}

	fn, err := c.coef(root.id, n)
	if err != nil {
		return numeric.Value{}, err
	}
	shape, err := numeric.BroadcastShapes(v.Shape(), fn.Shape())
	if err != nil {
		return numeric.Value{}, err
	}
	if fn, err = c.kernel.BroadcastTo(fn, shape); err != nil {
		return numeric.Value{}, err
	}
	return c.kernel.Scale(fn, factorial(n)), nil
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// coef returns the Taylor coefficient of order k of a node, once per context.
func (c *EvaluationContext) coef(id ID, k int) (numeric.Value, error) {
	if k == 0 {
		return c.eval(id)
	}
	key := taylorKey{id: id, order: k}
	if v, ok := c.taylor[key]; ok {
		return v, nil
	}

	// The value comes first so domain errors are reported for the value
	// before any recurrence divides by it.
	x0, err := c.eval(id)
	if err != nil {
		return numeric.Value{}, err
	}

	n := c.at(id)
	var v numeric.Value
	switch {
	case n.kind == kindVariable:
		v = c.velocity(id, x0, k)
	case len(n.deps) == 0:
		v = numeric.Zeros(x0.Shape())
	case n.kind == kindUnary:
		v, err = c.coefUnary(id, n, k)
	case n.kind == kindBinary:
		v, err = c.coefBinary(id, n, k)
	}
	if err != nil {
		return numeric.Value{}, err
	}

	c.taylor[key] = v
	return v, nil
}

func (c *EvaluationContext) velocity(id ID, x0 numeric.Value, k int) numeric.Value {
	if k > 1 {
		return numeric.Zeros(x0.Shape())
	}
	if v, ok := c.direction[id]; ok {
		return v
	}
	return numeric.Ones(x0.Shape())
}

// series returns the coefficients 0..k of a node.
func (c *EvaluationContext) series(id ID, k int) ([]numeric.Value, error) {
	s := make([]numeric.Value, k+1)
	for i := range s {
		var err error
		if s[i], err = c.coef(id, i); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (c *EvaluationContext) coefUnary(id ID, n node, k int) (numeric.Value, error) {
	g0, err := c.eval(n.left)
	if err != nil {
		return numeric.Value{}, err
	}
	if err := c.checkUnary(id, n, g0, n.unary.CheckDeriv); err != nil {
		return numeric.Value{}, err
	}

	switch n.unary {
	case ops.Neg:
		gk, err := c.coef(n.left, k)
		if err != nil {
			return numeric.Value{}, err
		}
		return c.kernel.Neg(gk), nil
	case ops.Abs:
		gk, err := c.coef(n.left, k)
		if err != nil {
			return numeric.Value{}, err
		}
		return c.kernel.Mul(c.kernel.Map(g0, ops.AbsSign), gk)
	case ops.Log:
		return c.coefLog(id, n.left, 1, k)
	case ops.Logb:
		return c.coefLog(id, n.left, math.Log(n.param), k)
	case ops.Sqrt:
		return c.coefPower(id, n.left, numeric.Scalar(0.5), k)
	case ops.Exp:
		return c.chain(id, n.left, id, k)
	case ops.Sign:
		return numeric.Zeros(g0.Shape()), nil
	}

	mark := len(c.overlay)
	h := c.companion(id, n)
	v, err := c.chain(id, n.left, h, k)
	c.release(mark, k)
	if err != nil {
		return numeric.Value{}, c.attribute(err, id)
	}
	return v, nil
}

// companion builds op'(g) for a unary node f = op(g) as transient nodes.
func (c *EvaluationContext) companion(f ID, n node) ID {
	g := n.left
	oneMinusSq := func(x ID) ID {
		return c.tBinary(ops.Sub, c.tConst(1), c.tBinary(ops.Mul, x, x))
	}
	switch n.unary {
	case ops.Sin:
		return c.tUnary(ops.Cos, g)
	case ops.Cos:
		return c.tUnary(ops.Neg, c.tUnary(ops.Sin, g))
	case ops.Tan:
		return c.tBinary(ops.Add, c.tConst(1), c.tBinary(ops.Mul, f, f))
	case ops.Sinh:
		return c.tUnary(ops.Cosh, g)
	case ops.Cosh:
		return c.tUnary(ops.Sinh, g)
	case ops.Tanh:
		return oneMinusSq(f)
	case ops.Logistic:
		return c.tBinary(ops.Mul, f, c.tBinary(ops.Sub, c.tConst(1), f))
	case ops.Arcsin:
		return c.tBinary(ops.Pow, oneMinusSq(g), c.tConst(-0.5))
	case ops.Arccos:
		return c.tUnary(ops.Neg, c.tBinary(ops.Pow, oneMinusSq(g), c.tConst(-0.5)))
	case ops.Arctan:
		return c.tBinary(ops.Div, c.tConst(1),
			c.tBinary(ops.Add, c.tConst(1), c.tBinary(ops.Mul, g, g)))
	default:
		panic("autodiff: no companion for " + n.unary.String())
	}
}

// chain returns (1/k) Σ_{i=1..k} i · g_i · h_{k-i}.
func (c *EvaluationContext) chain(id, g, h ID, k int) (numeric.Value, error) {
	var acc numeric.Value
	for i := 1; i <= k; i++ {
		gi, err := c.coef(g, i)
		if err != nil {
			return numeric.Value{}, err
		}
		hk, err := c.coef(h, k-i)
		if err != nil {
			return numeric.Value{}, err
		}
		if acc, err = c.mulAdd(acc, c.kernel.Scale(gi, float64(i)), hk); err != nil {
			return numeric.Value{}, err
		}
	}
	return c.scale(acc, 1/float64(k)), nil
}

// coefLog handles f = log_b(g) with lnb = ln b:
//
//	f_k = (g_k/lnb - (1/k) Σ_{i=1..k-1} i · f_i · g_{k-i}) / g_0
func (c *EvaluationContext) coefLog(id, g ID, lnb float64, k int) (numeric.Value, error) {
	// g_0 > 0 here: the derivative domain check of log rejects the rest.
	g0, err := c.eval(g)
	if err != nil {
		return numeric.Value{}, err
	}

	var acc numeric.Value
	for i := 1; i < k; i++ {
		fi, err := c.coef(id, i)
		if err != nil {
			return numeric.Value{}, err
		}
		gi, err := c.coef(g, k-i)
		if err != nil {
			return numeric.Value{}, err
		}
		if acc, err = c.mulAdd(acc, c.kernel.Scale(fi, float64(i)), gi); err != nil {
			return numeric.Value{}, err
		}
	}
	gk, err := c.coef(g, k)
	if err != nil {
		return numeric.Value{}, err
	}
	num, err := c.sub(c.kernel.Scale(gk, 1/lnb), c.scale(acc, 1/float64(k)))
	if err != nil {
		return numeric.Value{}, err
	}
	return c.kernel.Div(num, g0)
}

// coefPower handles f = g^a for an exponent a free of variables:
//
//	f_k = (1/g_0) Σ_{i=1..k} ((a+1)·i/k - 1) · g_i · f_{k-i}
//
// Elements with g_0 == 0 have f_k = 0 when a > k; otherwise the derivative
// does not exist there and a DomainError is returned.
func (c *EvaluationContext) coefPower(id, g ID, a numeric.Value, k int) (numeric.Value, error) {
	g0, err := c.eval(g)
	if err != nil {
		return numeric.Value{}, err
	}
	zb, ab, err := c.pair(g0, a)
	if err != nil {
		return numeric.Value{}, err
	}
	zd, ad := zb.Data(), ab.Data()
	hasZero := false
	for i := range zd {
		if zd[i] != 0 {
			continue
		}
		if ad[i] <= float64(k) && ad[i] != 0 {
			return numeric.Value{}, &DomainError{
				Node: id, Op: opName(c.at(id)), Input: 0,
				Reason: fmt.Sprintf("derivative of order %d of x^%g does not exist at zero", k, ad[i]),
			}
		}
		hasZero = true
	}

	var acc numeric.Value
	for i := 1; i <= k; i++ {
		gi, err := c.coef(g, i)
		if err != nil {
			return numeric.Value{}, err
		}
		fi, err := c.coef(id, k-i)
		if err != nil {
			return numeric.Value{}, err
		}
		w := c.kernel.Map(a, func(e float64) float64 { return (e+1)*float64(i)/float64(k) - 1 })
		t, err := c.kernel.Mul(w, gi)
		if err != nil {
			return numeric.Value{}, err
		}
		if acc, err = c.mulAdd(acc, t, fi); err != nil {
			return numeric.Value{}, err
		}
	}

	if !hasZero {
		return c.kernel.Div(acc, g0)
	}
	safe := c.kernel.Map(g0, func(x float64) float64 {
		if x == 0 {
			return 1
		}
		return x
	})
	if acc, err = c.kernel.Div(acc, safe); err != nil {
		return numeric.Value{}, err
	}
	mask := c.kernel.Map(g0, func(x float64) float64 {
		if x == 0 {
			return 0
		}
		return 1
	})
	return c.kernel.Mul(acc, mask)
}

// coefIntPower expands g^a for a whole exponent 0 <= a <= maxCauchyPower by
// repeated series products, which stays exact at g_0 == 0. Every coefficient
// up to k is cached on the way.
func (c *EvaluationContext) coefIntPower(id, g ID, a, k int) (numeric.Value, error) {
	gs, err := c.series(g, k)
	if err != nil {
		return numeric.Value{}, err
	}
	x0, err := c.eval(id)
	if err != nil {
		return numeric.Value{}, err
	}

	p := make([]numeric.Value, k+1)
	p[0] = numeric.Scalar(1)
	for range a {
		next := make([]numeric.Value, k+1)
		for m := 0; m <= k; m++ {
			for i := 0; i <= m; i++ {
				if next[m], err = c.mulAdd(next[m], p[i], gs[m-i]); err != nil {
					return numeric.Value{}, err
				}
			}
		}
		p = next
	}

	for m := 1; m <= k; m++ {
		if !p[m].IsValid() {
			p[m] = numeric.Zeros(x0.Shape())
		}
		key := taylorKey{id: id, order: m}
		if _, ok := c.taylor[key]; !ok {
			c.taylor[key] = p[m]
		}
	}
	return p[k], nil
}

func (c *EvaluationContext) coefBinary(id ID, n node, k int) (numeric.Value, error) {
	switch n.binary {
	case ops.Add, ops.Sub:
		ak, err := c.coef(n.left, k)
		if err != nil {
			return numeric.Value{}, err
		}
		bk, err := c.coef(n.right, k)
		if err != nil {
			return numeric.Value{}, err
		}
		if n.binary == ops.Add {
			return c.kernel.Add(ak, bk)
		}
		return c.kernel.Sub(ak, bk)

	case ops.Mul:
		var acc numeric.Value
		for i := 0; i <= k; i++ {
			ai, err := c.coef(n.left, i)
			if err != nil {
				return numeric.Value{}, err
			}
			bi, err := c.coef(n.right, k-i)
			if err != nil {
				return numeric.Value{}, err
			}
			if acc, err = c.mulAdd(acc, ai, bi); err != nil {
				return numeric.Value{}, err
			}
		}
		return acc, nil

	case ops.Div:
		// q_k = (a_k - Σ_{i<k} q_i · b_{k-i}) / b_0
		acc, err := c.coef(n.left, k)
		if err != nil {
			return numeric.Value{}, err
		}
		for i := 0; i < k; i++ {
			qi, err := c.coef(id, i)
			if err != nil {
				return numeric.Value{}, err
			}
			bi, err := c.coef(n.right, k-i)
			if err != nil {
				return numeric.Value{}, err
			}
			t, err := c.kernel.Mul(qi, bi)
			if err != nil {
				return numeric.Value{}, err
			}
			if acc, err = c.kernel.Sub(acc, t); err != nil {
				return numeric.Value{}, err
			}
		}
		b0, err := c.eval(n.right)
		if err != nil {
			return numeric.Value{}, err
		}
		return c.kernel.Div(acc, b0)

	default:
		return c.coefPow(id, n, k)
	}
}

func (c *EvaluationContext) coefPow(id ID, n node, k int) (numeric.Value, error) {
	if len(c.at(n.right).deps) > 0 {
		// a^b = exp(b · log a)
		mark := len(c.overlay)
		e := c.tUnary(ops.Exp, c.tBinary(ops.Mul, n.right, c.tUnary(ops.Log, n.left)))
		v, err := c.coef(e, k)
		c.release(mark, k)
		if err != nil {
			return numeric.Value{}, c.attribute(err, id)
		}
		return v, nil
	}

	a, err := c.eval(n.right)
	if err != nil {
		return numeric.Value{}, err
	}
	if e, ok := uniform(a); ok && ops.IsInteger(e) && e >= 0 && e <= maxCauchyPower {
		return c.coefIntPower(id, n.left, int(e), k)
	}
	return c.coefPower(id, n.left, a, k)
}

// uniform returns the common element of v when all elements are equal.
func uniform(v numeric.Value) (float64, bool) {
	d := v.Data()
	for _, x := range d[1:] {
		if x != d[0] {
			return 0, false
		}
	}
	return d[0], true
}
