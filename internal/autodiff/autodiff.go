// Package autodiff implements automatic differentiation over expression DAGs.
//
// Expressions are built in a Graph arena: variables, constants and the closed
// operator set of package ops. Nodes are immutable handles, so sub-expressions
// can be shared freely; identity (the arena ID), not the variable name, keys
// every cache.
//
// Evaluation strategies:
//   - Eval: value only
//   - Forward: value plus the Jacobian row in one memoized traversal
//   - ReverseGraph: forward sweep recording parent edges, then a backward sweep
//   - NthDerivative: n-th total derivative along one direction via Taylor
//     coefficients
//   - Hessian: second partials via the second-order chain rule
//   - DerivativeExpr: n-th partial derivative built as a new expression
//
// Each top-level call owns a fresh EvaluationContext. Values are scalars or
// arrays that broadcast NumPy-style; derivatives are elementwise.
//
// Usage:
//
//	g := autodiff.NewGraph()
//	x := g.Variable("x")
//	y := autodiff.Sin(x)
//	b, _ := autodiff.Bind(x, 1.0)
//	v, d, _ := autodiff.Forward(y, b) // v = sin(1), d.At(x) = cos(1)
package autodiff

import (
	"github.com/born-ml/adgraph/internal/numeric"
)

// Eval returns the value of root.
func Eval(root Node, b Bindings, opts ...Option) (numeric.Value, error) {
	c, err := NewContext(root.g, b, opts...)
	if err != nil {
		return numeric.Value{}, err
	}
	return c.Eval(root)
}

// Forward returns the value of root and its first partials.
func Forward(root Node, b Bindings, opts ...Option) (numeric.Value, *Partials, error) {
	c, err := NewContext(root.g, b, opts...)
	if err != nil {
		return numeric.Value{}, nil, err
	}
	return c.Forward(root)
}

// Derivative returns the derivative of a univariate expression.
func Derivative(root Node, b Bindings, opts ...Option) (numeric.Value, error) {
	_, p, err := Forward(root, b, opts...)
	if err != nil {
		return numeric.Value{}, err
	}
	return p.Only()
}

// NthDerivative returns the n-th total derivative of root along the
// direction given by WithDirection (velocity 1 for every variable by default).
func NthDerivative(root Node, n int, b Bindings, opts ...Option) (numeric.Value, error) {
	c, err := NewContext(root.g, b, opts...)
	if err != nil {
		return numeric.Value{}, err
	}
	return c.NthDerivative(root, n)
}

// Hessian returns the value, first partials and second partials of root.
func Hessian(root Node, b Bindings, opts ...Option) (*HessianMatrix, error) {
	c, err := NewContext(root.g, b, opts...)
	if err != nil {
		return nil, err
	}
	return c.Hessian(root)
}
