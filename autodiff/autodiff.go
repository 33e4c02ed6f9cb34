// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation over expression graphs.
//
// Expressions are built from variables, constants and a closed set of
// elementary operators. One graph supports several evaluation strategies:
//   - Eval: value only
//   - Forward: value and first partials in one memoized traversal
//   - ReverseGraph: reverse-mode gradients (forward sweep, then backward sweep)
//   - NthDerivative: n-th total derivative along a direction via Taylor
//     coefficients
//   - Hessian: second partials
//   - DerivativeExpr: a derivative as a new expression in the same graph
//
// Values are float64 scalars or arrays that broadcast NumPy-style.
//
// Example:
//
//	g := autodiff.NewGraph()
//	x := g.Variable("x")
//	y := g.Variable("y")
//	f := autodiff.Sin(x).Mul(y)
//
//	b, _ := autodiff.Bind(x, 0.5, y, 2.0)
//	v, d, _ := autodiff.Forward(f, b)  // v = 2 sin(0.5), d.At(x) = 2 cos(0.5)
//	d3, _ := autodiff.NthDerivative(f, 3, b)
package autodiff

import (
	"github.com/born-ml/adgraph/internal/autodiff"
	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Type aliases for public API

// Graph is the arena that owns expression nodes.
type Graph = autodiff.Graph

// Node is an immutable handle to an expression in a Graph.
type Node = autodiff.Node

// ID identifies a node within its graph.
type ID = autodiff.ID

// Bindings assigns values to variables for one evaluation call.
type Bindings = autodiff.Bindings

// Option configures an evaluation call.
type Option = autodiff.Option

// EvaluationContext owns the caches of one evaluation call. Reusing it
// across calls on the same graph shares cached values and partials.
type EvaluationContext = autodiff.EvaluationContext

// Partials holds the first partials of an expression.
type Partials = autodiff.Partials

// ReverseGraph computes gradients with reverse-mode differentiation.
type ReverseGraph = autodiff.ReverseGraph

// HessianMatrix holds the value, first and second partials of an expression.
type HessianMatrix = autodiff.HessianMatrix

// DomainError reports an elementary function evaluated outside its domain.
type DomainError = autodiff.DomainError

// Value is a float64 scalar or dense array.
type Value = numeric.Value

// Shape represents the dimensions of a Value. An empty shape is a scalar.
type Shape = numeric.Shape

// UnaryOp identifies a unary operator.
type UnaryOp = ops.UnaryOp

// BinaryOp identifies a binary operator.
type BinaryOp = ops.BinaryOp

// Unary operators.
const (
	OpNeg      UnaryOp = ops.Neg
	OpAbs      UnaryOp = ops.Abs
	OpSin      UnaryOp = ops.Sin
	OpCos      UnaryOp = ops.Cos
	OpTan      UnaryOp = ops.Tan
	OpSinh     UnaryOp = ops.Sinh
	OpCosh     UnaryOp = ops.Cosh
	OpTanh     UnaryOp = ops.Tanh
	OpExp      UnaryOp = ops.Exp
	OpLog      UnaryOp = ops.Log
	OpLogb     UnaryOp = ops.Logb
	OpArcsin   UnaryOp = ops.Arcsin
	OpArccos   UnaryOp = ops.Arccos
	OpArctan   UnaryOp = ops.Arctan
	OpSqrt     UnaryOp = ops.Sqrt
	OpLogistic UnaryOp = ops.Logistic
	OpSign     UnaryOp = ops.Sign
)

// Binary operators.
const (
	OpAdd BinaryOp = ops.Add
	OpSub BinaryOp = ops.Sub
	OpMul BinaryOp = ops.Mul
	OpDiv BinaryOp = ops.Div
	OpPow BinaryOp = ops.Pow
)

// Sentinel errors.
var (
	ErrTypeMismatch          = autodiff.ErrTypeMismatch
	ErrUnknownOperator       = autodiff.ErrUnknownOperator
	ErrDomain                = autodiff.ErrDomain
	ErrUninitializedGradient = autodiff.ErrUninitializedGradient
	ErrNotEvaluated          = autodiff.ErrNotEvaluated
	ErrUnboundVariable       = autodiff.ErrUnboundVariable
	ErrAmbiguousName         = autodiff.ErrAmbiguousName
	ErrInvalidOrder          = autodiff.ErrInvalidOrder
	ErrNotScalar             = autodiff.ErrNotScalar
	ErrNotUnivariate         = autodiff.ErrNotUnivariate
	ErrShapeMismatch         = numeric.ErrShapeMismatch
)

// NewGraph creates an empty expression graph.
func NewGraph() *Graph {
	return autodiff.NewGraph()
}

// Bind builds Bindings from alternating variable/value pairs. Values may be
// float64, int, []float64 or Value.
//
// Example:
//
//	b, err := autodiff.Bind(x, 1.0, y, []float64{1, 2, 3})
func Bind(pairs ...any) (Bindings, error) {
	return autodiff.Bind(pairs...)
}

// NewContext creates an evaluation context for g.
func NewContext(g *Graph, b Bindings, opts ...Option) (*EvaluationContext, error) {
	return autodiff.NewContext(g, b, opts...)
}

// WithDirection sets the velocity of variable v for NthDerivative.
func WithDirection(v Node, velocity any) Option {
	return autodiff.WithDirection(v, velocity)
}

// Eval returns the value of root.
func Eval(root Node, b Bindings, opts ...Option) (Value, error) {
	return autodiff.Eval(root, b, opts...)
}

// Forward returns the value of root and its first partials.
func Forward(root Node, b Bindings, opts ...Option) (Value, *Partials, error) {
	return autodiff.Forward(root, b, opts...)
}

// Derivative returns the derivative of a univariate expression.
func Derivative(root Node, b Bindings, opts ...Option) (Value, error) {
	return autodiff.Derivative(root, b, opts...)
}

// NthDerivative returns the n-th total derivative of root along the
// direction set by WithDirection (velocity 1 for every variable by default).
func NthDerivative(root Node, n int, b Bindings, opts ...Option) (Value, error) {
	return autodiff.NthDerivative(root, n, b, opts...)
}

// Hessian returns the value, first and second partials of root.
func Hessian(root Node, b Bindings, opts ...Option) (*HessianMatrix, error) {
	return autodiff.Hessian(root, b, opts...)
}

// NewReverseGraph creates reverse-mode state for g.
func NewReverseGraph(g *Graph, opts ...Option) *ReverseGraph {
	return autodiff.NewReverseGraph(g, opts...)
}

// JacobianForward returns the forward-mode Jacobian of roots with respect to
// vars, one row per root.
func JacobianForward(roots, vars []Node, b Bindings, opts ...Option) ([][]Value, error) {
	return autodiff.JacobianForward(roots, vars, b, opts...)
}

// DerivativeExpr builds the n-th partial derivative of root with respect to
// the variable v as a new expression in the same graph.
func DerivativeExpr(root, v Node, n int) (Node, error) {
	return autodiff.DerivativeExpr(root, v, n)
}

// JacobianReverse returns the reverse-mode Jacobian of roots with respect to
// vars, one row per root.
func JacobianReverse(roots, vars []Node, b Bindings, opts ...Option) ([][]Value, error) {
	return autodiff.JacobianReverse(roots, vars, b, opts...)
}

// Neg returns -n.
func Neg(n Node) Node { return autodiff.Neg(n) }

// Abs returns |n|. Its slope at zero is +1.
func Abs(n Node) Node { return autodiff.Abs(n) }

// Sign returns the slope of |n|: -1 for negative n, +1 otherwise.
func Sign(n Node) Node { return autodiff.Sign(n) }

// Sin returns sin(n).
func Sin(n Node) Node { return autodiff.Sin(n) }

// Cos returns cos(n).
func Cos(n Node) Node { return autodiff.Cos(n) }

// Tan returns tan(n).
func Tan(n Node) Node { return autodiff.Tan(n) }

// Sinh returns the hyperbolic sine of n.
func Sinh(n Node) Node { return autodiff.Sinh(n) }

// Cosh returns the hyperbolic cosine of n.
func Cosh(n Node) Node { return autodiff.Cosh(n) }

// Tanh returns the hyperbolic tangent of n.
func Tanh(n Node) Node { return autodiff.Tanh(n) }

// Exp returns e**n.
func Exp(n Node) Node { return autodiff.Exp(n) }

// Log returns the natural logarithm of n.
func Log(n Node) Node { return autodiff.Log(n) }

// Arcsin returns the inverse sine of n.
func Arcsin(n Node) Node { return autodiff.Arcsin(n) }

// Arccos returns the inverse cosine of n.
func Arccos(n Node) Node { return autodiff.Arccos(n) }

// Arctan returns the inverse tangent of n.
func Arctan(n Node) Node { return autodiff.Arctan(n) }

// Sqrt returns the square root of n.
func Sqrt(n Node) Node { return autodiff.Sqrt(n) }

// Logistic returns 1 / (1 + e**-n).
func Logistic(n Node) Node { return autodiff.Logistic(n) }

// Logb returns the logarithm of n in the given base.
func Logb(base float64, n Node) Node { return autodiff.Logb(base, n) }

// Scalar wraps a single float64.
func Scalar(f float64) Value {
	return numeric.Scalar(f)
}

// Vector copies xs into a one-dimensional Value.
func Vector(xs []float64) Value {
	return numeric.Vector(xs)
}
