package autodiff

import (
	"errors"
	"fmt"

	"github.com/born-ml/adgraph/internal/numeric"
)

// ReverseGraph computes gradients with reverse-mode differentiation.
//
// Evaluate runs the forward sweep: it computes values and, as a side effect,
// appends (parent, local partial) edges to every node that carries variables.
// Outer runs the backward sweep from a root. The edges persist until Reset or
// ResetAll, so evaluating the same root twice without a reset records every
// edge twice: for f = a*b the second sweep yields 2b for a.
//
// Usage:
//
//	rg := NewReverseGraph(g)
//	rg.Evaluate(f, bindings)
//	rg.Outer(f)
//	dx, _ := rg.Gradient(x)
//
// A ReverseGraph is not safe for concurrent use.
type ReverseGraph struct {
	arith

	g      *Graph
	opts   []Option
	states map[ID]*reverseState
	orders map[ID][]ID // post-order of the last forward sweep per root
}

type parentEdge struct {
	parent  ID
	partial numeric.Value // ∂parent/∂child, elementwise
}

type reverseState struct {
	parents []parentEdge
	value   numeric.Value
	grad    numeric.Value // invalid until a backward sweep reaches the node
}

// NewReverseGraph creates reverse-mode state for g. Options apply to every
// forward sweep.
func NewReverseGraph(g *Graph, opts ...Option) *ReverseGraph {
	o := options{kernel: numeric.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &ReverseGraph{
		arith:  arith{kernel: o.kernel},
		g:      g,
		opts:   opts,
		states: make(map[ID]*reverseState),
		orders: make(map[ID][]ID),
	}
}

func (r *ReverseGraph) state(id ID) *reverseState {
	st, ok := r.states[id]
	if !ok {
		st = &reverseState{}
		r.states[id] = st
	}
	return st
}

// Evaluate runs the forward sweep from root and returns its value.
func (r *ReverseGraph) Evaluate(root Node, b Bindings) (numeric.Value, error) {
	c, err := NewContext(r.g, b, r.opts...)
	if err != nil {
		return numeric.Value{}, err
	}
	if err := c.begin(root); err != nil {
		return numeric.Value{}, err
	}
	v, err := c.eval(root.id)
	if err != nil {
		return numeric.Value{}, err
	}

	var order []ID
	visited := make(map[ID]bool)
	var visit func(id ID) error
	visit = func(id ID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true

		n := c.at(id)
		if len(n.deps) == 0 && id != root.id {
			return nil // nothing to differentiate below a variable-free node
		}
		switch n.kind {
		case kindUnary:
			if err := visit(n.left); err != nil {
				return err
			}
			if len(c.at(n.left).deps) > 0 {
				d, err := c.unaryDeriv(id, n)
				if err != nil {
					return err
				}
				r.link(n.left, id, d)
			}
		case kindBinary:
			if err := visit(n.left); err != nil {
				return err
			}
			if err := visit(n.right); err != nil {
				return err
			}
			if len(n.deps) > 0 {
				da, db, err := c.binaryPartials(id, n)
				if err != nil {
					return err
				}
				if da.IsValid() {
					r.link(n.left, id, da)
				}
				if db.IsValid() {
					r.link(n.right, id, db)
				}
			}
		}

		r.state(id).value = c.values[id]
		order = append(order, id)
		return nil
	}
	if err := visit(root.id); err != nil {
		return numeric.Value{}, err
	}

	r.orders[root.id] = order
	return v, nil
}

func (r *ReverseGraph) link(child, parent ID, partial numeric.Value) {
	st := r.state(child)
	st.parents = append(st.parents, parentEdge{parent: parent, partial: partial})
}

// Outer runs the backward sweep from root: the root's gradient is seeded with
// ones and every other node of its last forward sweep receives the sum of
// parent gradient times local partial over its recorded parents.
//
// Gradients from earlier sweeps are cleared first; parents outside this
// sweep contribute nothing.
func (r *ReverseGraph) Outer(root Node) error {
	order, ok := r.orders[root.id]
	if !ok || root.g != r.g {
		return fmt.Errorf("%w: call Evaluate before Outer", ErrNotEvaluated)
	}
	for _, st := range r.states {
		st.grad = numeric.Value{}
	}

	// order is a post-order ending with root, so walking it backwards visits
	// every parent before its children.
	rootState := r.states[root.id]
	rootState.grad = numeric.Ones(rootState.value.Shape())
	for i := len(order) - 2; i >= 0; i-- {
		st, ok := r.states[order[i]]
		if !ok {
			continue // reset since the forward sweep
		}
		var acc numeric.Value
		for _, e := range st.parents {
			ps, ok := r.states[e.parent]
			if !ok || !ps.grad.IsValid() {
				continue
			}
			var err error
			if acc, err = r.mulAdd(acc, ps.grad, e.partial); err != nil {
				return err
			}
		}
		if !acc.IsValid() {
			acc = numeric.Zeros(st.value.Shape())
		}
		st.grad = acc
	}
	return nil
}

// Gradient returns the gradient accumulated at v by the last Outer call.
// Gradients are elementwise and are not summed over broadcast axes.
func (r *ReverseGraph) Gradient(v Node) (numeric.Value, error) {
	st, ok := r.states[v.id]
	if !ok || !st.grad.IsValid() || v.g != r.g {
		return numeric.Value{}, fmt.Errorf("%w: node %d", ErrUninitializedGradient, v.id)
	}
	return st.grad, nil
}

// Gradients returns Gradient for each variable in order.
func (r *ReverseGraph) Gradients(vars ...Node) ([]numeric.Value, error) {
	out := make([]numeric.Value, len(vars))
	for i, v := range vars {
		g, err := r.Gradient(v)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// Value returns the value cached for n by the last forward sweep.
func (r *ReverseGraph) Value(n Node) (numeric.Value, bool) {
	st, ok := r.states[n.id]
	if !ok || !st.value.IsValid() {
		return numeric.Value{}, false
	}
	return st.value, true
}

// ParentCount returns the number of parent edges recorded for n.
func (r *ReverseGraph) ParentCount(n Node) int {
	if st, ok := r.states[n.id]; ok {
		return len(st.parents)
	}
	return 0
}

// Reset clears n's parent edges, cached value and gradient so n can take part
// in an unrelated computation.
func (r *ReverseGraph) Reset(n Node) {
	delete(r.states, n.id)
	delete(r.orders, n.id)
}

// ResetAll clears every node.
func (r *ReverseGraph) ResetAll() {
	r.states = make(map[ID]*reverseState)
	r.orders = make(map[ID][]ID)
}

// JacobianReverse stacks the reverse-mode gradients of several outputs:
// row i holds the gradients of roots[i] with respect to vars. Each root gets
// its own ReverseGraph, and variables a root does not reach get zeros.
func JacobianReverse(roots, vars []Node, b Bindings, opts ...Option) ([][]numeric.Value, error) {
	rows := make([][]numeric.Value, len(roots))
	for i, root := range roots {
		rg := NewReverseGraph(root.g, opts...)
		v, err := rg.Evaluate(root, b)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		if err := rg.Outer(root); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}

		rows[i] = make([]numeric.Value, len(vars))
		for j, x := range vars {
			grad, err := rg.Gradient(x)
			switch {
			case errors.Is(err, ErrUninitializedGradient):
				grad = numeric.Zeros(v.Shape())
			case err != nil:
				return nil, err
			}
			rows[i][j] = grad
		}
	}
	return rows, nil
}
