package autodiff

import (
	"fmt"

	"github.com/born-ml/adgraph/internal/numeric"
)

// Bindings assigns values to variables for one evaluation call.
type Bindings map[Node]numeric.Value

// Bind builds Bindings from alternating variable/value pairs:
//
//	b, err := Bind(x, 1.0, y, []float64{1, 2, 3})
func Bind(pairs ...any) (Bindings, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("%w: Bind needs variable/value pairs, got %d arguments", ErrTypeMismatch, len(pairs))
	}
	b := make(Bindings, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		n, ok := pairs[i].(Node)
		if !ok {
			return nil, fmt.Errorf("%w: argument %d is %T, want Node", ErrTypeMismatch, i, pairs[i])
		}
		v, ok := numeric.From(pairs[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: cannot bind %T to %s", ErrTypeMismatch, pairs[i+1], n.Name())
		}
		b[n] = v
	}
	return b, nil
}

// BindNamed resolves variable names through Lookup and builds Bindings.
func (g *Graph) BindNamed(values map[string]any) (Bindings, error) {
	b := make(Bindings, len(values))
	for name, x := range values {
		n, err := g.Lookup(name)
		if err != nil {
			return nil, err
		}
		v, ok := numeric.From(x)
		if !ok {
			return nil, fmt.Errorf("%w: cannot bind %T to %s", ErrTypeMismatch, x, name)
		}
		b[n] = v
	}
	return b, nil
}

// validate checks that every binding targets a variable of g and that all
// values broadcast together. It returns the common shape.
func (b Bindings) validate(g *Graph) (numeric.Shape, error) {
	shape := numeric.Shape{}
	for n, v := range b {
		if n.g != g {
			return nil, fmt.Errorf("%w: bound node belongs to another graph", ErrTypeMismatch)
		}
		if !n.IsVariable() {
			return nil, fmt.Errorf("%w: node %d is not a variable", ErrTypeMismatch, n.id)
		}
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: empty value bound to %s", ErrTypeMismatch, n.Name())
		}
		s, err := numeric.BroadcastShapes(shape, v.Shape())
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", n.Name(), err)
		}
		shape = s
	}
	return shape, nil
}
