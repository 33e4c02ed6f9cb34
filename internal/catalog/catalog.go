// Package catalog holds named test functions for the autodiff engine.
//
// Each Function builds its expression into a fresh graph, so instances never
// share nodes. Known minimizers are recorded where the function has one.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/adgraph/autodiff"
)

// ErrUnknownFunction is returned by Lookup for names not in the catalog.
var ErrUnknownFunction = errors.New("unknown function")

// Function is a named expression builder.
type Function struct {
	Name        string
	Description string
	Vars        []string  // Variable names, in order
	Start       []float64 // Suggested starting point
	Minimum     []float64 // Known global minimizer, nil if none
	build       func(g *autodiff.Graph, v []autodiff.Node) autodiff.Node
}

// Instance is a Function built into its own graph.
type Instance struct {
	Graph *autodiff.Graph
	Vars  []autodiff.Node
	Root  autodiff.Node
}

// Build creates the expression in a new graph.
func (f Function) Build() Instance {
	g := autodiff.NewGraph()
	vars := make([]autodiff.Node, len(f.Vars))
	for i, name := range f.Vars {
		vars[i] = g.Variable(name)
	}
	return Instance{Graph: g, Vars: vars, Root: f.build(g, vars)}
}

// Bind binds the instance's variables to point, in order.
func (in Instance) Bind(point []float64) (autodiff.Bindings, error) {
	if len(point) != len(in.Vars) {
		return nil, fmt.Errorf("catalog: point has %d coordinates, function takes %d", len(point), len(in.Vars))
	}
	b := make(autodiff.Bindings, len(point))
	for i, v := range in.Vars {
		b[v] = autodiff.Scalar(point[i])
	}
	return b, nil
}

var registry = map[string]Function{}

func register(f Function) {
	if _, dup := registry[f.Name]; dup {
		panic("catalog: duplicate function " + f.Name)
	}
	registry[f.Name] = f
}

// Lookup returns the function registered under name.
func Lookup(name string) (Function, error) {
	f, ok := registry[name]
	if !ok {
		return Function{}, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return f, nil
}

// All returns every function sorted by name.
func All() []Function {
	out := make([]Function, 0, len(registry))
	for _, f := range registry {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every function name, sorted.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, f := range all {
		names[i] = f.Name
	}
	return names
}
