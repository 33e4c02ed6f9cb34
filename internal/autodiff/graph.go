package autodiff

import (
	"fmt"
	"sort"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// ID identifies a node inside its graph. IDs are arena indices, assigned in
// construction order, so a node's children always have smaller IDs.
type ID int

type kind uint8

const (
	kindVariable kind = iota + 1
	kindConstant
	kindUnary
	kindBinary
)

// node is the arena record behind a Node handle. Records are never modified
// after construction.
type node struct {
	kind   kind
	name   string        // variables
	value  numeric.Value // constants
	unary  ops.UnaryOp
	binary ops.BinaryOp
	param  float64 // logb base
	left   ID
	right  ID
	deps   []ID // sorted IDs of the variables reachable from this node
}

// Graph is the arena that owns every node of an expression DAG.
//
// Construction is not safe for concurrent use. Once built, nodes are
// immutable and a graph may be evaluated from several goroutines as long as
// each call uses its own EvaluationContext or ReverseGraph.
type Graph struct {
	nodes []node
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make([]node, 0, 64)}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) push(n node) Node {
	id := ID(len(g.nodes))
	if n.kind == kindVariable {
		n.deps = []ID{id}
	}
	g.nodes = append(g.nodes, n)
	return Node{g: g, id: id}
}

// Variable adds an input variable. Two variables with the same name are
// still distinct nodes.
func (g *Graph) Variable(name string) Node {
	return g.push(node{kind: kindVariable, name: name})
}

// Constant adds a constant leaf holding v.
func (g *Graph) Constant(v numeric.Value) Node {
	return g.push(node{kind: kindConstant, value: v})
}

// Scalar adds a scalar constant.
func (g *Graph) Scalar(f float64) Node {
	return g.Constant(numeric.Scalar(f))
}

// Variables returns every variable of the graph in construction order.
func (g *Graph) Variables() []Node {
	var vars []Node
	for i, n := range g.nodes {
		if n.kind == kindVariable {
			vars = append(vars, Node{g: g, id: ID(i)})
		}
	}
	return vars
}

// Lookup returns the variable called name. It fails with ErrAmbiguousName
// when several variables share the name.
func (g *Graph) Lookup(name string) (Node, error) {
	var found Node
	for _, v := range g.Variables() {
		if g.nodes[v.id].name != name {
			continue
		}
		if found.g != nil {
			return Node{}, fmt.Errorf("%w: %q", ErrAmbiguousName, name)
		}
		found = v
	}
	if found.g == nil {
		return Node{}, fmt.Errorf("%w: no variable named %q", ErrUnboundVariable, name)
	}
	return found, nil
}

// Lift turns an operand into a node of g. Nodes of g are returned unchanged;
// float64, float32, int, int64, []float64 and numeric.Value become constants.
func (g *Graph) Lift(x any) (Node, error) {
	if n, ok := x.(Node); ok {
		if n.g != g {
			return Node{}, fmt.Errorf("%w: node belongs to another graph", ErrTypeMismatch)
		}
		return n, nil
	}
	v, ok := numeric.From(x)
	if !ok {
		return Node{}, fmt.Errorf("%w: cannot use %T as an operand", ErrTypeMismatch, x)
	}
	return g.Constant(v), nil
}

// Apply builds a op b. Operands are lifted with Lift.
func (g *Graph) Apply(op ops.BinaryOp, a, b any) (Node, error) {
	if !op.Valid() {
		return Node{}, fmt.Errorf("%w: %v", ErrUnknownOperator, op)
	}
	left, err := g.Lift(a)
	if err != nil {
		return Node{}, err
	}
	right, err := g.Lift(b)
	if err != nil {
		return Node{}, err
	}
	return g.binary(op, left.id, right.id), nil
}

// ApplyUnary builds op(x). Logb needs a base and is built with Logb instead.
func (g *Graph) ApplyUnary(op ops.UnaryOp, x any) (Node, error) {
	if !op.Valid() || op == ops.Logb {
		return Node{}, fmt.Errorf("%w: %v", ErrUnknownOperator, op)
	}
	child, err := g.Lift(x)
	if err != nil {
		return Node{}, err
	}
	return g.unary(op, 0, child.id), nil
}

func (g *Graph) unary(op ops.UnaryOp, param float64, child ID) Node {
	return g.push(makeUnary(op, param, child, g.nodes[child].deps))
}

func (g *Graph) binary(op ops.BinaryOp, left, right ID) Node {
	return g.push(makeBinary(op, left, right, g.nodes[left].deps, g.nodes[right].deps))
}

func makeUnary(op ops.UnaryOp, param float64, child ID, deps []ID) node {
	// deps slices are never mutated, so a unary node shares its child's.
	return node{kind: kindUnary, unary: op, param: param, left: child, deps: deps}
}

func makeBinary(op ops.BinaryOp, left, right ID, ldeps, rdeps []ID) node {
	return node{kind: kindBinary, binary: op, left: left, right: right, deps: mergeDeps(ldeps, rdeps)}
}

// mergeDeps returns the sorted union of two sorted ID sets.
func mergeDeps(a, b []ID) []ID {
	switch {
	case len(b) == 0:
		return a
	case len(a) == 0:
		return b
	}
	out := make([]ID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func containsID(ids []ID, id ID) bool {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	return i < len(ids) && ids[i] == id
}
