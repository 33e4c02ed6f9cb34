package autodiff

import (
	"fmt"

	"github.com/born-ml/adgraph/internal/autodiff/ops"
	"github.com/born-ml/adgraph/internal/numeric"
)

// Option configures an evaluation call.
type Option func(*options)

type options struct {
	kernel    *numeric.Kernel
	direction map[Node]any
}

// WithKernel sets the numeric kernel used for array arithmetic.
func WithKernel(k *numeric.Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithDirection sets the velocity of v along the curve used by
// NthDerivative. Variables without an explicit velocity move with velocity 1.
func WithDirection(v Node, velocity any) Option {
	return func(o *options) {
		if o.direction == nil {
			o.direction = make(map[Node]any)
		}
		o.direction[v] = velocity
	}
}

type taylorKey struct {
	id    ID
	order int
}

// pairKey indexes a second partial; a <= b always.
type pairKey struct {
	a, b ID
}

func newPairKey(x, y ID) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// partialMap holds first partials keyed by variable. Missing entries are zero.
type partialMap map[ID]numeric.Value

// secondMap holds second partials keyed by variable pair. Missing entries are zero.
type secondMap map[pairKey]numeric.Value

// EvaluationContext owns the caches of one top-level evaluation call.
//
// Every node is computed at most once per cache: values, first partials,
// Taylor coefficients per order and second partials. Companion nodes built by
// the higher-order recurrence live in a transient overlay whose IDs follow
// the graph's own and are reused once released.
//
// A context is not safe for concurrent use.
type EvaluationContext struct {
	arith

	g     *Graph
	shape numeric.Shape

	base    int    // len(g.nodes) when the overlay was last empty
	overlay []node // transient companion nodes

	bindings  map[ID]numeric.Value
	direction map[ID]numeric.Value

	values   map[ID]numeric.Value
	partials map[ID]partialMap
	taylor   map[taylorKey]numeric.Value
	second   map[ID]secondMap
	visits   map[ID]int
}

// NewContext validates bindings and creates an empty context for g.
func NewContext(g *Graph, b Bindings, opts ...Option) (*EvaluationContext, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil graph", ErrTypeMismatch)
	}
	o := options{kernel: numeric.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	shape, err := b.validate(g)
	if err != nil {
		return nil, err
	}

	c := &EvaluationContext{
		arith:     arith{kernel: o.kernel},
		g:         g,
		base:      len(g.nodes),
		bindings:  make(map[ID]numeric.Value, len(b)),
		direction: make(map[ID]numeric.Value, len(o.direction)),
		values:    make(map[ID]numeric.Value),
		partials:  make(map[ID]partialMap),
		taylor:    make(map[taylorKey]numeric.Value),
		second:    make(map[ID]secondMap),
		visits:    make(map[ID]int),
	}
	for n, v := range b {
		c.bindings[n.id] = v
	}

	for n, x := range o.direction {
		if n.g != g || !n.IsVariable() {
			return nil, fmt.Errorf("%w: direction must target a variable of the graph", ErrTypeMismatch)
		}
		v, ok := numeric.From(x)
		if !ok {
			return nil, fmt.Errorf("%w: cannot use %T as a velocity", ErrTypeMismatch, x)
		}
		if shape, err = numeric.BroadcastShapes(shape, v.Shape()); err != nil {
			return nil, fmt.Errorf("direction of %s: %w", n.Name(), err)
		}
		c.direction[n.id] = v
	}
	c.shape = shape

	return c, nil
}

// Shape returns the broadcast shape of the bound values.
func (c *EvaluationContext) Shape() numeric.Shape {
	return c.shape
}

// Visits returns how many times n's value was computed in this context.
// Memoization keeps it at one or zero.
func (c *EvaluationContext) Visits(n Node) int {
	return c.visits[n.id]
}

// begin prepares a public entry point for root.
func (c *EvaluationContext) begin(root Node) error {
	if root.g != c.g {
		return fmt.Errorf("%w: node belongs to another graph", ErrTypeMismatch)
	}
	if !root.IsValid() {
		return fmt.Errorf("%w: invalid node", ErrTypeMismatch)
	}
	if len(c.overlay) == 0 {
		c.base = len(c.g.nodes)
	}
	for _, id := range c.g.nodes[root.id].deps {
		if _, ok := c.bindings[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnboundVariable, c.g.nodes[id].name)
		}
	}
	return nil
}

// at returns the record of a graph or overlay node. It returns a copy, so it
// stays valid while the overlay grows.
func (c *EvaluationContext) at(id ID) node {
	if int(id) < c.base {
		return c.g.nodes[id]
	}
	return c.overlay[int(id)-c.base]
}

func (c *EvaluationContext) isTransient(id ID) bool {
	return int(id) >= c.base
}

func (c *EvaluationContext) pushTransient(n node) ID {
	id := ID(c.base + len(c.overlay))
	c.overlay = append(c.overlay, n)
	return id
}

func (c *EvaluationContext) tConst(f float64) ID {
	return c.pushTransient(node{kind: kindConstant, value: numeric.Scalar(f)})
}

func (c *EvaluationContext) tUnary(op ops.UnaryOp, child ID) ID {
	return c.pushTransient(makeUnary(op, 0, child, c.at(child).deps))
}

func (c *EvaluationContext) tBinary(op ops.BinaryOp, left, right ID) ID {
	return c.pushTransient(makeBinary(op, left, right, c.at(left).deps, c.at(right).deps))
}

// release purges every cache entry of the transient nodes created after mark,
// for Taylor orders up to maxOrder, and shrinks the overlay back to mark.
// Overlay IDs are reused afterwards, so entries left behind would be read as
// results for unrelated companion nodes.
func (c *EvaluationContext) release(mark, maxOrder int) {
	for i := mark; i < len(c.overlay); i++ {
		id := ID(c.base + i)
		delete(c.values, id)
		delete(c.partials, id)
		delete(c.second, id)
		delete(c.visits, id)
		for k := 0; k <= maxOrder; k++ {
			delete(c.taylor, taylorKey{id: id, order: k})
		}
	}
	c.overlay = c.overlay[:mark]
}

// attribute rewrites a domain error raised on a transient node so it names
// the graph node that owns the companion expression.
func (c *EvaluationContext) attribute(err error, owner ID) error {
	de, ok := err.(*DomainError)
	if !ok || !c.isTransient(de.Node) {
		return err
	}
	return &DomainError{Node: owner, Op: opName(c.at(owner)), Input: de.Input, Reason: de.Reason}
}

func opName(n node) string {
	switch n.kind {
	case kindUnary:
		return n.unary.String()
	case kindBinary:
		return n.binary.String()
	case kindVariable:
		return "variable"
	default:
		return "constant"
	}
}

// arith is zero-aware arithmetic. An invalid (zero) Value stands for an
// all-zero array of any shape, which keeps sparse partial maps sparse.
type arith struct {
	kernel *numeric.Kernel
}

func (c arith) mul(a, b numeric.Value) (numeric.Value, error) {
	if !a.IsValid() || !b.IsValid() {
		return numeric.Value{}, nil
	}
	return c.kernel.Mul(a, b)
}

func (c arith) add(a, b numeric.Value) (numeric.Value, error) {
	switch {
	case !a.IsValid():
		return b, nil
	case !b.IsValid():
		return a, nil
	}
	return c.kernel.Add(a, b)
}

func (c arith) sub(a, b numeric.Value) (numeric.Value, error) {
	switch {
	case !b.IsValid():
		return a, nil
	case !a.IsValid():
		return c.kernel.Neg(b), nil
	}
	return c.kernel.Sub(a, b)
}

func (c arith) scale(a numeric.Value, f float64) numeric.Value {
	if !a.IsValid() {
		return a
	}
	return c.kernel.Scale(a, f)
}

// mulAdd returns acc + x*y.
func (c arith) mulAdd(acc, x, y numeric.Value) (numeric.Value, error) {
	p, err := c.mul(x, y)
	if err != nil {
		return numeric.Value{}, err
	}
	return c.add(acc, p)
}

// pair broadcasts a and b to their common shape.
func (c arith) pair(a, b numeric.Value) (numeric.Value, numeric.Value, error) {
	shape, err := numeric.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return numeric.Value{}, numeric.Value{}, err
	}
	if a, err = c.kernel.BroadcastTo(a, shape); err != nil {
		return numeric.Value{}, numeric.Value{}, err
	}
	if b, err = c.kernel.BroadcastTo(b, shape); err != nil {
		return numeric.Value{}, numeric.Value{}, err
	}
	return a, b, nil
}

// checkUnary runs an elementwise domain check over x.
func (c *EvaluationContext) checkUnary(id ID, n node, x numeric.Value, check func(x, p float64) string) error {
	var reason string
	i, bad := x.Find(func(e float64) bool {
		reason = check(e, n.param)
		return reason != ""
	})
	if !bad {
		return nil
	}
	return &DomainError{Node: id, Op: n.unary.String(), Input: x.Data()[i], Reason: reason}
}

// checkBinary runs an elementwise domain check over broadcast operands.
// The reported input is the right operand for division and the left one
// otherwise.
func (c *EvaluationContext) checkBinary(id ID, n node, a, b numeric.Value, check func(x, y float64) string) error {
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		if r := check(ad[i], bd[i]); r != "" {
			in := ad[i]
			if n.binary == ops.Div {
				in = bd[i]
			}
			return &DomainError{Node: id, Op: n.binary.String(), Input: in, Reason: r}
		}
	}
	return nil
}
