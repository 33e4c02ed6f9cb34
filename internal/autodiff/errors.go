package autodiff

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrTypeMismatch is returned at construction time for operands that are
	// neither numeric nor nodes of the same graph.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownOperator is returned for operator tags outside the closed set.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrDomain is wrapped by every DomainError.
	ErrDomain = errors.New("domain error")

	// ErrUninitializedGradient is returned when a reverse-mode gradient is read
	// before a backward sweep has reached the node.
	ErrUninitializedGradient = errors.New("gradient not initialized")

	// ErrNotEvaluated is returned by a backward sweep from a root that was
	// never evaluated.
	ErrNotEvaluated = errors.New("node not evaluated")

	// ErrUnboundVariable is returned when a reachable variable has no value.
	ErrUnboundVariable = errors.New("unbound variable")

	// ErrAmbiguousName is returned when a name matches several variables.
	ErrAmbiguousName = errors.New("ambiguous variable name")

	// ErrInvalidOrder is returned for a negative derivative order.
	ErrInvalidOrder = errors.New("invalid derivative order")

	// ErrNotScalar is returned when a scalar result is required.
	ErrNotScalar = errors.New("value is not a scalar")

	// ErrNotUnivariate is returned when a single-variable result is requested
	// from an expression of several variables.
	ErrNotUnivariate = errors.New("expression is not univariate")
)

// DomainError reports an elementary function evaluated outside its domain.
type DomainError struct {
	Node   ID      // Offending node
	Op     string  // Operator name, e.g. "log"
	Input  float64 // First offending input element
	Reason string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: %s at node %d (input %g): %s", ErrDomain, e.Op, e.Node, e.Input, e.Reason)
}

// Unwrap makes errors.Is(err, ErrDomain) work.
func (e *DomainError) Unwrap() error {
	return ErrDomain
}
