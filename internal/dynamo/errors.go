package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidBody indicates a body with a non-positive or non-finite mass,
	// or a non-finite initial position or velocity.
	ErrInvalidBody = errors.New("dynamo: invalid body (mass must be positive and finite)")

	// ErrDegenerateConfiguration indicates two bodies closer than the solver's
	// minimum distance, where the force would be infinite or NaN.
	ErrDegenerateConfiguration = errors.New("dynamo: degenerate configuration (coincident bodies)")

	// ErrEmptySystem indicates a simulation built without bodies.
	ErrEmptySystem = errors.New("dynamo: simulation needs at least one body")

	// ErrInvalidConfig indicates a solver parameter outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// BodyError reports which initialization tuple was rejected.
type BodyError struct {
	Index   int
	Mass    float64
	Wrapped error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("body %d (mass=%g): %v", e.Index, e.Mass, e.Wrapped)
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}

// PairError identifies the two bodies that made a compute phase fail.
type PairError struct {
	I, J     int
	Distance float64
	Wrapped  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("bodies %d and %d at distance %g: %v", e.I, e.J, e.Distance, e.Wrapped)
}

func (e *PairError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with the step at which it occurred.
type SimulationError struct {
	Step    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
