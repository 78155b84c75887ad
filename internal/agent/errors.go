package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInterrupt is returned when an interrupt resolution arrives
	// for a session with nothing awaiting a choice.
	ErrNoInterrupt = errors.New("no interrupt awaiting resolution")

	// ErrUnknownChoice is returned when an interrupt resolution names a
	// choice outside the offered options.
	ErrUnknownChoice = errors.New("unknown interrupt choice")
)

// GenerationFailureError reports a model call that failed or returned an
// unusable completion. The turn aborts: nothing is written to history or
// long-term memory.
type GenerationFailureError struct {
	// Phase names the pipeline phase that failed: decision, synthesis
	// or modify.
	Phase string

	// Err is the underlying cause.
	Err error
}

// NewGenerationFailureError wraps err as a generation failure in phase.
func NewGenerationFailureError(phase string, err error) *GenerationFailureError {
	return &GenerationFailureError{Phase: phase, Err: err}
}

// Error returns the error message.
func (e *GenerationFailureError) Error() string {
	return fmt.Sprintf("generation failed in %s phase: %v", e.Phase, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *GenerationFailureError) Unwrap() error { return e.Err }

// IsGenerationFailure reports whether err is a generation failure.
func IsGenerationFailure(err error) bool {
	var gf *GenerationFailureError
	return errors.As(err, &gf)
}

// RoutingAmbiguousError records input the router could not place on any
// route. The turn still completes with a fixed clarification; the error
// value only feeds logs and the audit trail.
type RoutingAmbiguousError struct {
	Input string
}

// NewRoutingAmbiguousError builds the error for the given input.
func NewRoutingAmbiguousError(input string) *RoutingAmbiguousError {
	return &RoutingAmbiguousError{Input: input}
}

// Error returns the error message.
func (e *RoutingAmbiguousError) Error() string {
	return fmt.Sprintf("unable to route request %q", e.Input)
}

// IsRoutingAmbiguous reports whether err marks unroutable input.
func IsRoutingAmbiguous(err error) bool {
	var ra *RoutingAmbiguousError
	return errors.As(err, &ra)
}
