package solpos

import (
	"errors"
	"fmt"
)

var (
	// ErrInput reports malformed timestamps, non-finite numeric input or a
	// solve target outside its bracket.
	ErrInput = errors.New("invalid input")

	// ErrConvergence reports a Kepler solve that exceeded its iteration cap.
	ErrConvergence = errors.New("kepler solver did not converge")

	// ErrDependencyUnavailable reports that the collaborator a method needs
	// (ephemeris oracle, root finder) cannot be used.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// InputError describes a bad input value. Index is the position in the
// batch, or -1 when the error is not tied to a single instant.
type InputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s: %s", ErrInput, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: %s[%d]: %s", ErrInput, e.Field, e.Index, e.Reason)
}

// Is reports whether target is ErrInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInput
}

// ConvergenceError is returned when the eccentric anomaly does not settle
// within MaxKeplerIterations.
type ConvergenceError struct {
	Index      int
	Iterations int
	Residual   float64 // degrees
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: instant %d: residual %.3g deg after %d iterations",
		ErrConvergence, e.Index, e.Residual, e.Iterations)
}

// Is reports whether target is ErrConvergence.
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

// DependencyError wraps a collaborator failure detected at selection time.
type DependencyError struct {
	Method Method
	Err    error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%v: method %s: %v", ErrDependencyUnavailable, e.Method, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDependencyUnavailable.
func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}
