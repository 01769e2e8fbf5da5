package budget

import (
	"errors"
	"fmt"

	"github.com/aristath/budgetopt/pkg/cp"
)

var (
	// ErrInvalidInput marks input rejected before a model is built.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSolver marks a failure of the optimizer itself, as opposed to a
	// budget that has no feasible allocation.
	ErrSolver = errors.New("solver error")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SolverError reports an engine failure together with the status it ended in.
type SolverError struct {
	Status cp.Status
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("solver failed with status %s", e.Status)
	}
	return fmt.Sprintf("solver failed with status %s: %v", e.Status, e.Err)
}

// Is lets errors.Is match ErrSolver.
func (e *SolverError) Is(target error) bool {
	return target == ErrSolver
}

func (e *SolverError) Unwrap() error {
	return e.Err
}
