package desim

import (
	"errors"
	"fmt"
)

// Namespace prefixes every sentinel error in this package.
const Namespace = "desim"

var (
	// ErrInvalidSchedule is returned by Environment.Schedule for a negative delay.
	ErrInvalidSchedule = errors.New(Namespace + ": schedule delay must be >= 0")

	// ErrTornDown is returned by Environment.Schedule once the Environment has
	// been closed.
	ErrTornDown = errors.New(Namespace + ": environment is torn down")

	// ErrAlreadyResolved is returned by Event.Succeed/Event.Fail on a non-pending Event.
	ErrAlreadyResolved = errors.New(Namespace + ": event already resolved")

	// ErrUnbalancedRelease is returned by Resource.Release without a matching acquire.
	ErrUnbalancedRelease = errors.New(Namespace + ": resource released without a held acquisition")

	// ErrEmptyCombinator is returned by AllOf/FirstOf given no child events.
	ErrEmptyCombinator = errors.New(Namespace + ": combinator requires at least one event")
)

// ProcessFailure wraps a user-routine error with the identity of the Process
// whose body produced it, recoverable via errors.As. It plays the same role
// for Process completion failures that a task-tagging error plays for task
// failures in a task-execution engine: correlating a failure back to the
// unit of work that produced it.
type ProcessFailure struct {
	ProcessID uint64
	err       error
}

func newProcessFailure(id uint64, err error) error {
	if err == nil {
		return nil
	}
	return &ProcessFailure{ProcessID: id, err: err}
}

func (e *ProcessFailure) Error() string {
	return fmt.Sprintf("process %d failed: %v", e.ProcessID, e.err)
}

func (e *ProcessFailure) Unwrap() error { return e.err }
