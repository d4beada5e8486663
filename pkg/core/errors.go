package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the store and queue manager. Callers are
// expected to branch with errors.Is.
var (
	ErrDuplicateID  = errors.New("queuectl: job with this id already exists")
	ErrNotFound     = errors.New("queuectl: job not found")
	ErrInvalidState = errors.New("queuectl: job is not in a valid state for this operation")
	ErrEmptyID      = errors.New("queuectl: job id must not be empty")
	ErrInvalidID    = errors.New("queuectl: job id must be alphanumeric (plus ._-)")
	ErrEmptyCommand = errors.New("queuectl: command must not be empty")
	ErrIDTooLong    = errors.New("queuectl: job id too long")
	ErrNegRetries   = errors.New("queuectl: max retries must be >= 0")
	ErrUnknownState = errors.New("queuectl: unknown job state")
)

// ValidationError aggregates one or more field-level validation failures.
// It carries no state mutation: an enqueue or config check that returns it
// has touched nothing.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Add(err error) {
	e.Errs = append(e.Errs, err)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errs) > 0
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("queuectl: validation failed: %v", errors.Join(e.Errs...))
}

func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// InvalidStateError wraps ErrInvalidState with the observed state so callers
// can report what the job actually was.
type InvalidStateError struct {
	JobID string
	State JobState
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("queuectl: job %q is %s, not in a valid state for this operation", e.JobID, e.State)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
