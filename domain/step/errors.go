package step

import (
	"errors"
	"fmt"
)

// Domain errors for step execution.
var (
	// ErrUpstream indicates the completion service was unreachable, errored,
	// or returned output that failed to parse as the step's declared shape.
	ErrUpstream = errors.New("upstream failure")

	// ErrUnknownStep indicates a step ID with no registered definition.
	ErrUnknownStep = errors.New("unknown step")
)

// UpstreamError wraps a failure with the identity of the failing step so
// callers can surface which part of the chain broke.
type UpstreamError struct {
	StepID string
	Err    error
}

// NewUpstreamError creates an upstream error for the given step.
func NewUpstreamError(stepID string, err error) *UpstreamError {
	return &UpstreamError{StepID: stepID, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("step %s: %v", e.StepID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is makes UpstreamError match ErrUpstream under errors.Is.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
