package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrFlowNotFound indicates a flow was not found by namespace and id.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrInvalidFlow indicates a flow is missing required properties.
	ErrInvalidFlow = errors.New("invalid flow")
)

// FlowError wraps flow-related errors with additional context.
type FlowError struct {
	Op        string // Operation being performed (e.g., "FlowByID", "Save", "Delete")
	Namespace string
	FlowID    string
	Err       error
	Message   string
}

func (e *FlowError) Error() string {
	target := e.Namespace + "/" + e.FlowID

	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for flow %s: %s (%v)", e.Op, target, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for flow %s: %v", e.Op, target, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for flow errors.
func (e *FlowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewFlowError creates a new flow error with context.
func NewFlowError(op, namespace, id string, err error) *FlowError {
	return &FlowError{
		Op:        op,
		Namespace: namespace,
		FlowID:    id,
		Err:       err,
	}
}

// IsFlowNotFound checks if an error indicates a flow was not found.
func IsFlowNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsInvalidFlow checks if an error indicates a flow failed validation.
func IsInvalidFlow(err error) bool {
	return errors.Is(err, ErrInvalidFlow)
}
