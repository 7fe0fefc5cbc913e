package playground

import (
	"errors"
	"fmt"
)

var (
	ErrRunInProgress = errors.New("playground run already in progress for node")
	ErrNodeNotFound  = errors.New("node not found")
	ErrClosed        = errors.New("playground closed")
	ErrNoResult      = errors.New("executor returned no result")
)

// RunError wraps a failed playground run.
type RunError struct {
	NodeID string
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("playground run failed for node %s: %v", e.NodeID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// IsRunInProgress checks if a run was rejected because another one is in flight.
func IsRunInProgress(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}
