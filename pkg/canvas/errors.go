package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound indicates a node id does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates an edge id does not exist in the graph.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrUnknownVariant indicates a variant outside the capability table.
	ErrUnknownVariant = errors.New("unknown node variant")

	// ErrInvalidConnection indicates a rejected connect attempt.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrNoOutputPort indicates the source variant exposes no output port.
	ErrNoOutputPort = errors.New("source node has no output port")

	// ErrNoInputPort indicates the target variant exposes no input port.
	ErrNoInputPort = errors.New("target node has no input port")

	// ErrNotResizable indicates a resize on a variant that cannot be resized.
	ErrNotResizable = errors.New("node is not resizable")

	// ErrDanglingEdge indicates a loaded edge referencing a missing node.
	ErrDanglingEdge = errors.New("edge references a missing node")
)

// ConnectionError describes why a connect attempt was rejected.
type ConnectionError struct {
	Source string
	Target string
	Reason error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s from %s to %s: %v", ErrInvalidConnection, e.Source, e.Target, e.Reason)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrInvalidConnection, e.Reason}
}

// NodeError wraps node-related errors with the failing operation.
type NodeError struct {
	Op     string
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s operation failed for node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsInvalidConnection checks if an error is a rejected connection.
func IsInvalidConnection(err error) bool {
	return errors.Is(err, ErrInvalidConnection)
}

// IsNodeNotFound checks if an error indicates a missing node.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}
