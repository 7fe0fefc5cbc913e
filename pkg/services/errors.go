// Package services provides the editing sessions behind the HTTP API.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/forms"
	"github.com/dukex/flowstudio/pkg/navigator"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/playground"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest      = errors.New("invalid request")
	ErrIdentityChange      = errors.New("flow id and namespace cannot change during a session")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrInvalidDirection    = errors.New("navigation direction must be previous or next")
	ErrFlowIdentityMissing = errors.New("flow id and namespace are required")

	// Not Found Errors (404 Not Found).
	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("no playground result for node")

	// Session lifecycle (410 Gone).
	ErrSessionClosed = errors.New("session closed")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	var validation *forms.ValidationError

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrIdentityChange) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrFlowIdentityMissing) ||
		errors.Is(err, canvas.ErrUnknownVariant) ||
		errors.Is(err, canvas.ErrNotResizable) ||
		errors.Is(err, canvas.ErrDanglingEdge) ||
		errors.Is(err, forms.ErrUnknownField) ||
		errors.Is(err, forms.ErrInvalidValue) ||
		errors.Is(err, persistence.ErrInvalidFlow) ||
		canvas.IsInvalidConnection(err) ||
		errors.As(err, &validation)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, navigator.ErrNoNeighbor) ||
		errors.Is(err, playground.ErrNodeNotFound) ||
		errors.Is(err, canvas.ErrEdgeNotFound) ||
		persistence.IsFlowNotFound(err) ||
		(canvas.IsNodeNotFound(err) && !canvas.IsInvalidConnection(err))
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return playground.IsRunInProgress(err)
}

// IsGoneError checks if an error concerns a closed session.
func IsGoneError(err error) bool {
	return errors.Is(err, ErrSessionClosed) || errors.Is(err, playground.ErrClosed)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
