package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/forms"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/playground"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		conflict   bool
		gone       bool
	}{
		{name: "identity change", err: ErrIdentityChange, validation: true},
		{name: "wrapped unknown variant", err: fmt.Errorf("add: %w", canvas.ErrUnknownVariant), validation: true},
		{name: "form validation", err: &forms.ValidationError{Fields: []forms.FieldError{{Field: "message"}}}, validation: true},
		{name: "invalid connection", err: &canvas.ConnectionError{Source: "a", Target: "b", Reason: canvas.ErrNoInputPort}, validation: true},
		{name: "connection to missing node", err: &canvas.ConnectionError{Source: "a", Target: "b", Reason: canvas.ErrNodeNotFound}, validation: true},
		{name: "missing node", err: &canvas.NodeError{Op: "RemoveNode", NodeID: "a", Err: canvas.ErrNodeNotFound}, notFound: true},
		{name: "missing flow", err: persistence.NewFlowError("FlowByID", "ns", "id", persistence.ErrFlowNotFound), notFound: true},
		{name: "session", err: ErrSessionNotFound, notFound: true},
		{name: "run in progress", err: fmt.Errorf("%w: task-1", playground.ErrRunInProgress), conflict: true},
		{name: "closed", err: ErrSessionClosed, gone: true},
		{name: "unclassified", err: errors.New("boom")},
		{name: "service error", err: NewValidationError("Open", "INVALID", "bad", ErrInvalidRequest), validation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			assert.Equal(t, tt.gone, IsGoneError(tt.err))
		})
	}
}
