// Package persistence provides the storage abstraction for flows saved from the canvas.
package persistence

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dukex/flowstudio/pkg/models"
)

type Persistence interface {
	Flows(ctx context.Context) ([]*models.Flow, error)
	FlowByID(ctx context.Context, namespace, id string) (*models.Flow, error)
	SaveFlow(ctx context.Context, flow *models.Flow) error
	DeleteFlow(ctx context.Context, namespace, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateFlow enforces the fields every backend requires before writing a flow.
func ValidateFlow(flow *models.Flow) error {
	if flow == nil {
		return NewFlowError("Save", "", "", ErrInvalidFlow)
	}

	if err := validate.Struct(flow.Properties); err != nil {
		return &FlowError{
			Op:        "Save",
			Namespace: flow.Properties.Namespace,
			FlowID:    flow.Properties.ID,
			Err:       ErrInvalidFlow,
			Message:   err.Error(),
		}
	}

	return nil
}

// Key returns the storage key of a flow.
func Key(namespace, id string) string {
	return fmt.Sprintf("%s/%s", namespace, id)
}
