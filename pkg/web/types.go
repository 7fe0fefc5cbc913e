package web

import (
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/services"
)

// OpenSessionRequest represents the request body for opening an editing session.
type OpenSessionRequest struct {
	Namespace string `json:"namespace" validate:"required"`
	ID        string `json:"id"        validate:"required"`
}

// OpenSessionResponse reports whether the flow was new.
type OpenSessionResponse struct {
	Created bool           `json:"created"`
	State   services.State `json:"state"`
}

// AddNodeRequest represents the request body for adding a node to the canvas.
type AddNodeRequest struct {
	Variant  string               `json:"variant"  validate:"required"`
	Position models.Position      `json:"position"`
	Label    string               `json:"label"`
	Config   models.VariantConfig `json:"config"`
}

// UpdateNodeRequest is a partial node update. Config replaces the whole configuration.
type UpdateNodeRequest struct {
	Label    *string              `json:"label,omitempty"`
	Config   models.VariantConfig `json:"config,omitempty"`
	Position *models.Position     `json:"position,omitempty"`
}

type ResizeNoteRequest struct {
	Width  float64 `json:"width"  validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// SelectNodeRequest selects or opens a node. An empty node id clears the state.
type SelectNodeRequest struct {
	NodeID string `json:"node_id"`
}

type DragOverRequest struct {
	Transfer dragdrop.Transfer `json:"transfer"`
}

type DropRequest struct {
	Transfer dragdrop.Transfer `json:"transfer" validate:"required"`
	Point    dragdrop.Point    `json:"point"`
	Viewport dragdrop.Viewport `json:"viewport"`
}

type PaletteSelectRequest struct {
	VariantType string `json:"variantType" validate:"required"`
	Label       string `json:"label"`
	PluginType  string `json:"pluginType"`
}

// NodeResponse wraps a created node. A nil node means the gesture was ignored.
type NodeResponse struct {
	Node *models.Node `json:"node"`
}

// FormUpdateRequest is one properties panel submission.
type FormUpdateRequest struct {
	Label      *string                      `json:"label,omitempty"`
	Values     map[string]any               `json:"values,omitempty"`
	Inputs     map[string]string            `json:"inputs,omitempty"`
	References map[string]dragdrop.Transfer `json:"references,omitempty"`
	Strict     bool                         `json:"strict"`
}

type PreviewRequest struct {
	Expression string         `json:"expression" validate:"required"`
	Inputs     map[string]any `json:"inputs"`
}

// UpdatePropertiesRequest is a partial flow properties update. Maps are merged key by key.
type UpdatePropertiesRequest struct {
	ID          string              `json:"id,omitempty"`
	Namespace   string              `json:"namespace,omitempty"`
	Description *string             `json:"description,omitempty"`
	Disabled    *bool               `json:"disabled,omitempty"`
	WorkerGroup *string             `json:"worker_group,omitempty"`
	Concurrency *models.Concurrency `json:"concurrency,omitempty"`
	Labels      map[string]string   `json:"labels,omitempty"`
	Variables   map[string]any      `json:"variables,omitempty"`
	Retry       *models.Retry       `json:"retry,omitempty"`
	SLA         *models.SLA         `json:"sla,omitempty"`
}

// Patch converts the request to a properties patch for the session.
func (r UpdatePropertiesRequest) Patch() models.FlowProperties {
	patch := models.FlowProperties{
		ID:          r.ID,
		Namespace:   r.Namespace,
		Concurrency: r.Concurrency,
		Labels:      r.Labels,
		Variables:   r.Variables,
		Retry:       r.Retry,
		SLA:         r.SLA,
	}

	if r.Description != nil {
		patch.Description = *r.Description
	}

	if r.WorkerGroup != nil {
		patch.WorkerGroup = *r.WorkerGroup
	}

	return patch
}

type PreviewResponse struct {
	Value any `json:"value"`
}

type NavigateResponse struct {
	NodeID string `json:"node_id"`
}
