// Package protocol defines the interfaces and contracts for pluggable task types.
package protocol

import (
	"github.com/dukex/flowstudio/pkg/models"
)

// TaskPlugin describes a plugin type that can be placed on the canvas.
type TaskPlugin interface {
	// ID returns the plugin type string stored in a node's config "type"
	ID() string

	// Name returns the human-readable name for this plugin
	Name() string

	// Description returns a description of what this plugin does
	Description() string

	// Metadata returns the property, output and metric schema of the plugin
	Metadata() *models.TaskMetadata
}

// PlaygroundSampler is implemented by plugins that can fake a playground result for a node configuration.
type PlaygroundSampler interface {
	Sample(config models.VariantConfig) *models.PlaygroundExecutionData
}
