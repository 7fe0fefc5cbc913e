// Package transform provides the transform task plugin.
package transform

import (
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

const PluginType = "transform"

type Plugin struct{}

func NewPlugin() protocol.TaskPlugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return PluginType
}

func (p *Plugin) Name() string {
	return "Transform"
}

func (p *Plugin) Description() string {
	return "Transforms data using expressions and returns the result"
}

func (p *Plugin) Metadata() *models.TaskMetadata {
	return &models.TaskMetadata{
		Type:        PluginType,
		DisplayName: p.Name(),
		Description: p.Description(),
		Properties: []models.PropertySchema{
			{
				Name:        "expression",
				Type:        models.PropertyTypeString,
				Required:    true,
				Placeholder: `{"name": "{{ inputs.name }}"}`,
				Description: "Expression producing the transformed value",
			},
			{
				Name:        "outputFormat",
				Type:        models.PropertyTypeString,
				Default:     "json",
				Description: "Format of the transformed value",
			},
		},
		Outputs: []models.OutputSchema{
			{Name: "value", Type: "object", Description: "Transformed value"},
		},
	}
}

func (p *Plugin) Sample(config models.VariantConfig) *models.PlaygroundExecutionData {
	return &models.PlaygroundExecutionData{
		Status:  models.PlaygroundStatusSuccess,
		Outputs: map[string]any{"value": config["expression"]},
		Metrics: []models.MetricValue{},
		Logs: []models.LogEntry{
			{Timestamp: time.Now().UTC(), Level: "info", Message: "Expression evaluated"},
		},
	}
}
