// Package webhook provides the webhook trigger plugin.
package webhook

import (
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

const PluginType = "trigger:webhook"

type Plugin struct{}

func NewPlugin() protocol.TaskPlugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return PluginType
}

func (p *Plugin) Name() string {
	return "Webhook"
}

func (p *Plugin) Description() string {
	return "Starts the flow when an HTTP request hits the webhook path"
}

func (p *Plugin) Metadata() *models.TaskMetadata {
	return &models.TaskMetadata{
		Type:        PluginType,
		DisplayName: p.Name(),
		Description: p.Description(),
		Trigger:     true,
		Properties: []models.PropertySchema{
			{
				Name:        "key",
				Type:        models.PropertyTypeString,
				Required:    true,
				Placeholder: "my-secret-key",
				Description: "Secret key completing the webhook URL",
			},
			{
				Name:    "method",
				Type:    models.PropertyTypeSelect,
				Default: "POST",
				Options: []string{"GET", "POST", "PUT"},
			},
		},
		Outputs: []models.OutputSchema{
			{Name: "body", Type: "object", Description: "Request body"},
			{Name: "headers", Type: "object", Description: "Request headers"},
		},
	}
}
