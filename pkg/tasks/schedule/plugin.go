// Package schedule provides the schedule trigger plugin.
package schedule

import (
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

const PluginType = "trigger:scheduler"

type Plugin struct{}

func NewPlugin() protocol.TaskPlugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return PluginType
}

func (p *Plugin) Name() string {
	return "Schedule"
}

func (p *Plugin) Description() string {
	return "Starts the flow on a cron schedule"
}

func (p *Plugin) Metadata() *models.TaskMetadata {
	return &models.TaskMetadata{
		Type:        PluginType,
		DisplayName: p.Name(),
		Description: p.Description(),
		Trigger:     true,
		Properties: []models.PropertySchema{
			{
				Name:        "cron",
				Type:        models.PropertyTypeString,
				Required:    true,
				Format:      "cron",
				Placeholder: "0 9 * * 1-5",
				Description: "Standard five-field cron expression",
			},
			{
				Name:        "timezone",
				Type:        models.PropertyTypeString,
				Default:     "UTC",
				Description: "Timezone used to evaluate the expression",
			},
		},
		Outputs: []models.OutputSchema{
			{Name: "date", Type: "string", Description: "Scheduled date of the execution"},
		},
	}
}
