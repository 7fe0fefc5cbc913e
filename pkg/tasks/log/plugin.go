// Package log provides the log task plugin.
package log

import (
	"fmt"
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

// PluginType is the config "type" of log tasks.
const PluginType = "log"

var levels = []string{"debug", "info", "warn", "error"}

// Plugin describes the log task.
type Plugin struct{}

// NewPlugin creates a new plugin instance.
func NewPlugin() protocol.TaskPlugin {
	return &Plugin{}
}

// ID returns the plugin type.
func (p *Plugin) ID() string {
	return PluginType
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "Log"
}

// Description returns the plugin description.
func (p *Plugin) Description() string {
	return "Logs messages at different levels (debug, info, warn, error) with expression support for dynamic content"
}

// Metadata returns the catalog entry for log tasks.
func (p *Plugin) Metadata() *models.TaskMetadata {
	return &models.TaskMetadata{
		Type:             PluginType,
		DisplayName:      p.Name(),
		Description:      p.Description(),
		DocumentationURL: "https://docs.flowstudio.dev/plugins/log",
		Properties: []models.PropertySchema{
			{
				Name:        "message",
				Type:        models.PropertyTypeString,
				Required:    true,
				Placeholder: "Processing user {{ inputs.user }}",
				Description: "Message to log. Supports expressions.",
			},
			{
				Name:        "level",
				Type:        models.PropertyTypeSelect,
				Default:     "info",
				Options:     levels,
				Description: "Log level for the message",
			},
		},
		Outputs: []models.OutputSchema{
			{Name: "message", Type: "string", Description: "The logged message"},
			{Name: "level", Type: "string", Description: "The log level used"},
		},
		Metrics: []models.MetricSchema{
			{Name: "lines", Type: "counter", Description: "Number of logged lines"},
		},
	}
}

// Sample fakes a playground result echoing the configured message.
func (p *Plugin) Sample(config models.VariantConfig) *models.PlaygroundExecutionData {
	message := fmt.Sprintf("%v", config["message"])

	level, ok := config["level"].(string)
	if !ok || level == "" {
		level = "info"
	}

	return &models.PlaygroundExecutionData{
		Status: models.PlaygroundStatusSuccess,
		Outputs: map[string]any{
			"message": message,
			"level":   level,
		},
		Metrics: []models.MetricValue{{Name: "lines", Type: "counter", Value: 1}},
		Logs: []models.LogEntry{
			{Timestamp: time.Now().UTC(), Level: level, Message: message},
		},
	}
}
