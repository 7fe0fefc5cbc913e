// Package httprequest provides the HTTP request task plugin.
package httprequest

import (
	"fmt"
	"time"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/protocol"
)

// PluginType is the config "type" of HTTP request tasks.
const PluginType = "httprequest"

// Plugin describes the HTTP request task.
type Plugin struct{}

func NewPlugin() protocol.TaskPlugin {
	return &Plugin{}
}

func (p *Plugin) ID() string {
	return PluginType
}

func (p *Plugin) Name() string {
	return "HTTP Request"
}

func (p *Plugin) Description() string {
	return "Performs HTTP requests with retry logic"
}

func (p *Plugin) Metadata() *models.TaskMetadata {
	return &models.TaskMetadata{
		Type:             PluginType,
		DisplayName:      p.Name(),
		Description:      p.Description(),
		DocumentationURL: "https://docs.flowstudio.dev/plugins/httprequest",
		Properties: []models.PropertySchema{
			{
				Name:        "url",
				Type:        models.PropertyTypeString,
				Required:    true,
				Format:      "uri",
				Placeholder: "https://api.example.com/users",
				Description: "HTTP URL to request",
			},
			{
				Name:     "method",
				Type:     models.PropertyTypeSelect,
				Required: true,
				Default:  "GET",
				Options:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
			},
			{
				Name:        "headers",
				Type:        models.PropertyTypeObject,
				Description: "HTTP headers",
			},
			{
				Name:        "body",
				Type:        models.PropertyTypeString,
				Description: "Request body",
			},
			{
				Name:        "requestTimeout",
				Type:        models.PropertyTypeNumber,
				Default:     30.0,
				Description: "Request timeout in seconds",
			},
			{
				Name:        "followRedirects",
				Type:        models.PropertyTypeBoolean,
				Default:     true,
				Description: "Follow HTTP redirects",
			},
		},
		Outputs: []models.OutputSchema{
			{Name: "code", Type: "integer", Description: "Response status code"},
			{Name: "headers", Type: "object", Description: "Response headers"},
			{Name: "body", Type: "string", Description: "Response body"},
		},
		Metrics: []models.MetricSchema{
			{Name: "response.length", Type: "counter", Description: "Size of the response body"},
			{Name: "request.duration", Type: "timer", Description: "Duration of the request"},
		},
	}
}

func (p *Plugin) Sample(config models.VariantConfig) *models.PlaygroundExecutionData {
	method, ok := config["method"].(string)
	if !ok || method == "" {
		method = "GET"
	}

	body := `{"ok":true}`

	return &models.PlaygroundExecutionData{
		Status: models.PlaygroundStatusSuccess,
		Outputs: map[string]any{
			"code":    200.0,
			"headers": map[string]any{"Content-Type": "application/json"},
			"body":    body,
		},
		Metrics: []models.MetricValue{
			{Name: "response.length", Type: "counter", Value: float64(len(body))},
			{Name: "request.duration", Type: "timer", Value: 0.12},
		},
		Logs: []models.LogEntry{
			{Timestamp: time.Now().UTC(), Level: "info", Message: fmt.Sprintf("%s %v -> 200", method, config["url"])},
		},
	}
}
