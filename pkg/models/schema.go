package models

// Property types understood by the properties panel.
const (
	PropertyTypeString  = "string"
	PropertyTypeNumber  = "number"
	PropertyTypeInteger = "integer"
	PropertyTypeBoolean = "boolean"
	PropertyTypeSelect  = "select"
	PropertyTypeObject  = "object"
	PropertyTypeArray   = "array"
)

// PropertySchema describes one configurable property of a plugin.
type PropertySchema struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpURL     string   `json:"help_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"` // e.g. "cron", "uri", "duration"
}

// OutputSchema describes one output a plugin produces.
type OutputSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// MetricSchema describes one metric a plugin emits.
type MetricSchema struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// TaskMetadata is the catalog entry of a plugin type.
type TaskMetadata struct {
	Type             string           `json:"type"`
	DisplayName      string           `json:"display_name"`
	Description      string           `json:"description"`
	DocumentationURL string           `json:"documentation_url,omitempty"`
	Trigger          bool             `json:"trigger,omitempty"`
	Properties       []PropertySchema `json:"properties"`
	Outputs          []OutputSchema   `json:"outputs"`
	Metrics          []MetricSchema   `json:"metrics"`
}

// Property returns the property with the given name.
func (m *TaskMetadata) Property(name string) (PropertySchema, bool) {
	if m == nil {
		return PropertySchema{}, false
	}

	for _, property := range m.Properties {
		if property.Name == name {
			return property, true
		}
	}

	return PropertySchema{}, false
}
