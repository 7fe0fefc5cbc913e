// Package forms builds the schema-driven property forms of canvas nodes and binds them to node
// configuration through explicit drafts.
package forms

import (
	"errors"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
)

var (
	ErrUnknownField = errors.New("unknown form field")
	ErrInvalidValue = errors.New("invalid field value")
)

// Group places a field in a section of the properties panel.
type Group string

const (
	GroupMain     Group = "main"
	GroupCore     Group = "core"
	GroupOptional Group = "optional"
)

// Field is one rendered form field.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Control     Control  `json:"control"`
	Group       Group    `json:"group"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	HelpURL     string   `json:"help_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
}

// Form is the ordered field list of a node.
type Form struct {
	NodeID     string               `json:"node_id"`
	Variant    models.Variant       `json:"variant"`
	PluginType string               `json:"plugin_type,omitempty"`
	Metadata   *models.TaskMetadata `json:"metadata,omitempty"`
	Fields     []Field              `json:"fields"`
}

// Field returns the field with the given name.
func (f Form) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return Field{}, false
}

// Build renders the form of a node. Plugin-typed variants look up their metadata by the exact
// config "type"; an unknown type yields the generic fields only.
func Build(node models.Node, catalog registry.Catalog) Form {
	capabilities, ok := registry.Lookup(node.Variant)
	if !ok {
		return Form{NodeID: node.ID, Variant: node.Variant, Fields: []Field{}}
	}

	form := Form{
		NodeID:  node.ID,
		Variant: node.Variant,
	}

	switch capabilities.Form {
	case registry.FormPlugin:
		form.PluginType = node.PluginType()

		var metadata *models.TaskMetadata
		if catalog != nil && form.PluginType != "" {
			metadata, _ = catalog.Get(form.PluginType)
		}

		form.Metadata = metadata
		form.Fields = pluginFields(metadata, capabilities.IsTaskLike())
	case registry.FormInput:
		form.Fields = inputFields(inputType(node.Data.Config))
	case registry.FormOutput:
		form.Fields = outputFields()
	case registry.FormNote:
		form.Fields = noteFields()
	default:
		form.Fields = []Field{}
	}

	return form
}

func fieldFromProperty(property models.PropertySchema, group Group) Field {
	return Field{
		Name:        property.Name,
		Type:        property.Type,
		Control:     ControlFor(property),
		Group:       group,
		Required:    property.Required,
		Default:     property.Default,
		Options:     property.Options,
		Placeholder: property.Placeholder,
		HelpURL:     property.HelpURL,
		Description: property.Description,
		Format:      property.Format,
	}
}

func pluginFields(metadata *models.TaskMetadata, withCore bool) []Field {
	fields := []Field{
		{Name: models.ConfigKeyID, Type: models.PropertyTypeString, Control: ControlText, Group: GroupMain, Required: true},
		{Name: models.ConfigKeyType, Type: models.PropertyTypeString, Control: ControlText, Group: GroupMain, Required: true},
	}

	if metadata != nil {
		for _, property := range metadata.Properties {
			if property.Required && !isReserved(property.Name) {
				fields = append(fields, fieldFromProperty(property, GroupMain))
			}
		}
	}

	if withCore {
		for _, property := range coreProperties {
			fields = append(fields, fieldFromProperty(property, GroupCore))
		}
	}

	if metadata != nil {
		for _, property := range metadata.Properties {
			if !property.Required && !isReserved(property.Name) && !isCore(property.Name) {
				fields = append(fields, fieldFromProperty(property, GroupOptional))
			}
		}
	}

	return fields
}

func isReserved(name string) bool {
	return name == models.ConfigKeyID || name == models.ConfigKeyType
}

func noteFields() []Field {
	return []Field{
		{Name: models.ConfigKeyText, Type: models.PropertyTypeString, Control: ControlTextArea, Group: GroupMain},
		{
			Name:    models.ConfigKeyColor,
			Type:    models.PropertyTypeSelect,
			Control: ControlSelect,
			Group:   GroupMain,
			Default: registry.NoteDefaultColor,
			Options: []string{"yellow", "blue", "green", "pink", "purple", "gray"},
		},
	}
}
