package registry

import "github.com/dukex/flowstudio/pkg/models"

// Note defaults seeded on creation.
const (
	NoteDefaultText   = "Double click to edit me. Guide"
	NoteDefaultColor  = "yellow"
	NoteDefaultWidth  = 240.0
	NoteDefaultHeight = 120.0
)

// FormKind selects the property form schema of a variant.
type FormKind string

const (
	FormPlugin FormKind = "plugin"
	FormInput  FormKind = "input"
	FormOutput FormKind = "output"
	FormNote   FormKind = "note"
)

// Capabilities describes what a node variant can do. Every variant-dependent decision
// (ports, resize, form schema, drop seeding) is taken from this table.
type Capabilities struct {
	Variant       models.Variant
	DisplayName   string
	HasInputPort  bool
	HasOutputPort bool
	IsResizable   bool
	// HasPluginType marks variants whose config carries a plugin "type" resolved against the catalog.
	HasPluginType bool
	Form          FormKind
	DefaultConfig func() models.VariantConfig
}

// IsTaskLike reports whether the variant is Task, ErrorHandler or Finally.
func (c Capabilities) IsTaskLike() bool {
	return c.HasInputPort && c.HasOutputPort
}

func pluginConfig() models.VariantConfig {
	return models.VariantConfig{
		models.ConfigKeyID:   "",
		models.ConfigKeyType: "",
	}
}

var variants = map[models.Variant]Capabilities{
	models.VariantTask: {
		Variant:       models.VariantTask,
		DisplayName:   "Task",
		HasInputPort:  true,
		HasOutputPort: true,
		HasPluginType: true,
		Form:          FormPlugin,
		DefaultConfig: pluginConfig,
	},
	models.VariantErrorHandler: {
		Variant:       models.VariantErrorHandler,
		DisplayName:   "Error handler",
		HasInputPort:  true,
		HasOutputPort: true,
		HasPluginType: true,
		Form:          FormPlugin,
		DefaultConfig: pluginConfig,
	},
	models.VariantFinally: {
		Variant:       models.VariantFinally,
		DisplayName:   "Finally",
		HasInputPort:  true,
		HasOutputPort: true,
		HasPluginType: true,
		Form:          FormPlugin,
		DefaultConfig: pluginConfig,
	},
	models.VariantTrigger: {
		Variant:       models.VariantTrigger,
		DisplayName:   "Trigger",
		HasPluginType: true,
		Form:          FormPlugin,
		DefaultConfig: pluginConfig,
	},
	models.VariantInput: {
		Variant:     models.VariantInput,
		DisplayName: "Input",
		Form:        FormInput,
		DefaultConfig: func() models.VariantConfig {
			return models.VariantConfig{
				models.ConfigKeyID:   "",
				models.ConfigKeyType: "STRING",
				"description":        "",
				"displayName":        "",
				"required":           false,
			}
		},
	},
	models.VariantOutput: {
		Variant:     models.VariantOutput,
		DisplayName: "Output",
		Form:        FormOutput,
		DefaultConfig: func() models.VariantConfig {
			return models.VariantConfig{
				models.ConfigKeyID:   "",
				models.ConfigKeyType: "STRING",
				"value":              "",
				"description":        "",
				"displayName":        "",
				"required":           false,
			}
		},
	},
	models.VariantNote: {
		Variant:     models.VariantNote,
		DisplayName: "Note",
		IsResizable: true,
		Form:        FormNote,
		DefaultConfig: func() models.VariantConfig {
			return models.VariantConfig{
				models.ConfigKeyText:   "",
				models.ConfigKeyColor:  NoteDefaultColor,
				models.ConfigKeyWidth:  NoteDefaultWidth,
				models.ConfigKeyHeight: NoteDefaultHeight,
			}
		},
	},
}

// Lookup returns the capabilities of a variant.
func Lookup(variant models.Variant) (Capabilities, bool) {
	capabilities, ok := variants[variant]

	return capabilities, ok
}

// MustLookup is Lookup for variants known to be valid.
func MustLookup(variant models.Variant) Capabilities {
	capabilities, ok := variants[variant]
	if !ok {
		panic("unknown node variant: " + string(variant))
	}

	return capabilities
}

// ParseVariant converts a transfer or request string into a known variant.
func ParseVariant(value string) (models.Variant, bool) {
	variant := models.Variant(value)
	_, ok := variants[variant]

	return variant, ok
}
