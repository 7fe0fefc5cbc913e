// Package models defines the core domain models for the flow canvas.
package models

// Variant is the closed set of node kinds a canvas can hold.
type Variant string

const (
	VariantTask         Variant = "task"
	VariantTrigger      Variant = "trigger"
	VariantInput        Variant = "input"
	VariantOutput       Variant = "output"
	VariantErrorHandler Variant = "error"
	VariantFinally      Variant = "finally"
	VariantNote         Variant = "note"
)

// Variants lists every variant in palette order.
func Variants() []Variant {
	return []Variant{
		VariantTask,
		VariantTrigger,
		VariantInput,
		VariantOutput,
		VariantErrorHandler,
		VariantFinally,
		VariantNote,
	}
}

// Well-known configuration keys.
const (
	ConfigKeyID     = "id"
	ConfigKeyType   = "type"
	ConfigKeyText   = "text"
	ConfigKeyColor  = "color"
	ConfigKeyWidth  = "width"
	ConfigKeyHeight = "height"
)

// VariantConfig is the open key/value configuration of a node. Recognized keys depend on the variant.
type VariantConfig map[string]any

// Position is a point in canvas space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData holds the display label and configuration of a node.
type NodeData struct {
	Label  string        `json:"label"  yaml:"label"`
	Config VariantConfig `json:"config" yaml:"config"`
}

// Node represents a node instance on the canvas.
type Node struct {
	ID       string   `json:"id"       yaml:"id"`
	Variant  Variant  `json:"variant"  yaml:"variant"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data"     yaml:"data"`
}

// Edge connects the output port of Source to the input port of Target.
type Edge struct {
	ID     string `json:"id"     yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// ConfigID returns the "id" entry of the node configuration.
func (n Node) ConfigID() string {
	id, _ := n.Data.Config[ConfigKeyID].(string)

	return id
}

// PluginType returns the "type" entry of the node configuration.
func (n Node) PluginType() string {
	pluginType, _ := n.Data.Config[ConfigKeyType].(string)

	return pluginType
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data.Config = n.Data.Config.Clone()

	return n
}

// Clone returns a deep copy of the configuration.
func (c VariantConfig) Clone() VariantConfig {
	if c == nil {
		return nil
	}

	out := make(VariantConfig, len(c))
	for key, value := range c {
		out[key] = CloneValue(value)
	}

	return out
}

// CloneValue deep copies JSON-like values (maps, slices and scalars).
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = CloneValue(item)
		}

		return out
	case VariantConfig:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = CloneValue(item)
		}

		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)

		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for key, item := range v {
			out[key] = item
		}

		return out
	default:
		return v
	}
}
