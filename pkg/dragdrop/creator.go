package dragdrop

import (
	"log/slog"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
)

const configTokenLength = 6

// NodeAdder is the part of the graph the creator mutates.
type NodeAdder interface {
	AddNode(variant models.Variant, position models.Position, label string, initialConfig models.VariantConfig) (models.Node, error)
	Token() string
}

// Creator implements both creation paths: drop on the canvas and palette menu selection.
type Creator struct {
	graph  NodeAdder
	logger *slog.Logger
}

func NewCreator(graph NodeAdder, logger *slog.Logger) *Creator {
	return &Creator{
		graph:  graph,
		logger: logger,
	}
}

// DragOver reports whether a drop of this transfer would be accepted. It never mutates the graph.
func (c *Creator) DragOver(transfer Transfer) bool {
	payload, ok := DecodePayload(transfer)
	if !ok {
		return false
	}

	_, ok = registry.ParseVariant(payload.VariantType)

	return ok
}

// Drop creates a node at the canvas position under the screen point.
// A transfer without a recognised variantType is ignored and returns a nil node.
func (c *Creator) Drop(transfer Transfer, point Point, viewport Viewport) (*models.Node, error) {
	payload, ok := DecodePayload(transfer)
	if !ok {
		c.logger.Debug("drop ignored, no variant in transfer")

		return nil, nil
	}

	return c.create(payload, viewport.ToCanvas(point))
}

// Select creates a node from a palette menu entry at the default position.
func (c *Creator) Select(payload Payload) (*models.Node, error) {
	return c.create(payload, DefaultPosition)
}

func (c *Creator) create(payload Payload, position models.Position) (*models.Node, error) {
	variant, ok := registry.ParseVariant(payload.VariantType)
	if !ok {
		c.logger.Debug("drop ignored, unknown variant", "variant", payload.VariantType)

		return nil, nil
	}

	capabilities := registry.MustLookup(variant)
	label := payload.Label

	var config models.VariantConfig

	switch {
	case capabilities.HasPluginType:
		id := Slug(payload.Label) + "_" + shortToken(c.graph.Token())
		config = models.VariantConfig{
			models.ConfigKeyID:   id,
			models.ConfigKeyType: payload.PluginType,
		}

		if capabilities.IsTaskLike() {
			label = id
		}
	case capabilities.IsResizable:
		config = models.VariantConfig{
			models.ConfigKeyText:   registry.NoteDefaultText,
			models.ConfigKeyWidth:  registry.NoteDefaultWidth,
			models.ConfigKeyHeight: registry.NoteDefaultHeight,
		}
	}

	node, err := c.graph.AddNode(variant, position, label, config)
	if err != nil {
		return nil, err
	}

	c.logger.Info("node created", "node_id", node.ID, "variant", variant, "plugin_type", payload.PluginType)

	return &node, nil
}

func shortToken(token string) string {
	if len(token) <= configTokenLength {
		return token
	}

	return token[len(token)-configTokenLength:]
}
