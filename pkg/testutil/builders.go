// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/dukex/flowstudio/pkg/models"
)

// CreateTestNode creates a test task node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:       "task-" + uuid.New().String(),
		Variant:  models.VariantTask,
		Position: models.Position{X: 100, Y: 200},
		Data: models.NodeData{
			Label:  "log_test",
			Config: models.VariantConfig{"id": "log_test", "type": "log", "message": "test", "level": "info"},
		},
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithVariant sets the node variant.
func WithVariant(variant models.Variant) func(*models.Node) {
	return func(n *models.Node) {
		n.Variant = variant
	}
}

// WithLabel sets the node label.
func WithLabel(label string) func(*models.Node) {
	return func(n *models.Node) {
		n.Data.Label = label
	}
}

// WithConfig sets the node configuration.
func WithConfig(config models.VariantConfig) func(*models.Node) {
	return func(n *models.Node) {
		n.Data.Config = config
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// CreateTestFlow creates an empty flow in the default namespace.
func CreateTestFlow(overrides ...func(*models.Flow)) *models.Flow {
	properties := models.DefaultFlowProperties()
	properties.ID = "flow_" + uuid.New().String()[:8]
	properties.Description = "A flow for testing"
	properties.Variables["env"] = "test"

	flow := &models.Flow{
		Properties: properties,
		Data: models.FlowDocument{
			Nodes: []models.Node{},
			Edges: []models.Edge{},
		},
	}

	for _, override := range overrides {
		override(flow)
	}

	return flow
}

// WithFlowID sets the flow namespace and id.
func WithFlowID(namespace, id string) func(*models.Flow) {
	return func(f *models.Flow) {
		f.Properties.Namespace = namespace
		f.Properties.ID = id
	}
}

// CreateTestFlowWithNodes creates a flow with an input wired into nothing and two connected tasks.
func CreateTestFlowWithNodes(overrides ...func(*models.Flow)) *models.Flow {
	flow := CreateTestFlow(overrides...)

	input := CreateTestNode(
		WithID("input-1"),
		WithVariant(models.VariantInput),
		WithLabel("user"),
		WithConfig(models.VariantConfig{"id": "user", "type": "STRING"}),
	)
	fetch := CreateTestNode(
		WithID("task-1"),
		WithLabel("fetch"),
		WithConfig(models.VariantConfig{"id": "fetch", "type": "httprequest", "uri": "https://example.com", "method": "GET"}),
	)
	say := CreateTestNode(
		WithID("task-2"),
		WithLabel("say"),
		WithPosition(300, 200),
		WithConfig(models.VariantConfig{"id": "say", "type": "log", "message": "{{ outputs.fetch.body }}"}),
	)

	flow.Data.Nodes = []models.Node{input, fetch, say}
	flow.Data.Edges = []models.Edge{{ID: "e-task-1-task-2", Source: "task-1", Target: "task-2"}}

	return flow
}
