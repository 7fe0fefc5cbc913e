// Package serializer converts between the canvas graph and the persisted flow representation.
package serializer

import (
	"errors"

	"github.com/dukex/flowstudio/pkg/models"
)

// ErrNilFlow is returned when decoding a missing flow.
var ErrNilFlow = errors.New("flow is nil")

// GraphReader is the read side of a canvas graph.
type GraphReader interface {
	Nodes() []models.Node
	Edges() []models.Edge
}

// ToFlow snapshots the graph and the flow properties. The result shares no memory with its inputs.
func ToFlow(graph GraphReader, properties models.FlowProperties) *models.Flow {
	return &models.Flow{
		Properties: properties.Clone(),
		Data:       Document(graph),
	}
}

// Document snapshots the graph as a flow document.
func Document(graph GraphReader) models.FlowDocument {
	nodes := graph.Nodes()
	if nodes == nil {
		nodes = []models.Node{}
	}

	edges := graph.Edges()
	if edges == nil {
		edges = []models.Edge{}
	}

	return models.FlowDocument{Nodes: nodes, Edges: edges}
}

// FromFlow is the inverse of ToFlow.
func FromFlow(flow *models.Flow) ([]models.Node, []models.Edge, models.FlowProperties, error) {
	if flow == nil {
		return nil, nil, models.FlowProperties{}, ErrNilFlow
	}

	nodes := make([]models.Node, 0, len(flow.Data.Nodes))
	for _, node := range flow.Data.Nodes {
		nodes = append(nodes, node.Clone())
	}

	edges := make([]models.Edge, len(flow.Data.Edges))
	copy(edges, flow.Data.Edges)

	return nodes, edges, flow.Properties.Clone(), nil
}
