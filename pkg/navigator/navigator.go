// Package navigator computes previous/next navigation of the node detail panel.
package navigator

import (
	"errors"

	"github.com/dukex/flowstudio/pkg/models"
)

// ErrNoNeighbor is returned when there is no node to move to.
var ErrNoNeighbor = errors.New("no neighbor in that direction")

// Neighbors returns the source of the first edge targeting the node and the target of the first
// edge leaving it, in edge-list order. Additional fan-in and fan-out edges are ignored.
func Neighbors(nodeID string, edges []models.Edge) (previous, next string) {
	for _, edge := range edges {
		if previous == "" && edge.Target == nodeID {
			previous = edge.Source
		}

		if next == "" && edge.Source == nodeID {
			next = edge.Target
		}

		if previous != "" && next != "" {
			break
		}
	}

	return previous, next
}

// Graph is the part of the canvas the navigator reads and drives.
type Graph interface {
	Editing() string
	Edges() []models.Edge
	SetEditing(id string) error
}

// Navigator moves the editing node along edges. It never changes selection or the graph.
type Navigator struct {
	graph Graph
}

func New(graph Graph) *Navigator {
	return &Navigator{graph: graph}
}

// Neighbors returns the neighbors of the node being edited.
func (n *Navigator) Neighbors() (previous, next string) {
	editing := n.graph.Editing()
	if editing == "" {
		return "", ""
	}

	return Neighbors(editing, n.graph.Edges())
}

// Previous opens the previous node and returns its id.
func (n *Navigator) Previous() (string, error) {
	previous, _ := n.Neighbors()

	return n.open(previous)
}

// Next opens the next node and returns its id.
func (n *Navigator) Next() (string, error) {
	_, next := n.Neighbors()

	return n.open(next)
}

func (n *Navigator) open(id string) (string, error) {
	if id == "" {
		return "", ErrNoNeighbor
	}

	if err := n.graph.SetEditing(id); err != nil {
		return "", err
	}

	return id, nil
}
