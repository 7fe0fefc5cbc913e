// Package canvas provides the in-memory node graph edited by one flow-editing session.
package canvas

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
)

// NodePatch is a partial node update applied atomically by UpdateNode.
type NodePatch struct {
	Label *string
	// Config replaces the whole configuration when non-nil.
	Config   models.VariantConfig
	Position *models.Position
	// DetachLabel marks the label as manually edited, ending the label/id coupling for this node.
	DetachLabel bool
}

// Graph owns the nodes, edges, selection and editing state of a canvas.
// It is not safe for concurrent use; callers serialise access.
type Graph struct {
	logger    *slog.Logger
	tokens    TokenSource
	nodes     []*models.Node
	index     map[string]*models.Node
	edges     []models.Edge
	selected  string
	editing   string
	detached  map[string]bool
	listeners []Listener
}

// Option configures a Graph.
type Option func(*Graph)

// WithTokenSource overrides the id token generator.
func WithTokenSource(tokens TokenSource) Option {
	return func(g *Graph) {
		g.tokens = tokens
	}
}

// WithLogger sets the graph logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		logger:   slog.Default(),
		tokens:   ULIDTokens{},
		index:    make(map[string]*models.Node),
		detached: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// OnChange registers a listener invoked synchronously after every mutation.
func (g *Graph) OnChange(listener Listener) {
	g.listeners = append(g.listeners, listener)
}

func (g *Graph) emit(change Change) {
	for _, listener := range g.listeners {
		listener(change)
	}
}

// Token returns a fresh token from the graph's token source.
func (g *Graph) Token() string {
	return g.tokens.Token()
}

// NewNodeID returns "<variant>-<token>", redrawing until it is unused in this graph.
func (g *Graph) NewNodeID(variant models.Variant) string {
	for {
		id := fmt.Sprintf("%s-%s", variant, g.tokens.Token())
		if _, exists := g.index[id]; !exists {
			return id
		}
	}
}

// AddNode creates a node of the given variant. The config starts from the variant defaults
// overlaid with initialConfig.
func (g *Graph) AddNode(variant models.Variant, position models.Position, label string, initialConfig models.VariantConfig) (models.Node, error) {
	capabilities, ok := registry.Lookup(variant)
	if !ok {
		return models.Node{}, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}

	config := capabilities.DefaultConfig()
	for key, value := range initialConfig.Clone() {
		config[key] = value
	}

	node := &models.Node{
		ID:       g.NewNodeID(variant),
		Variant:  variant,
		Position: position,
		Data: models.NodeData{
			Label:  label,
			Config: config,
		},
	}

	g.nodes = append(g.nodes, node)
	g.index[node.ID] = node

	g.logger.Debug("node added", "node_id", node.ID, "variant", variant)
	g.emit(Change{Kind: ChangeNodeAdded, NodeID: node.ID})

	return node.Clone(), nil
}

// UpdateNode applies a partial update to a node.
func (g *Graph) UpdateNode(id string, patch NodePatch) (models.Node, error) {
	node, ok := g.index[id]
	if !ok {
		return models.Node{}, &NodeError{Op: "UpdateNode", NodeID: id, Err: ErrNodeNotFound}
	}

	if patch.Label != nil {
		node.Data.Label = *patch.Label
	}

	if patch.Config != nil {
		config := patch.Config.Clone()
		if registry.MustLookup(node.Variant).IsResizable {
			keepSize(config, node.Data.Config)
		}

		node.Data.Config = config
	}

	if patch.Position != nil {
		node.Position = *patch.Position
	}

	if patch.DetachLabel {
		g.detached[id] = true
	}

	g.emit(Change{Kind: ChangeNodeUpdated, NodeID: id})

	return node.Clone(), nil
}

// ResizeNote changes only config width/height of a resizable node.
func (g *Graph) ResizeNote(id string, width, height float64) (models.Node, error) {
	node, ok := g.index[id]
	if !ok {
		return models.Node{}, &NodeError{Op: "ResizeNote", NodeID: id, Err: ErrNodeNotFound}
	}

	if !registry.MustLookup(node.Variant).IsResizable {
		return models.Node{}, &NodeError{Op: "ResizeNote", NodeID: id, Err: ErrNotResizable}
	}

	if node.Data.Config == nil {
		node.Data.Config = models.VariantConfig{}
	}

	node.Data.Config[models.ConfigKeyWidth] = width
	node.Data.Config[models.ConfigKeyHeight] = height

	g.emit(Change{Kind: ChangeNodeUpdated, NodeID: id})

	return node.Clone(), nil
}

// keepSize carries the current dimensions over to a replacement config; only ResizeNote changes them.
func keepSize(config, current models.VariantConfig) {
	for _, key := range []string{models.ConfigKeyWidth, models.ConfigKeyHeight} {
		if value, ok := current[key]; ok {
			config[key] = value
		} else {
			delete(config, key)
		}
	}
}

// RemoveNode deletes a node and every edge whose source or target is the node.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.index[id]; !ok {
		return &NodeError{Op: "RemoveNode", NodeID: id, Err: ErrNodeNotFound}
	}

	g.nodes = slices.DeleteFunc(g.nodes, func(n *models.Node) bool { return n.ID == id })
	delete(g.index, id)
	delete(g.detached, id)

	g.edges = slices.DeleteFunc(g.edges, func(e models.Edge) bool {
		return e.Source == id || e.Target == id
	})

	if g.selected == id {
		g.selected = ""
	}

	if g.editing == id {
		g.editing = ""
	}

	g.logger.Debug("node removed", "node_id", id)
	g.emit(Change{Kind: ChangeNodeRemoved, NodeID: id})

	return nil
}

// Connect wires the output port of source to the input port of target.
// Connecting an already connected pair returns the existing edge.
func (g *Graph) Connect(source, target string) (models.Edge, error) {
	sourceNode, ok := g.index[source]
	if !ok {
		return models.Edge{}, &ConnectionError{Source: source, Target: target, Reason: ErrNodeNotFound}
	}

	targetNode, ok := g.index[target]
	if !ok {
		return models.Edge{}, &ConnectionError{Source: source, Target: target, Reason: ErrNodeNotFound}
	}

	if !registry.MustLookup(sourceNode.Variant).HasOutputPort {
		return models.Edge{}, &ConnectionError{Source: source, Target: target, Reason: ErrNoOutputPort}
	}

	if !registry.MustLookup(targetNode.Variant).HasInputPort {
		return models.Edge{}, &ConnectionError{Source: source, Target: target, Reason: ErrNoInputPort}
	}

	for _, edge := range g.edges {
		if edge.Source == source && edge.Target == target {
			return edge, nil
		}
	}

	edge := models.Edge{
		ID:     EdgeID(source, target),
		Source: source,
		Target: target,
	}

	g.edges = append(g.edges, edge)
	g.emit(Change{Kind: ChangeEdgeAdded, EdgeID: edge.ID})

	return edge, nil
}

// EdgeID builds the id of the edge between two nodes.
func EdgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// RemoveEdge deletes an edge.
func (g *Graph) RemoveEdge(id string) error {
	before := len(g.edges)
	g.edges = slices.DeleteFunc(g.edges, func(e models.Edge) bool { return e.ID == id })

	if len(g.edges) == before {
		return fmt.Errorf("failed to remove edge %s: %w", id, ErrEdgeNotFound)
	}

	g.emit(Change{Kind: ChangeEdgeRemoved, EdgeID: id})

	return nil
}

// SetSelected selects a node; an empty id clears the selection.
func (g *Graph) SetSelected(id string) error {
	if id != "" {
		if _, ok := g.index[id]; !ok {
			return &NodeError{Op: "SetSelected", NodeID: id, Err: ErrNodeNotFound}
		}
	}

	g.selected = id
	g.emit(Change{Kind: ChangeSelection, NodeID: id})

	return nil
}

// SetEditing opens a node in the detail overlay; an empty id closes it.
func (g *Graph) SetEditing(id string) error {
	if id != "" {
		if _, ok := g.index[id]; !ok {
			return &NodeError{Op: "SetEditing", NodeID: id, Err: ErrNodeNotFound}
		}
	}

	g.editing = id
	g.emit(Change{Kind: ChangeEditing, NodeID: id})

	return nil
}

// Selected returns the selected node id or "".
func (g *Graph) Selected() string {
	return g.selected
}

// Editing returns the edited node id or "".
func (g *Graph) Editing() string {
	return g.editing
}

// LabelDetached reports whether the node label was manually edited in this session.
func (g *Graph) LabelDetached(id string) bool {
	return g.detached[id]
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (models.Node, bool) {
	node, ok := g.index[id]
	if !ok {
		return models.Node{}, false
	}

	return node.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []models.Node {
	nodes := make([]models.Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node.Clone())
	}

	return nodes
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []models.Edge {
	return slices.Clone(g.edges)
}

// Load replaces the graph contents. Edges must reference loaded nodes.
// Duplicate node ids are not detected; the last one wins in lookups.
func (g *Graph) Load(nodes []models.Node, edges []models.Edge) error {
	index := make(map[string]*models.Node, len(nodes))
	list := make([]*models.Node, 0, len(nodes))

	for _, node := range nodes {
		if _, ok := registry.Lookup(node.Variant); !ok {
			return &NodeError{Op: "Load", NodeID: node.ID, Err: ErrUnknownVariant}
		}

		n := node.Clone()
		if n.Data.Config == nil {
			n.Data.Config = models.VariantConfig{}
		}

		list = append(list, &n)
		index[n.ID] = &n
	}

	for _, edge := range edges {
		if index[edge.Source] == nil || index[edge.Target] == nil {
			return fmt.Errorf("failed to load edge %s: %w", edge.ID, ErrDanglingEdge)
		}
	}

	g.nodes = list
	g.index = index
	g.edges = slices.Clone(edges)
	g.selected = ""
	g.editing = ""
	g.detached = make(map[string]bool)

	g.emit(Change{Kind: ChangeLoaded})

	return nil
}
