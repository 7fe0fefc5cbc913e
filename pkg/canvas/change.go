package canvas

// ChangeKind identifies what a mutation did.
type ChangeKind string

const (
	ChangeNodeAdded   ChangeKind = "node_added"
	ChangeNodeUpdated ChangeKind = "node_updated"
	ChangeNodeRemoved ChangeKind = "node_removed"
	ChangeEdgeAdded   ChangeKind = "edge_added"
	ChangeEdgeRemoved ChangeKind = "edge_removed"
	ChangeLoaded      ChangeKind = "loaded"
	ChangeSelection   ChangeKind = "selection"
	ChangeEditing     ChangeKind = "editing"
)

// Change is delivered to OnChange listeners after every mutation.
type Change struct {
	Kind   ChangeKind
	NodeID string
	EdgeID string
}

// Persistent reports whether the change alters the serialized flow.
// Selection and editing are session state only.
func (c Change) Persistent() bool {
	return c.Kind != ChangeSelection && c.Kind != ChangeEditing && c.Kind != ChangeLoaded
}

// Listener receives change notifications.
type Listener func(Change)
