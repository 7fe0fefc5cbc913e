package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"dario.cat/mergo"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/events"
	"github.com/dukex/flowstudio/pkg/forms"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/navigator"
	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/serializer"
	"github.com/dukex/flowstudio/pkg/template"
)

// Navigation directions.
const (
	DirectionPrevious = "previous"
	DirectionNext     = "next"
)

// Session is one editing session of a flow. Graph access is serialized by the session mutex;
// playground runs execute outside of it.
type Session struct {
	id        string
	namespace string
	flowID    string
	logger    *slog.Logger
	catalog   registry.Catalog
	publish   func(ctx context.Context, event keyedEvent)

	mu         sync.Mutex
	closed     bool
	graph      *canvas.Graph
	properties models.FlowProperties
	saver      *serializer.AutoSaver
	creator    *dragdrop.Creator
	navigator  *navigator.Navigator
	simulator  *playground.Simulator
}

// State is the full client-side state of a session.
type State struct {
	SessionID string       `json:"session_id"`
	Flow      *models.Flow `json:"flow"`
	Selected  string       `json:"selected"`
	Editing   string       `json:"editing"`
	Previous  string       `json:"previous"`
	Next      string       `json:"next"`
}

// FormView is a rendered properties panel.
type FormView struct {
	Form          forms.Form           `json:"form"`
	Label         string               `json:"label"`
	LabelDetached bool                 `json:"label_detached"`
	Values        models.VariantConfig `json:"values"`
	Errors        []forms.FieldError   `json:"errors"`
}

// FormUpdate is one submission of a properties panel. Values are typed, Inputs are raw editor
// text parsed by field control, References are reference-token drops keyed by field.
type FormUpdate struct {
	Label      *string
	Values     map[string]any
	Inputs     map[string]string
	References map[string]dragdrop.Transfer
	// Strict rejects the update without committing when validation fails.
	Strict bool
}

func (s *Session) ID() string {
	return s.id
}

// Namespace and FlowID identify the edited flow for the whole session.
func (s *Session) Namespace() string {
	return s.namespace
}

func (s *Session) FlowID() string {
	return s.flowID
}

// lock acquires the session unless it is closed.
func (s *Session) lock() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	return nil
}

// State snapshots the session.
func (s *Session) State() (State, error) {
	if err := s.lock(); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	return s.state(), nil
}

func (s *Session) state() State {
	previous, next := s.navigator.Neighbors()

	return State{
		SessionID: s.id,
		Flow:      serializer.ToFlow(s.graph, s.properties),
		Selected:  s.graph.Selected(),
		Editing:   s.graph.Editing(),
		Previous:  previous,
		Next:      next,
	}
}

func (s *Session) AddNode(variant models.Variant, position models.Position, label string, config models.VariantConfig) (models.Node, error) {
	if err := s.lock(); err != nil {
		return models.Node{}, err
	}
	defer s.mu.Unlock()

	return s.graph.AddNode(variant, position, label, config)
}

func (s *Session) UpdateNode(id string, patch canvas.NodePatch) (models.Node, error) {
	if err := s.lock(); err != nil {
		return models.Node{}, err
	}
	defer s.mu.Unlock()

	return s.graph.UpdateNode(id, patch)
}

func (s *Session) ResizeNote(id string, width, height float64) (models.Node, error) {
	if err := s.lock(); err != nil {
		return models.Node{}, err
	}
	defer s.mu.Unlock()

	return s.graph.ResizeNote(id, width, height)
}

// RemoveNode deletes a node with its edges and forgets its playground result.
func (s *Session) RemoveNode(id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	err := s.graph.RemoveNode(id)
	if err != nil {
		return err
	}

	s.simulator.Cancel(id)
	s.simulator.Forget(id)

	return nil
}

func (s *Session) Connect(source, target string) (models.Edge, error) {
	if err := s.lock(); err != nil {
		return models.Edge{}, err
	}
	defer s.mu.Unlock()

	return s.graph.Connect(source, target)
}

func (s *Session) RemoveEdge(id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.graph.RemoveEdge(id)
}

// Select changes the selected node. An empty id clears the selection.
func (s *Session) Select(id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.graph.SetSelected(id)
}

// Edit opens the properties panel of a node. An empty id closes the panel.
func (s *Session) Edit(id string) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.graph.SetEditing(id)
}

// Navigate moves the properties panel to the previous or next node.
func (s *Session) Navigate(direction string) (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	switch direction {
	case DirectionPrevious:
		return s.navigator.Previous()
	case DirectionNext:
		return s.navigator.Next()
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
}

// DragOver reports whether a drop of the transfer would be accepted.
func (s *Session) DragOver(transfer dragdrop.Transfer) bool {
	return s.creator.DragOver(transfer)
}

// Drop creates a node from a drag transfer. A nil node means the drop was ignored.
func (s *Session) Drop(transfer dragdrop.Transfer, point dragdrop.Point, viewport dragdrop.Viewport) (*models.Node, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return s.creator.Drop(transfer, point, viewport)
}

// PaletteSelect creates a node from a palette entry at the default position.
func (s *Session) PaletteSelect(payload dragdrop.Payload) (*models.Node, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return s.creator.Select(payload)
}

// Form renders the properties panel of a node with advisory validation errors.
func (s *Session) Form(nodeID string) (FormView, error) {
	if err := s.lock(); err != nil {
		return FormView{}, err
	}
	defer s.mu.Unlock()

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return FormView{}, &canvas.NodeError{Op: "Form", NodeID: nodeID, Err: canvas.ErrNodeNotFound}
	}

	form := forms.Build(node, s.catalog)

	return FormView{
		Form:          form,
		Label:         node.Data.Label,
		LabelDetached: s.graph.LabelDetached(nodeID),
		Values:        node.Data.Config,
		Errors:        fieldErrors(forms.ValidateConfig(form, node.Data.Config)),
	}, nil
}

// ApplyForm binds a form submission to a draft and commits it with a single graph update.
// A submitted "type" selects the form the other fields are checked against.
func (s *Session) ApplyForm(nodeID string, update FormUpdate) (FormView, error) {
	if err := s.lock(); err != nil {
		return FormView{}, err
	}
	defer s.mu.Unlock()

	node, ok := s.graph.Node(nodeID)
	if !ok {
		return FormView{}, &canvas.NodeError{Op: "ApplyForm", NodeID: nodeID, Err: canvas.ErrNodeNotFound}
	}

	target := node.Clone()
	if target.Data.Config == nil {
		target.Data.Config = models.VariantConfig{}
	}

	if pluginType, ok := update.Values[models.ConfigKeyType]; ok {
		target.Data.Config[models.ConfigKeyType] = pluginType
	}

	draft := forms.NewDraft(node, forms.Build(target, s.catalog), s.graph.LabelDetached(nodeID))

	err := applyUpdate(draft, update)
	if err != nil {
		return FormView{}, err
	}

	validation := draft.Validate()
	if validation != nil && update.Strict {
		return FormView{}, validation
	}

	if draft.Dirty() {
		node, err = draft.Commit(s.graph)
		if err != nil {
			return FormView{}, err
		}
	}

	return FormView{
		Form:          draft.Form(),
		Label:         node.Data.Label,
		LabelDetached: s.graph.LabelDetached(nodeID),
		Values:        node.Data.Config,
		Errors:        fieldErrors(validation),
	}, nil
}

func applyUpdate(draft *forms.Draft, update FormUpdate) error {
	if update.Label != nil {
		draft.SetLabel(*update.Label)
	}

	// "id" goes first so a label still mirroring the old id follows it.
	if id, ok := update.Values[models.ConfigKeyID]; ok {
		if err := draft.Set(models.ConfigKeyID, id); err != nil {
			return err
		}
	}

	for name, value := range update.Values {
		if name == models.ConfigKeyID {
			continue
		}

		if err := draft.Set(name, value); err != nil {
			return err
		}
	}

	for name, raw := range update.Inputs {
		if err := draft.SetInput(name, raw); err != nil {
			return err
		}
	}

	for name, transfer := range update.References {
		if err := draft.DropReference(name, transfer); err != nil {
			return err
		}
	}

	return nil
}

func fieldErrors(err error) []forms.FieldError {
	var validation *forms.ValidationError
	if !errors.As(err, &validation) {
		return []forms.FieldError{}
	}

	return validation.Fields
}

// Properties returns a copy of the flow properties.
func (s *Session) Properties() (models.FlowProperties, error) {
	if err := s.lock(); err != nil {
		return models.FlowProperties{}, err
	}
	defer s.mu.Unlock()

	return s.properties.Clone(), nil
}

// UpdateProperties merges the non-empty fields of patch into the flow properties and saves.
// Label and variable maps are merged key by key. A nil disabled keeps the current value.
func (s *Session) UpdateProperties(ctx context.Context, patch models.FlowProperties, disabled *bool) (models.FlowProperties, error) {
	if err := s.lock(); err != nil {
		return models.FlowProperties{}, err
	}
	defer s.mu.Unlock()

	if (patch.ID != "" && patch.ID != s.properties.ID) ||
		(patch.Namespace != "" && patch.Namespace != s.properties.Namespace) {
		return models.FlowProperties{}, ErrIdentityChange
	}

	updated := s.properties.Clone()

	err := mergo.Merge(&updated, patch.Clone(), mergo.WithOverride)
	if err != nil {
		return models.FlowProperties{}, fmt.Errorf("failed to merge flow properties: %w", err)
	}

	if disabled != nil {
		updated.Disabled = *disabled
	}

	s.properties = updated

	err = s.saver.SaveNow(ctx)
	if err != nil {
		return s.properties.Clone(), err
	}

	return s.properties.Clone(), nil
}

// Tokens lists the reference tokens offered to a node.
func (s *Session) Tokens(nodeID string) ([]template.Token, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if _, ok := s.graph.Node(nodeID); !ok {
		return nil, &canvas.NodeError{Op: "Tokens", NodeID: nodeID, Err: canvas.ErrNodeNotFound}
	}

	return template.AvailableTokens(nodeID, s.graph.Nodes(), s.graph.Edges(), s.properties.Variables, s.catalog), nil
}

// InputUsages maps flow input ids to the nodes referencing them.
func (s *Session) InputUsages() (map[string][]string, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return template.InputUsages(s.graph.Nodes()), nil
}

// Preview renders an expression against the stored playground outputs, the flow variables and
// the given input values.
func (s *Session) Preview(expression string, inputs map[string]any) (any, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}

	scope := template.Scope{
		Outputs:   map[string]map[string]any{},
		Inputs:    inputs,
		Vars:      s.properties.Clone().Variables,
		Execution: map[string]any{"id": "playground-" + s.id, "state": "RUNNING"},
		Flow:      map[string]any{"id": s.properties.ID, "namespace": s.properties.Namespace},
	}

	for _, node := range s.graph.Nodes() {
		if result, ok := s.simulator.Result(node.ID); ok && node.ConfigID() != "" {
			scope.Outputs[node.ConfigID()] = result.Outputs
		}
	}

	s.mu.Unlock()

	return template.Preview(expression, scope)
}

// Export encodes the flow as "json" or "yaml".
func (s *Session) Export(format string) ([]byte, string, error) {
	codec, err := serializer.CodecFor(format)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	if err := s.lock(); err != nil {
		return nil, "", err
	}

	flow := serializer.ToFlow(s.graph, s.properties)
	s.mu.Unlock()

	data, err := codec.Marshal(flow)
	if err != nil {
		return nil, "", err
	}

	return data, codec.ContentType(), nil
}

// Import replaces the graph and properties with a decoded flow and saves it. The flow keeps the
// identity of the session.
func (s *Session) Import(ctx context.Context, data []byte, format string) (State, error) {
	codec, err := serializer.CodecFor(format)
	if err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	flow, err := codec.Unmarshal(data)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	nodes, edges, properties, err := serializer.FromFlow(flow)
	if err != nil {
		return State{}, err
	}

	if err := s.lock(); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	properties.ID = s.properties.ID
	properties.Namespace = s.properties.Namespace

	err = mergo.Merge(&properties, models.DefaultFlowProperties())
	if err != nil {
		return State{}, fmt.Errorf("failed to fill flow properties: %w", err)
	}

	err = s.graph.Load(nodes, edges)
	if err != nil {
		return State{}, err
	}

	s.properties = properties

	err = s.saver.SaveNow(ctx)
	if err != nil {
		return s.state(), err
	}

	return s.state(), nil
}

// Save writes the current state immediately.
func (s *Session) Save(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	return s.saver.SaveNow(ctx)
}

// Run executes a node in the playground and publishes the outcome.
func (s *Session) Run(ctx context.Context, nodeID string) (*models.PlaygroundExecutionData, error) {
	result, err := s.simulator.Run(ctx, nodeID)
	if err != nil {
		var runErr *playground.RunError
		if !errors.As(err, &runErr) {
			return nil, err
		}

		event := events.PlaygroundRunFailed{
			BaseEvent: s.baseEvent(events.PlaygroundRunFailedEvent),
			NodeID:    nodeID,
			Error:     err.Error(),
		}
		s.publish(ctx, event)

		return nil, err
	}

	event := events.PlaygroundRunFinished{
		BaseEvent: s.baseEvent(events.PlaygroundRunFinishedEvent),
		NodeID:    nodeID,
		Status:    result.Status,
		Duration:  result.Duration,
	}
	s.publish(ctx, event)

	return result, nil
}

// Result returns the stored playground result of a node.
func (s *Session) Result(nodeID string) (*models.PlaygroundExecutionData, error) {
	result, ok := s.simulator.Result(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, nodeID)
	}

	return result, nil
}

// IsRunning reports whether a playground run of the node is in flight.
func (s *Session) IsRunning(nodeID string) bool {
	return s.simulator.IsRunning(nodeID)
}

// CancelRun aborts the in-flight run of a node.
func (s *Session) CancelRun(nodeID string) bool {
	return s.simulator.Cancel(nodeID)
}

func (s *Session) baseEvent(eventType events.EventType) events.BaseEvent {
	base := events.NewBaseEvent(eventType, s.namespace, s.flowID)
	base.SessionID = s.id

	return base
}

// node is the playground lookup; it runs outside of the session lock.
func (s *Session) node(id string) (models.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.graph.Node(id)
}

// close flushes a pending save, cancels playground runs and rejects further use.
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.simulator.Close()

	err := s.saver.Flush(ctx)
	s.saver.Stop()

	return err
}

// discard closes the session without saving.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.simulator.Close()
	s.saver.Stop()
}
