package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/eventbus"
	"github.com/dukex/flowstudio/pkg/events"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/navigator"
	"github.com/dukex/flowstudio/pkg/otelhelper"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/serializer"
)

type keyedEvent interface {
	eventbus.Event
	Key() string
}

// Sessions owns the open editing sessions of the process.
type Sessions struct {
	logger   *slog.Logger
	store    persistence.Persistence
	bus      eventbus.EventPublisher
	catalog  registry.Catalog
	executor playground.Executor
	tracer   trace.Tracer
	tokens   canvas.TokenSource
	debounce time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures Sessions.
type Option func(*Sessions)

// WithDebounce coalesces auto-saves of bursts of changes.
func WithDebounce(d time.Duration) Option {
	return func(s *Sessions) {
		s.debounce = d
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Sessions) {
		s.tracer = tracer
	}
}

// WithTokenSource sets the id token source of new graphs.
func WithTokenSource(tokens canvas.TokenSource) Option {
	return func(s *Sessions) {
		s.tokens = tokens
	}
}

// NewSessions creates the session manager. A nil bus disables event publishing.
func NewSessions(
	logger *slog.Logger,
	store persistence.Persistence,
	bus eventbus.EventPublisher,
	catalog registry.Catalog,
	executor playground.Executor,
	opts ...Option,
) *Sessions {
	s := &Sessions{
		logger:   logger,
		store:    store,
		bus:      bus,
		catalog:  catalog,
		executor: executor,
		tracer:   otelhelper.NoopTracer(),
		tokens:   canvas.ULIDTokens{},
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HealthCheck checks the health of the persistence layer.
func (s *Sessions) HealthCheck(ctx context.Context) (string, bool) {
	if s.store == nil {
		return "Persistence layer not initialized", false
	}

	err := s.store.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Open starts an editing session of a flow. A flow that is not stored yet starts empty; created
// reports that case. Nothing is written until the first persistent change.
func (s *Sessions) Open(ctx context.Context, namespace, flowID string) (session *Session, created bool, err error) {
	if namespace == "" || flowID == "" {
		return nil, false, ErrFlowIdentityMissing
	}

	flow, err := s.store.FlowByID(ctx, namespace, flowID)

	switch {
	case persistence.IsFlowNotFound(err):
		created = true
		flow = &models.Flow{Properties: models.FlowProperties{ID: flowID, Namespace: namespace}}
	case err != nil:
		return nil, false, fmt.Errorf("failed to load flow: %w", err)
	}

	nodes, edges, properties, err := serializer.FromFlow(flow)
	if err != nil {
		return nil, false, err
	}

	err = mergo.Merge(&properties, models.DefaultFlowProperties())
	if err != nil {
		return nil, false, fmt.Errorf("failed to fill flow properties: %w", err)
	}

	id := uuid.New().String()
	logger := s.logger.With("session_id", id, "namespace", namespace, "flow_id", flowID)

	graph := canvas.NewGraph(canvas.WithLogger(logger), canvas.WithTokenSource(s.tokens))

	err = graph.Load(nodes, edges)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load flow graph: %w", err)
	}

	session = &Session{
		id:         id,
		namespace:  namespace,
		flowID:     flowID,
		logger:     logger,
		catalog:    s.catalog,
		publish:    s.publish,
		graph:      graph,
		properties: properties,
		creator:    dragdrop.NewCreator(graph, logger),
		navigator:  navigator.New(graph),
	}

	session.saver = serializer.NewAutoSaver(
		logger,
		graph,
		func() models.FlowProperties { return session.properties },
		s.saveFunc(session),
		serializer.WithDebounce(s.debounce),
		serializer.WithLocker(&session.mu),
	)
	session.simulator = playground.NewSimulator(logger, s.executor, session.node, playground.WithTracer(s.tracer))

	graph.OnChange(session.saver.OnChange)

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.publish(ctx, events.SessionOpened{
		BaseEvent: session.baseEvent(events.SessionOpenedEvent),
		Created:   created,
	})

	logger.InfoContext(ctx, "editing session opened", "created", created, "nodes", len(nodes))

	return session, created, nil
}

func (s *Sessions) saveFunc(session *Session) serializer.SaveFunc {
	return func(ctx context.Context, data models.FlowDocument, properties models.FlowProperties) error {
		flow := &models.Flow{Properties: properties, Data: data}

		err := s.store.SaveFlow(ctx, flow)
		if err != nil {
			return err
		}

		s.publish(ctx, events.FlowSaved{
			BaseEvent: session.baseEvent(events.FlowSavedEvent),
			Nodes:     len(data.Nodes),
			Edges:     len(data.Edges),
		})

		return nil
	}
}

func (s *Sessions) publish(ctx context.Context, event keyedEvent) {
	if s.bus == nil {
		return
	}

	err := s.bus.Publish(ctx, event.Key(), event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// Get returns an open session.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return session, nil
}

// IDs returns the ids of the open sessions, sorted.
func (s *Sessions) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Close flushes and closes a session.
func (s *Sessions) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	err := session.close(ctx)

	s.publish(ctx, events.SessionClosed{BaseEvent: session.baseEvent(events.SessionClosedEvent)})

	session.logger.InfoContext(ctx, "editing session closed")

	return err
}

// CloseAll closes every open session.
func (s *Sessions) CloseAll(ctx context.Context) error {
	var errs []error

	for _, id := range s.IDs() {
		if err := s.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Flows lists the stored flows.
func (s *Sessions) Flows(ctx context.Context) ([]*models.Flow, error) {
	return s.store.Flows(ctx)
}

// DeleteFlow deletes a stored flow and discards the sessions editing it without saving.
func (s *Sessions) DeleteFlow(ctx context.Context, namespace, flowID string) error {
	s.mu.Lock()

	var discarded []*Session

	for id, session := range s.sessions {
		if session.namespace == namespace && session.flowID == flowID {
			discarded = append(discarded, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range discarded {
		session.discard()
	}

	err := s.store.DeleteFlow(ctx, namespace, flowID)
	if err != nil {
		return err
	}

	s.publish(ctx, events.FlowDeleted{BaseEvent: events.NewBaseEvent(events.FlowDeletedEvent, namespace, flowID)})

	return nil
}
