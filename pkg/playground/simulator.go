// Package playground runs single nodes against an execution collaborator and keeps the transient results.
package playground

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/otelhelper"
)

// Executor produces the execution result of one node.
type Executor interface {
	Execute(ctx context.Context, node models.Node) (*models.PlaygroundExecutionData, error)
}

// NodeLookup snapshots a node of the edited graph.
type NodeLookup func(id string) (models.Node, bool)

// Simulator allows at most one run per node. Results are kept in memory only.
type Simulator struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	executor Executor
	nodes    NodeLookup

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running map[string]context.CancelFunc
	results map[string]*models.PlaygroundExecutionData
	closed  bool
}

// Option configures a Simulator.
type Option func(*Simulator)

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Simulator) {
		s.tracer = tracer
	}
}

func NewSimulator(logger *slog.Logger, executor Executor, nodes NodeLookup, opts ...Option) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Simulator{
		logger:   logger,
		tracer:   otelhelper.NoopTracer(),
		executor: executor,
		nodes:    nodes,
		ctx:      ctx,
		cancel:   cancel,
		running:  make(map[string]context.CancelFunc),
		results:  make(map[string]*models.PlaygroundExecutionData),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes a node and stores its result. A second run of the same node while the first is in
// flight is rejected with ErrRunInProgress. Failures are logged, leave no result and are returned
// as *RunError.
func (s *Simulator) Run(ctx context.Context, nodeID string) (*models.PlaygroundExecutionData, error) {
	node, ok := s.nodes(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	runCtx, done, err := s.begin(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	defer done()

	runCtx, span := otelhelper.StartSpan(runCtx, s.tracer, "playground.run",
		attribute.String(otelhelper.NodeIDKey, nodeID),
		attribute.String(otelhelper.NodeVariantKey, string(node.Variant)),
		attribute.String(otelhelper.PluginTypeKey, node.PluginType()),
	)
	defer span.End()

	logger := s.logger.With("node_id", nodeID, "plugin_type", node.PluginType())
	logger.InfoContext(runCtx, "playground run started")

	started := time.Now()

	result, err := s.execute(runCtx, node)
	if err == nil && result == nil {
		err = ErrNoResult
	}

	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(runCtx, "playground run failed", "error", err)

		return nil, &RunError{NodeID: nodeID, Err: err}
	}

	result.NodeID = nodeID
	if result.Duration == 0 {
		result.Duration = time.Since(started)
	}

	span.SetAttributes(attribute.String(otelhelper.RunStatusKey, string(result.Status)))

	s.mu.Lock()
	s.results[nodeID] = result.Clone()
	s.mu.Unlock()

	logger.InfoContext(runCtx, "playground run finished", "status", result.Status, "duration", result.Duration)

	return result.Clone(), nil
}

func (s *Simulator) begin(ctx context.Context, nodeID string) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrClosed
	}

	if _, running := s.running[nodeID]; running {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunInProgress, nodeID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)

	s.running[nodeID] = cancel
	delete(s.results, nodeID)

	return runCtx, func() {
		stop()
		cancel()

		s.mu.Lock()
		delete(s.running, nodeID)
		s.mu.Unlock()
	}, nil
}

func (s *Simulator) execute(ctx context.Context, node models.Node) (result *models.PlaygroundExecutionData, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("executor panicked: %v", r)
		}
	}()

	return s.executor.Execute(ctx, node)
}

// IsRunning reports whether a run of the node is in flight.
func (s *Simulator) IsRunning(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, running := s.running[nodeID]

	return running
}

// Result returns a copy of the last successful result of a node.
// Starting a new run clears it, so a failed run leaves no result.
func (s *Simulator) Result(nodeID string) (*models.PlaygroundExecutionData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[nodeID]

	return result.Clone(), ok
}

// Cancel aborts the in-flight run of a node.
func (s *Simulator) Cancel(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.running[nodeID]
	if ok {
		cancel()
	}

	return ok
}

// Forget drops the stored result of a node.
func (s *Simulator) Forget(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.results, nodeID)
}

// Close cancels every in-flight run and rejects new ones.
func (s *Simulator) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
}
