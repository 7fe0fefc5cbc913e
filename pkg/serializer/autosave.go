package serializer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/models"
)

// SaveFunc hands a serialized flow to the persistence collaborator.
type SaveFunc func(ctx context.Context, data models.FlowDocument, properties models.FlowProperties) error

// AutoSaver serializes the graph after every persistent change and hands it to a SaveFunc.
// With a debounce, bursts of changes are coalesced into one save of the final state.
type AutoSaver struct {
	logger     *slog.Logger
	graph      GraphReader
	properties func() models.FlowProperties
	save       SaveFunc
	debounce   time.Duration
	locker     sync.Locker

	// writing orders snapshots and saves; it is taken after locker.
	writing sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	saves   int
	lastErr error
}

// AutoSaveOption configures an AutoSaver.
type AutoSaveOption func(*AutoSaver)

// WithDebounce delays saves until no change happened for d.
func WithDebounce(d time.Duration) AutoSaveOption {
	return func(a *AutoSaver) {
		a.debounce = d
	}
}

// WithLocker sets the lock held while a debounced save reads the graph.
func WithLocker(locker sync.Locker) AutoSaveOption {
	return func(a *AutoSaver) {
		a.locker = locker
	}
}

func NewAutoSaver(
	logger *slog.Logger,
	graph GraphReader,
	properties func() models.FlowProperties,
	save SaveFunc,
	opts ...AutoSaveOption,
) *AutoSaver {
	a := &AutoSaver{
		logger:     logger,
		graph:      graph,
		properties: properties,
		save:       save,
		locker:     noopLocker{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// OnChange is a canvas listener. Selection, editing and load changes are ignored.
func (a *AutoSaver) OnChange(change canvas.Change) {
	if !change.Persistent() {
		return
	}

	a.Notify()
}

// Notify schedules a save, or saves immediately when no debounce is configured.
// The caller must own the graph.
func (a *AutoSaver) Notify() {
	if a.debounce <= 0 {
		_ = a.SaveNow(context.Background())

		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = true

	if a.timer != nil {
		a.timer.Reset(a.debounce)

		return
	}

	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *AutoSaver) fire() {
	a.locker.Lock()

	a.mu.Lock()
	if !a.pending {
		a.mu.Unlock()
		a.locker.Unlock()

		return
	}

	a.pending = false
	a.mu.Unlock()

	a.writing.Lock()
	defer a.writing.Unlock()

	flow := ToFlow(a.graph, a.properties())
	a.locker.Unlock()

	_ = a.write(context.Background(), flow)
}

// SaveNow cancels any pending debounced save and saves the current state. The caller must own the graph.
// It waits for an in-flight debounced save so an older snapshot never lands after a newer one.
func (a *AutoSaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	a.pending = false

	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	a.writing.Lock()
	defer a.writing.Unlock()

	return a.write(ctx, ToFlow(a.graph, a.properties()))
}

// Flush saves a pending debounced change, if any. The caller must own the graph.
func (a *AutoSaver) Flush(ctx context.Context) error {
	if !a.Pending() {
		return nil
	}

	return a.SaveNow(ctx)
}

// Pending reports whether a debounced save is waiting.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.pending
}

// Stop drops any pending save.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = false

	if a.timer != nil {
		a.timer.Stop()
	}
}

// Saves returns how many saves were handed to the SaveFunc.
func (a *AutoSaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.saves
}

// LastError returns the error of the latest save, or nil.
func (a *AutoSaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lastErr
}

func (a *AutoSaver) write(ctx context.Context, flow *models.Flow) error {
	err := a.save(ctx, flow.Data, flow.Properties)

	a.mu.Lock()
	a.saves++
	a.lastErr = err
	a.mu.Unlock()

	if err != nil {
		a.logger.ErrorContext(ctx, "auto-save failed",
			"flow_id", flow.Properties.ID,
			"namespace", flow.Properties.Namespace,
			"error", err)

		return err
	}

	a.logger.DebugContext(ctx, "flow auto-saved",
		"flow_id", flow.Properties.ID,
		"nodes", len(flow.Data.Nodes),
		"edges", len(flow.Data.Edges))

	return nil
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}
