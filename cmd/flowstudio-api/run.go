package main

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowstudio/pkg/cmd"
	"github.com/dukex/flowstudio/pkg/eventbus"
	"github.com/dukex/flowstudio/pkg/events"
	"github.com/dukex/flowstudio/pkg/log"
	"github.com/dukex/flowstudio/pkg/otelhelper"
	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/services"
)

func run(ctx context.Context, cfg config) error {
	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing flowstudio API")

	tracer, err := newTracer(ctx, logger, cfg.otelEnabled)
	if err != nil {
		return err
	}

	registry, err := cmd.NewRegistry(logger, cfg.pluginsPath)
	if err != nil {
		return err
	}

	persistence, err := cmd.NewPersistence(ctx, logger, cfg.databaseURL)
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(cfg.eventBus, cfg.kafkaBrokers, logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	err = subscribeActivityLog(ctx, eventBus, log.WithModule("activity"))
	if err != nil {
		return err
	}

	sessions := services.NewSessions(
		logger,
		persistence,
		eventBus,
		registry,
		playground.NewMockExecutor(registry, cfg.playgroundLatency),
		services.WithDebounce(cfg.autosaveDebounce),
		services.WithTracer(tracer),
	)

	defer func() {
		if err := sessions.CloseAll(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close editing sessions", "error", err)
		}
	}()

	api := NewAPI(logger, sessions, registry)

	return api.Start(ctx, cfg.port)
}

// nolint:ireturn
func newTracer(ctx context.Context, logger *slog.Logger, enabled bool) (trace.Tracer, error) {
	if !enabled {
		return otelhelper.NoopTracer(), nil
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, "flowstudio-api")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	context.AfterFunc(ctx, func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	})

	return tracer, nil
}

// subscribeActivityLog logs every flow and session event published on the bus.
func subscribeActivityLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	handler := func(ctx context.Context, event any) error {
		logger.DebugContext(ctx, "event received", "event", event)

		return nil
	}

	for _, eventType := range []events.EventType{
		events.FlowSavedEvent,
		events.FlowDeletedEvent,
		events.SessionOpenedEvent,
		events.SessionClosedEvent,
		events.PlaygroundRunFinishedEvent,
		events.PlaygroundRunFailedEvent,
	} {
		if err := bus.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return bus.Subscribe(ctx)
}
