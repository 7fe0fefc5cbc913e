package services_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/events"
	"github.com/dukex/flowstudio/pkg/forms"
	"github.com/dukex/flowstudio/pkg/mocks"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/persistence/file"
	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/serializer"
	"github.com/dukex/flowstudio/pkg/services"
	"github.com/dukex/flowstudio/pkg/testutil"
)

func counterTokens() canvas.TokenFunc {
	var n atomic.Int64

	return func() string {
		return fmt.Sprintf("%06d", n.Add(1))
	}
}

func newCatalog() *registry.Registry {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultTasks()

	return reg
}

func newSessions(t *testing.T, store persistence.Persistence, opts ...services.Option) *services.Sessions {
	t.Helper()

	catalog := newCatalog()
	opts = append([]services.Option{services.WithTokenSource(counterTokens())}, opts...)

	sessions := services.NewSessions(slog.Default(), store, nil, catalog, playground.NewMockExecutor(catalog, 0), opts...)

	t.Cleanup(func() {
		_ = sessions.CloseAll(context.Background())
	})

	return sessions
}

func TestSessions_OpenNewFlow(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	sessions := newSessions(t, store)

	session, created, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	assert.True(t, created)

	state, err := session.State()
	require.NoError(t, err)
	assert.Equal(t, session.ID(), state.SessionID)
	assert.Equal(t, "hello", state.Flow.Properties.ID)
	assert.Equal(t, "company.team", state.Flow.Properties.Namespace)
	assert.Empty(t, state.Flow.Data.Nodes)

	flows, err := sessions.Flows(t.Context())
	require.NoError(t, err)
	assert.Empty(t, flows, "opening must not write anything")

	got, err := sessions.Get(session.ID())
	require.NoError(t, err)
	assert.Same(t, session, got)
}

func TestSessions_OpenRequiresIdentity(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t, file.NewPersistence(t.TempDir()))

	_, _, err := sessions.Open(t.Context(), "", "hello")
	require.ErrorIs(t, err, services.ErrFlowIdentityMissing)
	assert.True(t, services.IsValidationError(err))
}

func TestSessions_AutoSaveAndReopen(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	sessions := newSessions(t, store)

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	input, err := session.AddNode(models.VariantInput, models.Position{X: 10, Y: 20}, "user", models.VariantConfig{"id": "user"})
	require.NoError(t, err)

	task, err := session.PaletteSelect(dragdrop.Payload{VariantType: "task", Label: "Log", PluginType: "log"})
	require.NoError(t, err)
	require.NotNil(t, task)

	_, err = session.Connect(input.ID, task.ID)
	require.NoError(t, err)

	stored, err := store.FlowByID(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	assert.Len(t, stored.Data.Nodes, 2)
	assert.Len(t, stored.Data.Edges, 1)

	require.NoError(t, sessions.Close(t.Context(), session.ID()))

	_, err = sessions.Get(session.ID())
	require.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = session.State()
	require.ErrorIs(t, err, services.ErrSessionClosed)

	reopened, created, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	assert.False(t, created)

	state, err := reopened.State()
	require.NoError(t, err)
	require.Len(t, state.Flow.Data.Nodes, 2)
	assert.Equal(t, input.ID, state.Flow.Data.Nodes[0].ID)
	assert.Equal(t, canvas.EdgeID(input.ID, task.ID), state.Flow.Data.Edges[0].ID)
}

func TestSessions_DebouncedSaveFlushesOnClose(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	sessions := newSessions(t, store, services.WithDebounce(time.Hour))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	_, err = session.AddNode(models.VariantNote, models.Position{}, "", nil)
	require.NoError(t, err)

	_, err = store.FlowByID(t.Context(), "company.team", "hello")
	require.True(t, persistence.IsFlowNotFound(err))

	require.NoError(t, sessions.Close(t.Context(), session.ID()))

	stored, err := store.FlowByID(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	assert.Len(t, stored.Data.Nodes, 1)
}

func TestSession_ApplyForm(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t, file.NewPersistence(t.TempDir()))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	task, err := session.PaletteSelect(dragdrop.Payload{VariantType: "task", Label: "Log", PluginType: "log"})
	require.NoError(t, err)
	assert.Equal(t, "log_000001", task.Data.Label)

	view, err := session.Form(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "log", view.Form.PluginType)
	assert.NotEmpty(t, view.Errors, "message is required")

	t.Run("id renames a mirrored label", func(t *testing.T) {
		view, err := session.ApplyForm(task.ID, services.FormUpdate{
			Values: map[string]any{"id": "say", "message": "Hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, "say", view.Label)
		assert.Equal(t, "Hello", view.Values["message"])
		assert.Empty(t, view.Errors)
	})

	t.Run("strict rejects without commit", func(t *testing.T) {
		_, err := session.ApplyForm(task.ID, services.FormUpdate{
			Values: map[string]any{"message": ""},
			Strict: true,
		})

		var validation *forms.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.True(t, services.IsValidationError(err))

		view, err := session.Form(task.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", view.Values["message"])
	})

	t.Run("manual label detaches", func(t *testing.T) {
		label := "Greeting"

		_, err := session.ApplyForm(task.ID, services.FormUpdate{Label: &label})
		require.NoError(t, err)

		view, err := session.ApplyForm(task.ID, services.FormUpdate{Values: map[string]any{"id": "greet"}})
		require.NoError(t, err)
		assert.Equal(t, "Greeting", view.Label)
		assert.True(t, view.LabelDetached)
	})

	t.Run("reference drop and raw input", func(t *testing.T) {
		view, err := session.ApplyForm(task.ID, services.FormUpdate{
			References: map[string]dragdrop.Transfer{"message": {dragdrop.KeyText: "{{ inputs.user }}"}},
			Inputs:     map[string]string{"level": "warn"},
		})
		require.NoError(t, err)
		assert.Equal(t, "{{ inputs.user }}", view.Values["message"])
		assert.Equal(t, "warn", view.Values["level"])

		usages, err := session.InputUsages()
		require.NoError(t, err)
		assert.Equal(t, []string{task.ID}, usages["user"])
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := session.ApplyForm(task.ID, services.FormUpdate{Values: map[string]any{"bogus": 1}})
		require.ErrorIs(t, err, forms.ErrUnknownField)
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := session.ApplyForm("task-404", services.FormUpdate{})
		assert.True(t, services.IsNotFoundError(err))
	})
}

func TestSession_Navigate(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t, file.NewPersistence(t.TempDir()))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	first, err := session.AddNode(models.VariantInput, models.Position{}, "a", models.VariantConfig{"id": "a"})
	require.NoError(t, err)
	second, err := session.AddNode(models.VariantOutput, models.Position{}, "b", models.VariantConfig{"id": "b"})
	require.NoError(t, err)

	_, err = session.Connect(first.ID, second.ID)
	require.NoError(t, err)

	require.NoError(t, session.Edit(first.ID))

	next, err := session.Navigate(services.DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, second.ID, next)

	state, err := session.State()
	require.NoError(t, err)
	assert.Equal(t, second.ID, state.Editing)
	assert.Equal(t, first.ID, state.Previous)
	assert.Empty(t, state.Next)

	_, err = session.Navigate(services.DirectionNext)
	assert.True(t, services.IsNotFoundError(err))

	_, err = session.Navigate("sideways")
	require.ErrorIs(t, err, services.ErrInvalidDirection)
}

func TestSession_PropertiesAndExport(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	sessions := newSessions(t, store)

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	disabled := true

	properties, err := session.UpdateProperties(t.Context(), models.FlowProperties{
		Description: "Says hello",
		Labels:      map[string]string{"team": "core"},
		Variables:   map[string]any{"greeting": "Hello"},
	}, &disabled)
	require.NoError(t, err)
	assert.Equal(t, "Says hello", properties.Description)
	assert.True(t, properties.Disabled)
	assert.Equal(t, "hello", properties.ID)

	stored, err := store.FlowByID(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	assert.Equal(t, "core", stored.Properties.Labels["team"])

	_, err = session.UpdateProperties(t.Context(), models.FlowProperties{ID: "renamed"}, nil)
	require.ErrorIs(t, err, services.ErrIdentityChange)

	preview, err := session.Preview("{{ vars.greeting }}, {{ inputs.user }}", map[string]any{"user": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada", preview)

	for _, format := range []string{"json", "yaml"} {
		data, contentType, err := session.Export(format)
		require.NoError(t, err)
		assert.NotEmpty(t, contentType)

		state, err := session.Import(t.Context(), data, format)
		require.NoError(t, err)
		assert.Equal(t, "Says hello", state.Flow.Properties.Description)
	}

	_, _, err = session.Export("xml")
	require.ErrorIs(t, err, services.ErrUnsupportedFormat)
}

func TestSession_ImportKeepsIdentity(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t, file.NewPersistence(t.TempDir()))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	flow := testutil.CreateTestFlowWithNodes(testutil.WithFlowID("other", "elsewhere"))

	data, err := serializer.JSONCodec{}.Marshal(flow)
	require.NoError(t, err)

	state, err := session.Import(t.Context(), data, "json")
	require.NoError(t, err)
	assert.Equal(t, "hello", state.Flow.Properties.ID)
	assert.Equal(t, "company.team", state.Flow.Properties.Namespace)
	assert.Len(t, state.Flow.Data.Nodes, 3)

	_, err = session.Import(t.Context(), []byte("{"), "json")
	require.ErrorIs(t, err, services.ErrInvalidRequest)
}

func TestSession_ApplyFormOnImportedNodeWithoutConfig(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t, file.NewPersistence(t.TempDir()))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	_, err = session.Import(t.Context(),
		[]byte(`{"data":{"nodes":[{"id":"task-1","variant":"task","data":{"label":"a"}}]}}`), "json")
	require.NoError(t, err)

	view, err := session.ApplyForm("task-1", services.FormUpdate{
		Values: map[string]any{"type": "log", "id": "say"},
	})
	require.NoError(t, err)
	assert.Equal(t, "log", view.Values["type"])
	assert.Equal(t, "say", view.Values["id"])
	assert.Equal(t, "a", view.Label)
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "company.team/hello", mock.Anything).Return(nil)

	catalog := newCatalog()
	sessions := services.NewSessions(slog.Default(), file.NewPersistence(t.TempDir()), bus, catalog,
		playground.NewMockExecutor(catalog, 0), services.WithTokenSource(counterTokens()))

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	task, err := session.AddNode(models.VariantTask, models.Position{}, "say",
		models.VariantConfig{"id": "say", "type": "log", "message": "Hi"})
	require.NoError(t, err)

	result, err := session.Run(t.Context(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlaygroundStatusSuccess, result.Status)
	assert.False(t, session.IsRunning(task.ID))

	stored, err := session.Result(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", stored.Outputs["message"])

	preview, err := session.Preview("{{ outputs.say.message }}", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi", preview)

	require.NoError(t, session.RemoveNode(task.ID))

	_, err = session.Result(task.ID)
	require.ErrorIs(t, err, services.ErrResultNotFound)

	_, err = session.Run(t.Context(), task.ID)
	assert.True(t, services.IsNotFoundError(err))

	require.NoError(t, sessions.CloseAll(t.Context()))

	published := map[events.EventType]int{}

	for _, call := range bus.Calls {
		event, ok := call.Arguments.Get(2).(interface{ GetType() events.EventType })
		require.True(t, ok)

		published[event.GetType()]++
	}

	assert.Equal(t, 1, published[events.SessionOpenedEvent])
	assert.Equal(t, 1, published[events.PlaygroundRunFinishedEvent])
	assert.Equal(t, 1, published[events.SessionClosedEvent])
	assert.Equal(t, 2, published[events.FlowSavedEvent])
}

func TestSession_RunFailurePublishes(t *testing.T) {
	t.Parallel()

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bus down"))

	executor := &mocks.MockPlaygroundExecutor{}
	executor.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	sessions := services.NewSessions(slog.Default(), file.NewPersistence(t.TempDir()), bus, newCatalog(), executor)

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	task, err := session.AddNode(models.VariantTask, models.Position{}, "say", models.VariantConfig{"id": "say", "type": "log"})
	require.NoError(t, err)

	_, err = session.Run(t.Context(), task.ID)

	var runErr *playground.RunError
	require.ErrorAs(t, err, &runErr)

	bus.AssertCalled(t, "Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(event any) bool {
		failed, ok := event.(events.PlaygroundRunFailed)

		return ok && failed.NodeID == task.ID
	}))
}

func TestSessions_DeleteFlowDiscardsSessions(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	sessions := newSessions(t, store)

	session, _, err := sessions.Open(t.Context(), "company.team", "hello")
	require.NoError(t, err)
	require.NoError(t, session.Save(t.Context()))

	other, _, err := sessions.Open(t.Context(), "company.team", "other")
	require.NoError(t, err)

	require.NoError(t, sessions.DeleteFlow(t.Context(), "company.team", "hello"))

	_, err = sessions.Get(session.ID())
	require.ErrorIs(t, err, services.ErrSessionNotFound)

	_, err = sessions.Get(other.ID())
	require.NoError(t, err)

	_, err = store.FlowByID(t.Context(), "company.team", "hello")
	assert.True(t, persistence.IsFlowNotFound(err))

	err = sessions.DeleteFlow(t.Context(), "company.team", "hello")
	assert.True(t, services.IsNotFoundError(err))
}

func TestSessions_HealthCheck(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("disk full")).Once()
	store.On("HealthCheck", mock.Anything).Return(nil)

	sessions := services.NewSessions(slog.Default(), store, nil, newCatalog(), nil)

	message, ok := sessions.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Contains(t, message, "disk full")

	message, ok = sessions.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}
