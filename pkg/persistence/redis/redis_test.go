package redis_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/persistence/redis"
	"github.com/dukex/flowstudio/pkg/testutil"
)

func setupRedis(t *testing.T) (*redis.Persistence, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := redis.NewPersistence(ctx, logger, "redis://"+endpoint+"/0")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close(ctx))
		require.NoError(t, testcontainers.TerminateContainer(container))
		cancel()
	})

	return store, ctx
}

func TestPersistence(t *testing.T) {
	store, ctx := setupRedis(t)

	require.NoError(t, store.HealthCheck(ctx))

	flow := testutil.CreateTestFlowWithNodes(testutil.WithFlowID("company.team", "hello"))
	require.NoError(t, store.SaveFlow(ctx, flow))

	loaded, err := store.FlowByID(ctx, "company.team", "hello")
	require.NoError(t, err)
	assert.Equal(t, flow.Data.Edges, loaded.Data.Edges)
	assert.Len(t, loaded.Data.Nodes, 3)

	created := flow.CreatedAt
	again := testutil.CreateTestFlow(testutil.WithFlowID("company.team", "hello"))
	require.NoError(t, store.SaveFlow(ctx, again))
	assert.True(t, created.Equal(again.CreatedAt))

	require.NoError(t, store.SaveFlow(ctx, testutil.CreateTestFlow(testutil.WithFlowID("a.team", "first"))))

	flows, err := store.Flows(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "a.team", flows[0].Properties.Namespace)

	require.NoError(t, store.DeleteFlow(ctx, "company.team", "hello"))
	require.ErrorIs(t, store.DeleteFlow(ctx, "company.team", "hello"), persistence.ErrFlowNotFound)

	_, err = store.FlowByID(ctx, "company.team", "hello")
	require.ErrorIs(t, err, persistence.ErrFlowNotFound)

	err = store.SaveFlow(ctx, testutil.CreateTestFlow(testutil.WithFlowID("company.team", "")))
	require.ErrorIs(t, err, persistence.ErrInvalidFlow)
}
