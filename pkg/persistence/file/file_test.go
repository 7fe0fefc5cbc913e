package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowstudio/pkg/persistence"
	"github.com/dukex/flowstudio/pkg/testutil"
)

func TestPersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewPersistence("file://" + root)

	flow := testutil.CreateTestFlowWithNodes(testutil.WithFlowID("company.team", "hello"))

	require.NoError(t, store.SaveFlow(t.Context(), flow))
	assert.FileExists(t, filepath.Join(root, "flows", "company.team", "hello.json"))
	assert.False(t, flow.CreatedAt.IsZero())

	loaded, err := store.FlowByID(t.Context(), "company.team", "hello")
	require.NoError(t, err)

	assert.Equal(t, flow.Properties.ID, loaded.Properties.ID)
	assert.Equal(t, flow.Data.Edges, loaded.Data.Edges)
	require.Len(t, loaded.Data.Nodes, 3)
	assert.Equal(t, "{{ outputs.fetch.body }}", loaded.Data.Nodes[2].Data.Config["message"])
}

func TestPersistence_SaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())
	flow := testutil.CreateTestFlow()

	require.NoError(t, store.SaveFlow(t.Context(), flow))
	created := flow.CreatedAt

	again := testutil.CreateTestFlow(testutil.WithFlowID(flow.Properties.Namespace, flow.Properties.ID))
	require.NoError(t, store.SaveFlow(t.Context(), again))

	assert.True(t, created.Equal(again.CreatedAt))
	assert.False(t, again.UpdatedAt.Before(created))
}

func TestPersistence_Errors(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "missing flow",
			run: func() error {
				_, err := store.FlowByID(t.Context(), "company.team", "missing")

				return err
			},
			wantErr: persistence.ErrFlowNotFound,
		},
		{
			name: "delete missing flow",
			run: func() error {
				return store.DeleteFlow(t.Context(), "company.team", "missing")
			},
			wantErr: persistence.ErrFlowNotFound,
		},
		{
			name: "flow without id",
			run: func() error {
				return store.SaveFlow(t.Context(), testutil.CreateTestFlow(testutil.WithFlowID("company.team", "")))
			},
			wantErr: persistence.ErrInvalidFlow,
		},
		{
			name: "path traversal",
			run: func() error {
				_, err := store.FlowByID(t.Context(), "..", "passwd")

				return err
			},
			wantErr: persistence.ErrInvalidFlow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}

func TestPersistence_FlowsAndDelete(t *testing.T) {
	t.Parallel()

	store := NewPersistence(t.TempDir())

	flows, err := store.Flows(t.Context())
	require.NoError(t, err)
	assert.Empty(t, flows)

	require.NoError(t, store.SaveFlow(t.Context(), testutil.CreateTestFlow(testutil.WithFlowID("b.team", "two"))))
	require.NoError(t, store.SaveFlow(t.Context(), testutil.CreateTestFlow(testutil.WithFlowID("a.team", "one"))))

	flows, err = store.Flows(t.Context())
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "a.team", flows[0].Properties.Namespace)

	require.NoError(t, store.DeleteFlow(t.Context(), "a.team", "one"))

	flows, err = store.Flows(t.Context())
	require.NoError(t, err)
	assert.Len(t, flows, 1)
}

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, NewPersistence(root).HealthCheck(t.Context()))

	missing := filepath.Join(root, "nope")
	require.ErrorIs(t, NewPersistence(missing).HealthCheck(t.Context()), os.ErrNotExist)
}
