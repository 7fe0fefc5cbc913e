package dragdrop

import (
	"log/slog"
	"strconv"
	"testing"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCreator(t *testing.T) (*Creator, *canvas.Graph) {
	t.Helper()

	n := 0
	graph := canvas.NewGraph(canvas.WithTokenSource(canvas.TokenFunc(func() string {
		n++

		return "tok" + strconv.Itoa(n)
	})))

	return NewCreator(graph, slog.Default()), graph
}

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{"Log", "log"},
		{"HTTP Request", "http_request"},
		{"  Café  déjà vu!", "cafe_deja_vu"},
		{"already_snake", "already_snake"},
		{"", "node"},
		{"***", "node"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slug(tt.label))
		})
	}
}

func TestViewport_ToCanvas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		viewport Viewport
		point    Point
		want     models.Position
	}{
		{
			name:     "identity",
			viewport: Viewport{Zoom: 1},
			point:    Point{X: 10, Y: 20},
			want:     models.Position{X: 10, Y: 20},
		},
		{
			name:     "bounds and pan",
			viewport: Viewport{X: 50, Y: -20, Zoom: 1, Bounds: Point{X: 100, Y: 60}},
			point:    Point{X: 300, Y: 200},
			want:     models.Position{X: 150, Y: 160},
		},
		{
			name:     "zoomed",
			viewport: Viewport{Zoom: 2},
			point:    Point{X: 300, Y: 200},
			want:     models.Position{X: 150, Y: 100},
		},
		{
			name:     "zero zoom",
			viewport: Viewport{},
			point:    Point{X: 3, Y: 4},
			want:     models.Position{X: 3, Y: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.viewport.ToCanvas(tt.point))
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	payload := Payload{VariantType: "task", Label: "Log", PluginType: "log"}

	decoded, ok := DecodePayload(payload.Transfer())
	require.True(t, ok)
	assert.Equal(t, payload, decoded)

	_, ok = DecodePayload(Transfer{KeyLabel: "Note"})
	assert.False(t, ok)
}

func TestCreator_DropTask(t *testing.T) {
	t.Parallel()

	creator, graph := newTestCreator(t)

	transfer := Payload{VariantType: "task", Label: "Log", PluginType: "log"}.Transfer()
	node, err := creator.Drop(transfer, Point{X: 220, Y: 140}, Viewport{Zoom: 1, Bounds: Point{X: 20, Y: 40}})
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, models.VariantTask, node.Variant)
	assert.Equal(t, models.Position{X: 200, Y: 100}, node.Position)
	assert.Equal(t, "log_tok1", node.ConfigID())
	assert.Equal(t, "log", node.PluginType())
	assert.Equal(t, node.ConfigID(), node.Data.Label)
	assert.Len(t, graph.Nodes(), 1)
}

func TestCreator_DropAndSelectProduceSameNode(t *testing.T) {
	t.Parallel()

	payload := Payload{VariantType: "finally", Label: "Cleanup", PluginType: "log"}

	dropCreator, _ := newTestCreator(t)
	dropped, err := dropCreator.Drop(payload.Transfer(), Point{X: 100, Y: 100}, Viewport{Zoom: 1})
	require.NoError(t, err)

	selectCreator, _ := newTestCreator(t)
	selected, err := selectCreator.Select(payload)
	require.NoError(t, err)

	assert.Equal(t, dropped, selected)
}

func TestCreator_DropNote(t *testing.T) {
	t.Parallel()

	creator, _ := newTestCreator(t)

	node, err := creator.Select(Payload{VariantType: "note", Label: "Note"})
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, models.VariantConfig{
		"text":   "Double click to edit me. Guide",
		"color":  "yellow",
		"width":  240.0,
		"height": 120.0,
	}, node.Data.Config)
	assert.Equal(t, DefaultPosition, node.Position)
}

func TestCreator_DropTriggerKeepsPaletteLabel(t *testing.T) {
	t.Parallel()

	creator, _ := newTestCreator(t)

	node, err := creator.Select(Payload{VariantType: "trigger", Label: "Schedule", PluginType: "trigger:scheduler"})
	require.NoError(t, err)

	assert.Equal(t, "Schedule", node.Data.Label)
	assert.Equal(t, "schedule_tok1", node.ConfigID())
	assert.Equal(t, "trigger:scheduler", node.PluginType())
}

func TestCreator_DropWithoutVariantIsNoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		transfer Transfer
	}{
		{name: "note without variant", transfer: Transfer{KeyLabel: "Note"}},
		{name: "empty", transfer: Transfer{}},
		{name: "unknown variant", transfer: Transfer{KeyVariantType: "widget", KeyLabel: "Widget"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			creator, graph := newTestCreator(t)

			assert.False(t, creator.DragOver(tt.transfer))

			node, err := creator.Drop(tt.transfer, Point{}, Viewport{Zoom: 1})
			require.NoError(t, err)
			assert.Nil(t, node)
			assert.Empty(t, graph.Nodes())
		})
	}
}

func TestCreator_DragOverDoesNotMutate(t *testing.T) {
	t.Parallel()

	creator, graph := newTestCreator(t)

	assert.True(t, creator.DragOver(Payload{VariantType: "task", Label: "Log"}.Transfer()))
	assert.Empty(t, graph.Nodes())
}

func TestPalette(t *testing.T) {
	t.Parallel()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultTasks()

	entries := Palette(reg)

	groups := map[string]int{}
	for _, entry := range entries {
		groups[entry.Group]++
	}

	assert.Equal(t, map[string]int{"Flow": 5, "Tasks": 3, "Triggers": 2}, groups)
	assert.Equal(t, "input", entries[0].VariantType)

	for _, entry := range entries {
		if entry.Group == "Triggers" {
			assert.Equal(t, "trigger", entry.VariantType)
			assert.NotEmpty(t, entry.PluginType)
		}
	}

	assert.Len(t, Palette(nil), 5)
}
