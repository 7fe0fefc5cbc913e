package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/persistence/file"
	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/services"
	"github.com/dukex/flowstudio/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultTasks()

	sessions := services.NewSessions(
		slog.Default(),
		file.NewPersistence(t.TempDir()),
		nil,
		reg,
		playground.NewMockExecutor(reg, 0),
	)

	t.Cleanup(func() {
		_ = sessions.CloseAll(context.Background())
	})

	handlers := web.NewAPIHandlers(sessions, validator.New(validator.WithRequiredStructEnabled()), reg)

	app := fiber.New()
	handlers.Register(app)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(data, &value))

	return value
}

func openSession(t *testing.T, app *fiber.App) string {
	t.Helper()

	status, body := doRequest(t, app, http.MethodPost, "/sessions", web.OpenSessionRequest{Namespace: "company.team", ID: "hello"})
	require.Equal(t, http.StatusCreated, status, string(body))

	response := decode[web.OpenSessionResponse](t, body)
	require.True(t, response.Created)

	return response.State.SessionID
}

func TestAPIHandlers_OpenSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{name: "new flow", body: web.OpenSessionRequest{Namespace: "company.team", ID: "hello"}, expectedStatus: http.StatusCreated},
		{name: "missing id", body: web.OpenSessionRequest{Namespace: "company.team"}, expectedStatus: http.StatusBadRequest},
		{name: "invalid json", body: "not an object", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := setupTestApp(t)

			status, body := doRequest(t, app, http.MethodPost, "/sessions", tt.body)
			assert.Equal(t, tt.expectedStatus, status, string(body))
		})
	}
}

func TestAPIHandlers_UnknownSession(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "not_found")
}

func TestAPIHandlers_EditingFlow(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	sid := openSession(t, app)
	base := "/sessions/" + sid

	status, body := doRequest(t, app, http.MethodPost, base+"/nodes", web.AddNodeRequest{
		Variant: "input",
		Label:   "user",
		Config:  models.VariantConfig{"id": "user"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	input := decode[models.Node](t, body)

	status, body = doRequest(t, app, http.MethodPost, base+"/palette", web.PaletteSelectRequest{
		VariantType: "task",
		Label:       "Say hello",
		PluginType:  "log",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	task := decode[web.NodeResponse](t, body).Node
	require.NotNil(t, task)
	assert.True(t, strings.HasPrefix(task.Data.Label, "say_hello_"))

	status, body = doRequest(t, app, http.MethodPost, base+"/edges", web.ConnectRequest{Source: input.ID, Target: task.ID})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "e-"+input.ID+"-"+task.ID, decode[models.Edge](t, body).ID)

	status, _ = doRequest(t, app, http.MethodPost, base+"/edges", web.ConnectRequest{Source: task.ID, Target: "task-404"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, app, http.MethodPut, base+"/nodes/"+task.ID+"/form", web.FormUpdateRequest{
		Values: map[string]any{"id": "say", "message": "Hello {{ inputs.user }}"},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	view := decode[services.FormView](t, body)
	assert.Equal(t, "say", view.Label)
	assert.Empty(t, view.Errors)

	status, body = doRequest(t, app, http.MethodPut, base+"/nodes/"+task.ID+"/form", web.FormUpdateRequest{
		Values: map[string]any{"message": ""},
		Strict: true,
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = doRequest(t, app, http.MethodPut, base+"/editing", web.SelectNodeRequest{NodeID: task.ID})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, input.ID, decode[services.State](t, body).Previous)

	status, body = doRequest(t, app, http.MethodPost, base+"/navigate/previous", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, input.ID, decode[web.NavigateResponse](t, body).NodeID)

	status, _ = doRequest(t, app, http.MethodPost, base+"/navigate/previous", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doRequest(t, app, http.MethodGet, base+"/inputs/usages", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string][]string{"user": {task.ID}}, decode[map[string][]string](t, body))

	status, body = doRequest(t, app, http.MethodGet, "/flows", nil)
	require.Equal(t, http.StatusOK, status)

	flows := decode[[]models.Flow](t, body)
	require.Len(t, flows, 1)
	assert.Len(t, flows[0].Data.Nodes, 2)
}

func TestAPIHandlers_DropAndResize(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	base := "/sessions/" + openSession(t, app)

	status, body := doRequest(t, app, http.MethodPost, base+"/drag-over", web.DragOverRequest{Transfer: map[string]string{"text/plain": "x"}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]bool{"accepted": false}, decode[map[string]bool](t, body))

	status, body = doRequest(t, app, http.MethodPost, base+"/drop", web.DropRequest{
		Transfer: map[string]string{"variantType": "note", "label": "Note"},
		Point:    dragdrop.Point{X: 300, Y: 200},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	note := decode[web.NodeResponse](t, body).Node
	require.NotNil(t, note)
	assert.Equal(t, models.Position{X: 300, Y: 200}, note.Position)

	status, body = doRequest(t, app, http.MethodPut, base+"/nodes/"+note.ID+"/size", web.ResizeNoteRequest{Width: 400, Height: 300})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.InDelta(t, 400.0, decode[models.Node](t, body).Data.Config["width"], 0.001)

	status, _ = doRequest(t, app, http.MethodPut, base+"/nodes/"+note.ID+"/size", web.ResizeNoteRequest{Width: 0, Height: 300})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, app, http.MethodPatch, base+"/nodes/"+note.ID, web.UpdateNodeRequest{
		Config: models.VariantConfig{"text": "edited", "width": 10.0, "height": 10.0},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	edited := decode[models.Node](t, body)
	assert.Equal(t, "edited", edited.Data.Config["text"])
	assert.InDelta(t, 400.0, edited.Data.Config["width"], 0.001)
	assert.InDelta(t, 300.0, edited.Data.Config["height"], 0.001)

	status, body = doRequest(t, app, http.MethodPost, base+"/drop", web.DropRequest{
		Transfer: map[string]string{"variantType": "nope"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, decode[web.NodeResponse](t, body).Node)

	status, _ = doRequest(t, app, http.MethodDelete, base+"/nodes/"+note.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodDelete, base+"/nodes/"+note.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_Playground(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	base := "/sessions/" + openSession(t, app)

	status, body := doRequest(t, app, http.MethodPost, base+"/nodes", web.AddNodeRequest{
		Variant: "task",
		Label:   "say",
		Config:  models.VariantConfig{"id": "say", "type": "log", "message": "Hi"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	task := decode[models.Node](t, body)

	status, _ = doRequest(t, app, http.MethodGet, base+"/nodes/"+task.ID+"/result", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doRequest(t, app, http.MethodPost, base+"/nodes/"+task.ID+"/run", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.PlaygroundStatusSuccess, decode[models.PlaygroundExecutionData](t, body).Status)

	status, body = doRequest(t, app, http.MethodGet, base+"/nodes/"+task.ID+"/result", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"running":false`)

	status, body = doRequest(t, app, http.MethodPost, base+"/preview", web.PreviewRequest{Expression: "{{ outputs.say.message }}!"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Hi!", decode[web.PreviewResponse](t, body).Value)

	status, _ = doRequest(t, app, http.MethodPost, base+"/preview", web.PreviewRequest{Expression: "{{ inputs.missing }}"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, app, http.MethodGet, base+"/nodes/"+task.ID+"/tokens", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "{{ execution.id }}")

	status, _ = doRequest(t, app, http.MethodDelete, base+"/nodes/"+task.ID+"/run", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_PropertiesExportImport(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	sid := openSession(t, app)
	base := "/sessions/" + sid

	description := "Says hello"

	status, body := doRequest(t, app, http.MethodPatch, base+"/properties", web.UpdatePropertiesRequest{
		Description: &description,
		Labels:      map[string]string{"team": "core"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Says hello", decode[models.FlowProperties](t, body).Description)

	status, _ = doRequest(t, app, http.MethodPatch, base+"/properties", web.UpdatePropertiesRequest{ID: "renamed"})
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodGet, base+"/export?format=yaml", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(exported), "description: Says hello")

	req = httptest.NewRequest(http.MethodPost, base+"/import", bytes.NewReader(exported))
	req.Header.Set("Content-Type", "application/yaml")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, _ = doRequest(t, app, http.MethodGet, base+"/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/flows/company.team/hello", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/flows/company.team/hello", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_Catalog(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/plugins/log", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "log", decode[models.TaskMetadata](t, body).Type)

	status, _ = doRequest(t, app, http.MethodGet, "/plugins/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doRequest(t, app, http.MethodGet, "/palette", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"variantType":"note"`)

	status, body = doRequest(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"healthy"`)
}
