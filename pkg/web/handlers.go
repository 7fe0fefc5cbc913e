// Package web provides the HTTP handlers of the flow editing API.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/dukex/flowstudio/pkg/canvas"
	"github.com/dukex/flowstudio/pkg/dragdrop"
	"github.com/dukex/flowstudio/pkg/models"
	"github.com/dukex/flowstudio/pkg/registry"
	"github.com/dukex/flowstudio/pkg/services"
)

type APIHandlers struct {
	sessions  *services.Sessions
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(
	sessions *services.Sessions,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		sessions:  sessions,
		validator: validator,
		registry:  registry,
	}
}

// Register mounts every route of the API on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Get("/health", h.HealthCheck)
	router.Get("/palette", h.GetPalette)
	router.Get("/plugins", h.GetPlugins)
	router.Get("/plugins/:type", h.GetPlugin)

	f := router.Group("/flows")
	f.Get("/", h.GetFlows)
	f.Delete("/:namespace/:id", h.DeleteFlow)

	s := router.Group("/sessions")
	s.Post("/", h.OpenSession)
	s.Get("/:sid", h.GetSession)
	s.Delete("/:sid", h.CloseSession)
	s.Post("/:sid/save", h.SaveSession)

	s.Post("/:sid/nodes", h.AddNode)
	s.Patch("/:sid/nodes/:nodeId", h.UpdateNode)
	s.Delete("/:sid/nodes/:nodeId", h.RemoveNode)
	s.Put("/:sid/nodes/:nodeId/size", h.ResizeNote)
	s.Get("/:sid/nodes/:nodeId/form", h.GetForm)
	s.Put("/:sid/nodes/:nodeId/form", h.ApplyForm)
	s.Get("/:sid/nodes/:nodeId/tokens", h.GetTokens)
	s.Post("/:sid/nodes/:nodeId/run", h.RunNode)
	s.Delete("/:sid/nodes/:nodeId/run", h.CancelRun)
	s.Get("/:sid/nodes/:nodeId/result", h.GetResult)

	s.Post("/:sid/edges", h.Connect)
	s.Delete("/:sid/edges/:edgeId", h.RemoveEdge)

	s.Put("/:sid/selection", h.Select)
	s.Put("/:sid/editing", h.Edit)
	s.Post("/:sid/navigate/:direction", h.Navigate)

	s.Post("/:sid/drag-over", h.DragOver)
	s.Post("/:sid/drop", h.Drop)
	s.Post("/:sid/palette", h.PaletteSelect)

	s.Get("/:sid/inputs/usages", h.GetInputUsages)
	s.Post("/:sid/preview", h.Preview)

	s.Get("/:sid/properties", h.GetProperties)
	s.Patch("/:sid/properties", h.UpdateProperties)

	s.Get("/:sid/export", h.Export)
	s.Post("/:sid/import", h.Import)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	persistenceCheck, perOk := h.sessions.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowstudio API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && perOk {
		status = "healthy"
		message = "Flowstudio API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":    registryCheck,
			"persistence": persistenceCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetPalette(c fiber.Ctx) error {
	return c.JSON(dragdrop.Palette(h.registry))
}

func (h *APIHandlers) GetPlugins(c fiber.Ctx) error {
	return c.JSON(h.registry.List())
}

func (h *APIHandlers) GetPlugin(c fiber.Ctx) error {
	metadata, ok := h.registry.Get(c.Params("type"))
	if !ok {
		return notFound(c, "Plugin not found")
	}

	return c.JSON(metadata)
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.sessions.Flows(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flows)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	err := h.sessions.DeleteFlow(c.Context(), c.Params("namespace"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) OpenSession(c fiber.Ctx) error {
	var req OpenSessionRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	session, created, err := h.sessions.Open(c.Context(), req.Namespace, req.ID)
	if err != nil {
		return handleServiceError(c, err)
	}

	state, err := session.State()
	if err != nil {
		return handleServiceError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(OpenSessionResponse{Created: created, State: state})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	return h.sendState(c, session)
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	err := h.sessions.Close(c.Context(), c.Params("sid"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := session.Save(c.Context()); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req AddNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.AddNode(models.Variant(req.Variant), req.Position, req.Label, req.Config)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req UpdateNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.UpdateNode(c.Params("nodeId"), canvas.NodePatch{
		Label:       req.Label,
		Config:      req.Config,
		Position:    req.Position,
		DetachLabel: req.Label != nil,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) ResizeNote(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ResizeNoteRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.ResizeNote(c.Params("nodeId"), req.Width, req.Height)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) RemoveNode(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := session.RemoveNode(c.Params("nodeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req ConnectRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	edge, err := session.Connect(req.Source, req.Target)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) RemoveEdge(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if err := session.RemoveEdge(c.Params("edgeId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Select(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req SelectNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := session.Select(req.NodeID); err != nil {
		return handleServiceError(c, err)
	}

	return h.sendState(c, session)
}

func (h *APIHandlers) Edit(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req SelectNodeRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := session.Edit(req.NodeID); err != nil {
		return handleServiceError(c, err)
	}

	return h.sendState(c, session)
}

func (h *APIHandlers) Navigate(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	nodeID, err := session.Navigate(c.Params("direction"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(NavigateResponse{NodeID: nodeID})
}

func (h *APIHandlers) DragOver(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req DragOverRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(fiber.Map{"accepted": session.DragOver(req.Transfer)})
}

func (h *APIHandlers) Drop(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req DropRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.Drop(req.Transfer, req.Point, req.Viewport)
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendCreated(c, node)
}

func (h *APIHandlers) PaletteSelect(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req PaletteSelectRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := session.PaletteSelect(dragdrop.Payload{
		VariantType: req.VariantType,
		Label:       req.Label,
		PluginType:  req.PluginType,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return sendCreated(c, node)
}

func (h *APIHandlers) GetForm(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	view, err := session.Form(c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) ApplyForm(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req FormUpdateRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	view, err := session.ApplyForm(c.Params("nodeId"), services.FormUpdate{
		Label:      req.Label,
		Values:     req.Values,
		Inputs:     req.Inputs,
		References: req.References,
		Strict:     req.Strict,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) GetTokens(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	tokens, err := session.Tokens(c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(tokens)
}

func (h *APIHandlers) GetInputUsages(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	usages, err := session.InputUsages()
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(usages)
}

func (h *APIHandlers) Preview(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req PreviewRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	value, err := session.Preview(req.Expression, req.Inputs)
	if err != nil {
		if services.IsGoneError(err) {
			return handleServiceError(c, err)
		}

		return badRequest(c, err.Error())
	}

	return c.JSON(PreviewResponse{Value: value})
}

func (h *APIHandlers) RunNode(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := session.Run(c.Context(), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) CancelRun(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	if !session.CancelRun(c.Params("nodeId")) {
		return notFound(c, "No playground run in progress")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetResult(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	nodeID := c.Params("nodeId")

	result, err := session.Result(nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"running": session.IsRunning(nodeID),
		"result":  result,
	})
}

func (h *APIHandlers) GetProperties(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	properties, err := session.Properties()
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(properties)
}

func (h *APIHandlers) UpdateProperties(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	var req UpdatePropertiesRequest
	if err := h.bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	properties, err := session.UpdateProperties(c.Context(), req.Patch(), req.Disabled)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(properties)
}

func (h *APIHandlers) Export(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	data, contentType, err := session.Export(c.Query("format", "json"))
	if err != nil {
		return handleServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)

	return c.Send(data)
}

// Import takes the format from the "format" query or a YAML content type, defaulting to JSON.
func (h *APIHandlers) Import(c fiber.Ctx) error {
	session, err := h.session(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	format := c.Query("format")
	if format == "" {
		format = "json"
		if strings.Contains(c.Get(fiber.HeaderContentType), "yaml") {
			format = "yaml"
		}
	}

	state, err := session.Import(c.Context(), c.Body(), format)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) session(c fiber.Ctx) (*services.Session, error) {
	return h.sessions.Get(c.Params("sid"))
}

func (h *APIHandlers) bind(c fiber.Ctx, req any) error {
	if err := c.Bind().JSON(req); err != nil {
		return errInvalidJSON
	}

	return h.validator.Struct(req)
}

func (h *APIHandlers) sendState(c fiber.Ctx, session *services.Session) error {
	state, err := session.State()
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(state)
}

func sendCreated(c fiber.Ctx, node *models.Node) error {
	if node == nil {
		return c.JSON(NodeResponse{})
	}

	return c.Status(fiber.StatusCreated).JSON(NodeResponse{Node: node})
}
