package canvas

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Handler handles HTTP requests for the canvas
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new canvas handler
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With(logger.Scope("canvas-handler"))}
}

// Data handles GET /api/canvas/data
// @Summary      Canvas scene
// @Description  Returns the deduplicated scene with indices plus the renderer payload
// @Tags         canvas
// @Produce      json
// @Param        types query string false "Comma-separated node type filter"
// @Param        community query integer false "Community filter"
// @Param        limit query integer false "Maximum nodes (default from config)"
// @Success      200 {object} SceneResponse "Scene and payload"
// @Router       /api/canvas/data [get]
func (h *Handler) Data(c echo.Context) error {
	query := SceneQuery{}

	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				query.Types = append(query.Types, t)
			}
		}
	}
	if raw := c.QueryParam("community"); raw != "" {
		if community, err := strconv.Atoi(raw); err == nil {
			query.Community = &community
		}
	}
	query.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	resp, err := h.svc.LoadScene(c.Request().Context(), query)
	if err != nil {
		h.log.Warn("canvas scene degraded to empty", logger.Error(err))
		empty := &Scene{
			Nodes:      []GraphNode{},
			Edges:      []GraphEdge{},
			NodeIndex:  map[string]int{},
			TypeCounts: map[string]int{},
		}
		handle, renderErr := h.svc.renderer.Render(empty)
		if renderErr != nil {
			handle = &Handle{Renderer: "", Payload: nil}
		}
		return c.JSON(http.StatusOK, &SceneResponse{Scene: empty, Handle: handle})
	}
	return c.JSON(http.StatusOK, resp)
}
