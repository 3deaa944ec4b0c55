package sync

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/pkg/apperror"
)

// Handler handles HTTP requests for sync
type Handler struct {
	coordinator *Coordinator
}

// NewHandler creates a new sync handler
func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

// GetStatus handles GET /api/sync/status
// @Summary      Sync status
// @Tags         sync
// @Produce      json
// @Success      200 {object} Status "Current sync state"
// @Router       /api/sync/status [get]
func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.coordinator.Status())
}

// ForceSync handles POST /api/sync/force
// @Summary      Force schema push
// @Description  Pushes the full declared schema to the graph store. Rejects immediately if a sync is already in flight.
// @Tags         sync
// @Produce      json
// @Success      200 {object} Status "Sync completed"
// @Failure      409 {object} apperror.Error "Sync already in progress"
// @Failure      502 {object} apperror.Error "Graph store unavailable"
// @Router       /api/sync/force [post]
func (h *Handler) ForceSync(c echo.Context) error {
	status, err := h.coordinator.ForceSync(c.Request().Context())
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("force sync failed", err)
	}
	return c.JSON(http.StatusOK, status)
}
