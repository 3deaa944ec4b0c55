package suggestions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Handler handles HTTP requests for suggestions and the change ledger
type Handler struct {
	svc *Service
	cfg *config.Config
	log *slog.Logger
}

// NewHandler creates a new suggestions handler
func NewHandler(svc *Service, cfg *config.Config, log *slog.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, log: log.With(logger.Scope("suggestions-handler"))}
}

// List handles GET /api/suggestions
// @Summary      List suggestions
// @Description  Returns suggestions oldest-first, optionally filtered by status
// @Tags         suggestions
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending,approved,rejected)
// @Param        limit query integer false "Maximum results"
// @Success      200 {array} OntologySuggestion "Suggestions"
// @Router       /api/suggestions [get]
func (h *Handler) List(c echo.Context) error {
	status := c.QueryParam("status")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, err := h.svc.List(c.Request().Context(), status, limit)
	if err != nil {
		h.log.Warn("suggestion list degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, []OntologySuggestion{})
	}
	if items == nil {
		items = []OntologySuggestion{}
	}
	return c.JSON(http.StatusOK, items)
}

// Approve handles POST /api/suggestions/:id/approve
// @Summary      Approve a suggestion
// @Description  Applies the proposed definition to the schema and records the change atomically. Already-terminal suggestions report their existing state.
// @Tags         suggestions
// @Produce      json
// @Param        id path string true "Suggestion ID (UUID)"
// @Success      200 {object} ResolutionResult "Resolution result"
// @Failure      404 {object} apperror.Error "Suggestion not found"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/suggestions/{id}/approve [post]
func (h *Handler) Approve(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperror.NewBadRequest("id is required")
	}

	result, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to approve suggestion", err)
	}
	return c.JSON(http.StatusOK, result)
}

// Reject handles POST /api/suggestions/:id/reject
// @Summary      Reject a suggestion
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        id path string true "Suggestion ID (UUID)"
// @Param        request body RejectRequest false "Rejection reason"
// @Success      200 {object} ResolutionResult "Resolution result"
// @Failure      404 {object} apperror.Error "Suggestion not found"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/suggestions/{id}/reject [post]
func (h *Handler) Reject(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperror.NewBadRequest("id is required")
	}

	var req RejectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	result, err := h.svc.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to reject suggestion", err)
	}
	return c.JSON(http.StatusOK, result)
}

// AutoApprove handles POST /api/suggestions/auto-approve
// @Summary      Auto-approve high-confidence suggestions
// @Description  Approves all pending suggestions with confidence at or above the threshold, oldest-first, continuing past individual failures
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        request body AutoApproveRequest false "Threshold override"
// @Success      200 {object} AutoApproveResult "Batch result"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/suggestions/auto-approve [post]
func (h *Handler) AutoApprove(c echo.Context) error {
	var req AutoApproveRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	threshold := h.cfg.Jobs.AutoApproveThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return apperror.NewBadRequest("threshold must be between 0 and 1")
	}

	result, err := h.svc.AutoApprove(c.Request().Context(), threshold)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("auto-approve failed", err)
	}
	return c.JSON(http.StatusOK, result)
}

// Changes handles GET /api/changes
// @Summary      Change history
// @Description  Returns applied schema mutations most-recent-first, filterable by target
// @Tags         changes
// @Produce      json
// @Param        target_type query string false "Filter by target type" Enums(entity,relation,schema)
// @Param        target_name query string false "Filter by target name"
// @Param        limit query integer false "Maximum results (default 100)"
// @Success      200 {array} OntologyChange "Change entries"
// @Router       /api/changes [get]
func (h *Handler) Changes(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	query := ChangeQuery{
		TargetType: c.QueryParam("target_type"),
		TargetName: c.QueryParam("target_name"),
		Limit:      limit,
	}

	changes, err := h.svc.Changes(c.Request().Context(), query)
	if err != nil {
		h.log.Warn("change history degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, []OntologyChange{})
	}
	if changes == nil {
		changes = []OntologyChange{}
	}
	return c.JSON(http.StatusOK, changes)
}
