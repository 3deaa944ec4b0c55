package analysis

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Handler handles HTTP requests for background analysis jobs
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With(logger.Scope("analysis-handler"))}
}

// ListJobs handles GET /api/jobs
// @Summary      List analysis jobs
// @Description  Returns all job definitions with schedules and run counters
// @Tags         jobs
// @Produce      json
// @Success      200 {array} OntologyJob "Job definitions"
// @Router       /api/jobs [get]
func (h *Handler) ListJobs(c echo.Context) error {
	jobs, err := h.svc.ListJobs(c.Request().Context())
	if err != nil {
		h.log.Warn("job list degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, []OntologyJob{})
	}
	if jobs == nil {
		jobs = []OntologyJob{}
	}
	return c.JSON(http.StatusOK, jobs)
}

// Toggle handles POST /api/jobs/:type/toggle
// @Summary      Enable or disable a job
// @Description  Disabling removes the job from the recurring timeline; manual triggers stay available
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        type path string true "Job type" Enums(full,inference,dedup,auto_approve,gaps)
// @Param        request body ToggleRequest true "Desired state"
// @Success      200 {object} OntologyJob "Updated job"
// @Failure      404 {object} apperror.Error "Job not found"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/jobs/{type}/toggle [post]
func (h *Handler) Toggle(c echo.Context) error {
	jobType := c.Param("type")
	if jobType == "" {
		return apperror.NewBadRequest("job type is required")
	}

	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	job, err := h.svc.Toggle(c.Request().Context(), jobType, req.Enabled)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to toggle job", err)
	}
	return c.JSON(http.StatusOK, job)
}

// Trigger handles POST /api/jobs/:type/trigger
// @Summary      Trigger a job now
// @Description  Starts the job immediately regardless of its enabled flag. The execution runs in the background.
// @Tags         jobs
// @Produce      json
// @Param        type path string true "Job type" Enums(full,inference,dedup,auto_approve,gaps)
// @Success      202 {object} JobExecution "Running execution"
// @Failure      404 {object} apperror.Error "Job not found"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/jobs/{type}/trigger [post]
func (h *Handler) Trigger(c echo.Context) error {
	jobType := c.Param("type")
	if jobType == "" {
		return apperror.NewBadRequest("job type is required")
	}

	exec, err := h.svc.Trigger(c.Request().Context(), jobType)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to trigger job", err)
	}
	return c.JSON(http.StatusAccepted, exec)
}

// Executions handles GET /api/jobs/executions
// @Summary      Execution log
// @Description  Returns executions most-recent-first, filterable by job type and status
// @Tags         jobs
// @Produce      json
// @Param        type query string false "Filter by job type"
// @Param        status query string false "Filter by status" Enums(running,completed,failed)
// @Param        limit query integer false "Maximum results (default 50)"
// @Success      200 {array} JobExecution "Executions"
// @Router       /api/jobs/executions [get]
func (h *Handler) Executions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	query := ExecutionQuery{
		JobType: c.QueryParam("type"),
		Status:  c.QueryParam("status"),
		Limit:   limit,
	}

	executions, err := h.svc.Executions(c.Request().Context(), query)
	if err != nil {
		h.log.Warn("execution log degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, []JobExecution{})
	}
	if executions == nil {
		executions = []JobExecution{}
	}
	return c.JSON(http.StatusOK, executions)
}

// Status handles GET /api/jobs/status
// @Summary      Worker status
// @Description  Aggregates scheduler state and execution counts
// @Tags         jobs
// @Produce      json
// @Success      200 {object} WorkerStatus "Worker status"
// @Router       /api/jobs/status [get]
func (h *Handler) Status(c echo.Context) error {
	status, err := h.svc.Status(c.Request().Context())
	if err != nil {
		h.log.Warn("worker status degraded to defaults", logger.Error(err))
		return c.JSON(http.StatusOK, &WorkerStatus{
			SchedulerRunning: false,
			Executions:       map[string]int{},
			ScheduledJobs:    []string{},
		})
	}
	return c.JSON(http.StatusOK, status)
}
