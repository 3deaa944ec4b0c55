package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/internal/version"
)

// Handler handles health check requests
type Handler struct {
	pool    *pgxpool.Pool
	store   *ontology.SchemaStore
	startAt time.Time
}

// NewHandler creates a new health handler
func NewHandler(pool *pgxpool.Pool, store *ontology.SchemaStore) *Handler {
	return &Handler{
		pool:    pool,
		store:   store,
		startAt: time.Now(),
	}
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string           `json:"status"`
	Timestamp     string           `json:"timestamp"`
	Uptime        string           `json:"uptime"`
	Version       string           `json:"version"`
	SchemaVersion int              `json:"schemaVersion"`
	Checks        map[string]Check `json:"checks"`
}

// Health handles GET /health
// @Summary      Get service health
// @Description  Returns health status including database connectivity, uptime and the current schema version
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse "Service is healthy"
// @Success      503 {object} HealthResponse "Service is unhealthy"
// @Router       /health [get]
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbCheck := Check{Status: "healthy"}
	if err := h.pool.Ping(ctx); err != nil {
		dbCheck = Check{Status: "unhealthy", Message: err.Error()}
	}

	overall := "healthy"
	code := http.StatusOK
	if dbCheck.Status != "healthy" {
		overall = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, HealthResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Uptime:        time.Since(h.startAt).String(),
		Version:       version.Version,
		SchemaVersion: h.store.Version(),
		Checks: map[string]Check{
			"database": dbCheck,
		},
	})
}

// Healthz handles GET /healthz, a bare liveness probe
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready handles GET /ready, a readiness probe that requires the database
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
