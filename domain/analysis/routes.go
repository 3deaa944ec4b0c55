package analysis

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers job management routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/jobs")

	g.GET("", h.ListJobs)
	g.GET("/executions", h.Executions)
	g.GET("/status", h.Status)
	g.POST("/:type/toggle", h.Toggle)
	g.POST("/:type/trigger", h.Trigger)
}
