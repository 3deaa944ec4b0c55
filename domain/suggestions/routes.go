package suggestions

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers suggestion and change-history routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/suggestions")

	g.GET("", h.List)
	g.POST("/auto-approve", h.AutoApprove)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)

	e.GET("/api/changes", h.Changes)
}
