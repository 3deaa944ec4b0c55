package canvas

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers canvas routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/canvas")

	g.GET("/data", h.Data)
}
