package ontology

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers ontology routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/ontology")

	g.GET("", h.GetSchema)
	g.GET("/entity-types", h.GetEntityTypes)
	g.GET("/relation-types", h.GetRelationTypes)
	g.GET("/query-patterns", h.GetQueryPatterns)
	g.GET("/stats", h.GetStats)
	g.GET("/diff", h.GetDiff)
	g.GET("/unused", h.GetUnused)

	g.POST("/validate", h.Validate)
	g.POST("/extract", h.Extract)
	g.POST("/merge", h.Merge)
	g.DELETE("/unused", h.RemoveUnused)
}
