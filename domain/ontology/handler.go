package ontology

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ontoscope/ontoscope/pkg/apperror"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Handler handles HTTP requests for the ontology area. GET endpoints
// degrade to empty defaults on upstream failure so consumers can render
// an empty state; POST/DELETE endpoints surface typed errors.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates a new ontology handler
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log.With(logger.Scope("ontology-handler"))}
}

// GetSchema handles GET /api/ontology
// @Summary      Get declared ontology
// @Description  Returns the full current schema: entity types, relation types and query patterns
// @Tags         ontology
// @Produce      json
// @Success      200 {object} OntologySchema "Current schema"
// @Router       /api/ontology [get]
func (h *Handler) GetSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetSchema())
}

// GetEntityTypes handles GET /api/ontology/entity-types
// @Summary      List entity types
// @Tags         ontology
// @Produce      json
// @Success      200 {object} EntityTypesResponse "Entity types"
// @Router       /api/ontology/entity-types [get]
func (h *Handler) GetEntityTypes(c echo.Context) error {
	schema := h.svc.GetSchema()
	return c.JSON(http.StatusOK, EntityTypesResponse{
		Version:     schema.Version,
		EntityTypes: schema.EntityTypes,
	})
}

// GetRelationTypes handles GET /api/ontology/relation-types
// @Summary      List relation types
// @Tags         ontology
// @Produce      json
// @Success      200 {object} RelationTypesResponse "Relation types"
// @Router       /api/ontology/relation-types [get]
func (h *Handler) GetRelationTypes(c echo.Context) error {
	schema := h.svc.GetSchema()
	return c.JSON(http.StatusOK, RelationTypesResponse{
		Version:       schema.Version,
		RelationTypes: schema.RelationTypes,
	})
}

// GetQueryPatterns handles GET /api/ontology/query-patterns
// @Summary      List query pattern templates
// @Tags         ontology
// @Produce      json
// @Success      200 {object} QueryPatternsResponse "Query patterns"
// @Router       /api/ontology/query-patterns [get]
func (h *Handler) GetQueryPatterns(c echo.Context) error {
	schema := h.svc.GetSchema()
	return c.JSON(http.StatusOK, QueryPatternsResponse{
		Version:       schema.Version,
		QueryPatterns: schema.QueryPatterns,
	})
}

// GetStats handles GET /api/ontology/stats
// @Summary      Per-type usage stats
// @Description  Joins live instance counts onto declared types, including unused and not-in-ontology buckets
// @Tags         ontology
// @Produce      json
// @Success      200 {object} UsageStats "Usage stats"
// @Router       /api/ontology/stats [get]
func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.svc.GetStats(c.Request().Context())
	if err != nil {
		h.log.Warn("stats degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, &UsageStats{
			Types:         []TypeUsage{},
			Unused:        UnusedTypes{Entities: []string{}, Relations: []string{}},
			NotInOntology: []string{},
		})
	}
	return c.JSON(http.StatusOK, stats)
}

// Validate handles POST /api/ontology/validate
// @Summary      Run compliance validation
// @Description  Scores live graph instances against the declared schema
// @Tags         ontology
// @Produce      json
// @Success      200 {object} ComplianceResult "Compliance result"
// @Failure      400 {object} apperror.Error "Malformed schema"
// @Failure      502 {object} apperror.Error "Graph store unavailable"
// @Router       /api/ontology/validate [post]
func (h *Handler) Validate(c echo.Context) error {
	result, err := h.svc.ValidateCompliance(c.Request().Context())
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewUpstream("compliance scan failed", err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetDiff handles GET /api/ontology/diff
// @Summary      Diff declared vs observed schema
// @Tags         ontology
// @Produce      json
// @Success      200 {object} OntologyDiff "Diff result"
// @Router       /api/ontology/diff [get]
func (h *Handler) GetDiff(c echo.Context) error {
	diff, err := h.svc.GetDiff(c.Request().Context())
	if err != nil {
		h.log.Warn("diff degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, &OntologyDiff{
			EntitiesOnlyInA:  []string{},
			EntitiesOnlyInB:  []string{},
			EntitiesInBoth:   []string{},
			RelationsOnlyInA: []string{},
			RelationsOnlyInB: []string{},
			RelationsInBoth:  []string{},
		})
	}
	return c.JSON(http.StatusOK, diff)
}

// Extract handles POST /api/ontology/extract
// @Summary      Extract observed schema from the graph
// @Tags         ontology
// @Produce      json
// @Success      200 {object} ExtractedOntology "Observed snapshot"
// @Failure      502 {object} apperror.Error "Graph store unavailable"
// @Router       /api/ontology/extract [post]
func (h *Handler) Extract(c echo.Context) error {
	extracted, err := h.svc.Extract(c.Request().Context())
	if err != nil {
		return apperror.NewUpstream("ontology extraction failed", err)
	}
	return c.JSON(http.StatusOK, extracted)
}

// Merge handles POST /api/ontology/merge
// @Summary      Merge extracted schema into declared schema
// @Description  Adds new observed types; mergeProperties/mergeEndpoints union definitions for shared types. Without save, returns a preview.
// @Tags         ontology
// @Accept       json
// @Produce      json
// @Param        request body MergeRequest true "Merge options"
// @Success      200 {object} MergeResponse "Merged schema"
// @Failure      400 {object} apperror.Error "Bad request"
// @Failure      502 {object} apperror.Error "Graph store unavailable"
// @Router       /api/ontology/merge [post]
func (h *Handler) Merge(c echo.Context) error {
	var req MergeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	schema, summary, err := h.svc.Merge(c.Request().Context(), req.Extracted, MergeOptions{
		MergeProperties: req.MergeProperties,
		MergeEndpoints:  req.MergeEndpoints,
		Save:            req.Save,
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("merge failed", err)
	}

	return c.JSON(http.StatusOK, MergeResponse{Schema: schema, Summary: summary})
}

// GetUnused handles GET /api/ontology/unused
// @Summary      Find unused declared types
// @Tags         ontology
// @Produce      json
// @Success      200 {object} UnusedTypes "Unused types"
// @Router       /api/ontology/unused [get]
func (h *Handler) GetUnused(c echo.Context) error {
	unused, err := h.svc.FindUnused(c.Request().Context())
	if err != nil {
		h.log.Warn("unused lookup degraded to empty", logger.Error(err))
		return c.JSON(http.StatusOK, &UnusedTypes{Entities: []string{}, Relations: []string{}})
	}
	return c.JSON(http.StatusOK, unused)
}

// RemoveUnused handles DELETE /api/ontology/unused
// @Summary      Remove unused declared types
// @Description  Deletes declared types with zero live instances, recording an audit entry per removal
// @Tags         ontology
// @Produce      json
// @Success      200 {object} UnusedTypes "Removed types"
// @Failure      500 {object} apperror.Error "Internal server error"
// @Router       /api/ontology/unused [delete]
func (h *Handler) RemoveUnused(c echo.Context) error {
	removed, err := h.svc.RemoveUnused(c.Request().Context())
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.NewInternal("failed to remove unused types", err)
	}
	return c.JSON(http.StatusOK, removed)
}
