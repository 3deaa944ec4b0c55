package canvas

import (
	"context"
	"log/slog"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

// Service loads graph instances and produces rendered canvas scenes
type Service struct {
	graphRepo *graph.Repository
	adapter   *Adapter
	renderer  Renderer
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates the canvas service
func NewService(
	graphRepo *graph.Repository,
	adapter *Adapter,
	renderer Renderer,
	cfg *config.Config,
	log *slog.Logger,
) *Service {
	return &Service{
		graphRepo: graphRepo,
		adapter:   adapter,
		renderer:  renderer,
		cfg:       cfg,
		log:       log.With(logger.Scope("canvas")),
	}
}

// SceneQuery filters the canvas load
type SceneQuery struct {
	Types     []string
	Community *int
	Limit     int
}

// SceneResponse is the scene plus its rendered payload
type SceneResponse struct {
	Scene  *Scene  `json:"scene"`
	Handle *Handle `json:"handle"`
}

// LoadScene fetches nodes matching the query plus the relationships
// among them, builds the scene, and renders it.
func (s *Service) LoadScene(ctx context.Context, query SceneQuery) (*SceneResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = s.cfg.Canvas.NodeLimit
	}

	objects, err := s.graphRepo.ListObjects(ctx, graph.ObjectQuery{
		Types:     query.Types,
		Community: query.Community,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(objects))
	for i, obj := range objects {
		ids[i] = obj.ID
	}

	rels, err := s.graphRepo.ListRelationshipsAmong(ctx, ids)
	if err != nil {
		return nil, err
	}

	scene := s.adapter.BuildScene(objects, rels)
	handle, err := s.renderer.Render(scene)
	if err != nil {
		return nil, err
	}

	s.log.Debug("canvas scene loaded",
		slog.Int("nodes", len(scene.Nodes)),
		slog.Int("edges", len(scene.Edges)),
		slog.Int("dangling", scene.DanglingEdges),
	)

	return &SceneResponse{Scene: scene, Handle: handle}, nil
}
