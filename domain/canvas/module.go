package canvas

import (
	"go.uber.org/fx"

	"github.com/ontoscope/ontoscope/internal/config"
)

// Module provides the canvas adapter, renderer and routes
var Module = fx.Module("canvas",
	fx.Provide(LoadStyles),
	fx.Provide(NewAdapter),
	fx.Provide(func(cfg *config.Config) (Renderer, error) {
		return NewRenderer(cfg.Canvas.Renderer)
	}),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
