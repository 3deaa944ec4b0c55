package sync

import (
	"context"

	"go.uber.org/fx"

	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/internal/config"
)

// Module provides the sync coordinator and starts the live-change
// listener when enabled.
var Module = fx.Module("sync",
	fx.Provide(func(r *graph.Repository) SchemaPusher { return r }),
	fx.Provide(NewCoordinator),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(lc fx.Lifecycle, c *Coordinator, cfg *config.Config) {
		if !cfg.Sync.ListenEnabled {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				c.StartListener()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				c.StopListener()
				return nil
			},
		})
	}),
)
