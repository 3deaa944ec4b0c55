package analysis

import (
	"context"

	"go.uber.org/fx"

	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/pkg/llm"
)

// Module provides the background analysis jobs: scheduler, runner,
// service and routes.
var Module = fx.Module("analysis",
	fx.Provide(NewRepository),
	fx.Provide(NewScheduler),
	fx.Provide(func(cfg *config.Config) llm.Provider {
		return llm.NewLiteLLMProvider(llm.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	}),
	fx.Provide(NewRunner),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RegisterSchedulerLifecycle),
)

// RegisterSchedulerLifecycle seeds job definitions and starts the
// recurring timeline when jobs are enabled.
func RegisterSchedulerLifecycle(lc fx.Lifecycle, svc *Service, scheduler *Scheduler, cfg *config.Config) {
	if !cfg.Jobs.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := svc.EnsureDefaults(ctx); err != nil {
				return err
			}
			return scheduler.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
}
