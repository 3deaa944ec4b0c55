// Package main provides the entry point for the Ontoscope API server
//
// @title Ontoscope API
// @version 0.3.0
// @description Ontology reconciliation engine and graph canvas API
// @host localhost:5310
// @BasePath /
// @schemes http
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/ontoscope/ontoscope/domain/analysis"
	"github.com/ontoscope/ontoscope/domain/canvas"
	"github.com/ontoscope/ontoscope/domain/graph"
	"github.com/ontoscope/ontoscope/domain/health"
	"github.com/ontoscope/ontoscope/domain/ontology"
	"github.com/ontoscope/ontoscope/domain/suggestions"
	"github.com/ontoscope/ontoscope/domain/sync"
	"github.com/ontoscope/ontoscope/internal/config"
	"github.com/ontoscope/ontoscope/internal/database"
	"github.com/ontoscope/ontoscope/internal/migrate"
	"github.com/ontoscope/ontoscope/internal/server"
	"github.com/ontoscope/ontoscope/pkg/logger"
)

func main() {
	// Load .env files if present (for local development).
	// Load() won't overwrite existing vars, Overload() will.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,

		// Domain modules
		health.Module,
		graph.Module,
		ontology.Module,
		suggestions.Module,
		sync.Module,
		analysis.Module,
		canvas.Module,
	).Run()
}
