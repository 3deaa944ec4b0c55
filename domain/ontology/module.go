package ontology

import (
	"context"

	"go.uber.org/fx"

	"github.com/ontoscope/ontoscope/domain/graph"
)

// Module provides the ontology domain: schema store, observer, diff and
// compliance services. The schema snapshot is loaded on startup.
var Module = fx.Module("ontology",
	fx.Provide(NewSchemaStore),
	fx.Provide(func(r *graph.Repository) GraphSource { return r }),
	fx.Provide(NewObserver),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(lc fx.Lifecycle, store *SchemaStore) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return store.Load(ctx)
			},
		})
	}),
)
