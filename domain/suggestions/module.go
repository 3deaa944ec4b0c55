package suggestions

import (
	"go.uber.org/fx"

	"github.com/ontoscope/ontoscope/domain/ontology"
)

// Module provides the suggestion lifecycle and the change audit ledger
var Module = fx.Module("suggestions",
	fx.Provide(NewRepository),
	fx.Provide(NewAuditRepository),
	fx.Provide(func(r *AuditRepository) ontology.ChangeLogger { return r }),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
