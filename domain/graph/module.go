package graph

import (
	"go.uber.org/fx"
)

// Module provides the graph instance store repository
var Module = fx.Module("graph",
	fx.Provide(NewRepository),
)
