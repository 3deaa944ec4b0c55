package health

import (
	"go.uber.org/fx"
)

// Module provides the health probes
var Module = fx.Module("health",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
