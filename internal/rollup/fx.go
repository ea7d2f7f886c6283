package rollup

import "go.uber.org/fx"

var Module = fx.Module("rollup",
	fx.Provide(NewService),
)
