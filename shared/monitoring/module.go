package monitoring

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"monitoring",
		fx.Provide(NewMonitor),
	)
}
