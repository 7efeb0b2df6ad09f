package scheduler

import "go.uber.org/fx"

// Module expects an Agent to be provided by the caller.
func Module() fx.Option {
	return fx.Module(
		"scheduler",
		fx.Provide(New),
	)
}
