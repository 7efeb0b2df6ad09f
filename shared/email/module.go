package email

import (
	"astro-digest/shared/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"email",
		fx.Provide(func(cfg *config.Config, logger *zap.Logger) *Sender {
			return NewSender(&cfg.Email, logger)
		}),
	)
}
