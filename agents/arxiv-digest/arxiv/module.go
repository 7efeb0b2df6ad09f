package arxiv

import (
	"astro-digest/shared/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"arxiv",
		fx.Provide(func(cfg *config.Config, logger *zap.Logger) *Client {
			return NewClient(&cfg.Arxiv, logger)
		}),
	)
}
