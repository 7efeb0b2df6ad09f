package ai

import (
	"context"

	"astro-digest/shared/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"ai",
		fx.Provide(func(cfg *config.Config, logger *zap.Logger) (*Analyzer, error) {
			return NewAnalyzer(context.Background(), &cfg.AI, logger)
		}),
	)
}
