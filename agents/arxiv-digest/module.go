package arxivdigest

import (
	"astro-digest/agents/arxiv-digest/arxiv"
	"astro-digest/shared/ai"
	"astro-digest/shared/config"
	"astro-digest/shared/email"
	"astro-digest/shared/scheduler"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"arxiv-digest",
		fx.Provide(
			func(cfg *config.Config, papers *arxiv.Client, analyzer *ai.Analyzer, mailer *email.Sender, logger *zap.Logger) *Agent {
				return NewAgent(cfg, papers, analyzer, mailer, logger)
			},
			func(a *Agent) scheduler.Agent { return a },
		),
	)
}
