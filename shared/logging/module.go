package logging

import (
	"context"

	"astro-digest/shared/config"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"logging",
		fx.Provide(func(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
			logger, file, err := New(cfg.Logging)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					_ = logger.Sync()
					if file != nil {
						return file.Close()
					}
					return nil
				},
			})
			return logger, nil
		}),
	)
}

// WithFxLogger routes fx lifecycle events through zap at debug level.
func WithFxLogger() fx.Option {
	return fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
		l.UseLogLevel(zap.DebugLevel)
		return l
	})
}
