package main

import (
	"context"
	"os"

	arxivdigest "astro-digest/agents/arxiv-digest"
	"astro-digest/agents/arxiv-digest/arxiv"
	"astro-digest/shared/ai"
	"astro-digest/shared/config"
	"astro-digest/shared/email"
	"astro-digest/shared/logging"
	"astro-digest/shared/monitoring"
	"astro-digest/shared/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, analyze and mail one digest",
	Long: `run performs a single digest run and exits. Outside GitHub Actions it
does nothing unless --local is given. Analysis and delivery failures are
logged but do not change the exit code; only a failed fetch does.`,
	RunE: runDigest,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the digest on the configured cron schedule",
	RunE:  runSchedule,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and preview papers without calling the LLM or sending email",
	RunE:  runFetch,
}

func init() {
	runCmd.Flags().Bool("local", false, "run outside GitHub Actions")
	runCmd.Flags().String("dump", "", "also write the fetched papers to this JSON file")
	fetchCmd.Flags().String("dump", "", "write the fetched papers to this JSON file")
}

// overrideDump replaces the configured dump path when --dump is set
func overrideDump(cmd *cobra.Command) fx.Option {
	dump, _ := cmd.Flags().GetString("dump")
	return fx.Decorate(func(cfg *config.Config) *config.Config {
		if dump != "" {
			cfg.Digest.DumpPath = dump
		}
		return cfg
	})
}

// digestApp wires the full graph. Configuration is validated before any
// client is built.
func digestApp(extra ...fx.Option) []fx.Option {
	return append([]fx.Option{
		config.Module(),
		logging.Module(),
		logging.WithFxLogger(),
		fx.Invoke(func(cfg *config.Config) error { return cfg.Validate() }),
		arxiv.Module(),
		ai.Module(),
		email.Module(),
		monitoring.Module(),
		arxivdigest.Module(),
		scheduler.Module(),
	}, extra...)
}

func startApp(ctx context.Context, opts ...fx.Option) (*fx.App, error) {
	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func stopApp(app *fx.App) {
	_ = app.Stop(context.Background())
}

// shouldRun reports whether a digest run may proceed: only inside GitHub
// Actions, or anywhere with --local.
func shouldRun(env func(string) string, local bool) bool {
	return local || env("GITHUB_ACTIONS") == "true"
}

func runDigest(cmd *cobra.Command, _ []string) error {
	// Configuration is not even loaded outside CI unless asked for
	local, _ := cmd.Flags().GetBool("local")
	if !shouldRun(os.Getenv, local) {
		logger, _, err := logging.New(config.Default().Logging)
		if err != nil {
			return err
		}
		logger.Error("Not running in GitHub Actions, refusing to send a digest (pass --local to override)")
		return nil
	}

	var (
		agent *arxivdigest.Agent
		s     *scheduler.Scheduler
	)

	app, err := startApp(cmd.Context(), digestApp(
		overrideDump(cmd),
		fx.Populate(&agent, &s),
	)...)
	if err != nil {
		return err
	}
	defer stopApp(app)

	if err := agent.Initialize(); err != nil {
		return err
	}
	return s.RunOnce(cmd.Context())
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	var (
		s      *scheduler.Scheduler
		logger *zap.Logger
	)

	app, err := startApp(cmd.Context(), digestApp(fx.Populate(&s, &logger))...)
	if err != nil {
		return err
	}
	defer stopApp(app)

	logger.Info("Starting scheduler...")
	if err := s.Start(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

func runFetch(cmd *cobra.Command, _ []string) error {
	var (
		cfg    *config.Config
		client *arxiv.Client
		logger *zap.Logger
	)

	app, err := startApp(cmd.Context(),
		config.Module(),
		logging.Module(),
		logging.WithFxLogger(),
		arxiv.Module(),
		overrideDump(cmd),
		fx.Populate(&cfg, &client, &logger),
	)
	if err != nil {
		return err
	}
	defer stopApp(app)

	_, err = arxivdigest.FetchPapers(cmd.Context(), cfg, client, cfg.Digest.DumpPath, os.Stdout, logger)
	return err
}
