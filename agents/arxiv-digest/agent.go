package arxivdigest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"astro-digest/internal/models"
	"astro-digest/shared/ai"
	"astro-digest/shared/config"
	"astro-digest/shared/scheduler"
	"astro-digest/shared/storage"

	"go.uber.org/zap"
)

// Phase is a step of a digest run
type Phase int

const (
	PhaseFetching Phase = iota
	PhaseSummarizing
	PhaseAnalyzing
	PhaseSending
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "FETCHING"
	case PhaseSummarizing:
		return "SUMMARIZING"
	case PhaseAnalyzing:
		return "ANALYZING"
	case PhaseSending:
		return "SENDING"
	case PhaseDone:
		return "DONE"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// PaperSource fetches papers for every category in a window
type PaperSource interface {
	FetchAll(ctx context.Context, categories []string, window models.DateWindow) ([]models.Paper, error)
}

// Summarizer turns papers into the HTML digest body
type Summarizer interface {
	Analyze(ctx context.Context, papers []models.Paper, window models.DateWindow) string
}

// Mailer delivers the digest
type Mailer interface {
	SendHTML(ctx context.Context, htmlContent string, window models.DateWindow, subject string) bool
}

// DigestMetrics represents the metrics collected during a digest run
type DigestMetrics struct {
	Window         string `json:"window"`
	PapersFetched  int    `json:"papers_fetched"`
	AnalysisFailed bool   `json:"analysis_failed"`
	EmailSent      bool   `json:"email_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m DigestMetrics) GetSummary() string {
	switch {
	case m.PapersFetched == 0:
		return fmt.Sprintf("no papers found for %s, nothing sent", m.Window)
	case m.EmailSent && m.AnalysisFailed:
		return fmt.Sprintf("fetched %d papers, analysis failed, failure notice emailed", m.PapersFetched)
	case m.EmailSent:
		return fmt.Sprintf("fetched %d papers, digest emailed", m.PapersFetched)
	default:
		return fmt.Sprintf("fetched %d papers, email delivery failed", m.PapersFetched)
	}
}

// Agent implements the scheduler.Agent interface
type Agent struct {
	config   *config.Config
	papers   PaperSource
	analyzer Summarizer
	mailer   Mailer
	logger   *zap.Logger
	out      io.Writer
	now      func() time.Time

	phases []Phase
}

func NewAgent(cfg *config.Config, papers PaperSource, analyzer Summarizer, mailer Mailer, logger *zap.Logger) *Agent {
	return &Agent{
		config:   cfg,
		papers:   papers,
		analyzer: analyzer,
		mailer:   mailer,
		logger:   logger.Named("digest"),
		out:      os.Stdout,
		now:      time.Now,
	}
}

func (a *Agent) Name() string {
	return "arXiv Digest Agent"
}

func (a *Agent) Initialize() error {
	a.logger.Info("Initializing agent", zap.String("agent", a.Name()))

	if err := a.config.Validate(); err != nil {
		return err
	}

	a.logger.Info("Configured",
		zap.Strings("categories", a.config.Arxiv.Categories),
		zap.String("provider", a.config.AI.Provider),
		zap.String("model", a.config.AI.Model()),
		zap.Int("recipients", len(a.config.Email.Recipients)),
	)
	return nil
}

// Phases returns the phases visited by the latest run
func (a *Agent) Phases() []Phase {
	return append([]Phase(nil), a.phases...)
}

func (a *Agent) enter(p Phase) {
	a.phases = append(a.phases, p)
	a.logger.Debug("Entering phase", zap.Stringer("phase", p))
}

func (a *Agent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := DigestMetrics{}
	a.phases = nil

	run, err := a.config.ForRun(a.now())
	if err != nil {
		return fmt.Errorf("failed to resolve run configuration: %w", err)
	}
	metrics.Window = run.Window.String()
	a.logger.Info("Target dates", zap.String("window", metrics.Window))

	a.enter(PhaseFetching)
	a.logger.Info("Fetching papers...", zap.Strings("categories", run.Categories))
	papers, err := a.papers.FetchAll(ctx, run.Categories, run.Window)
	if err != nil {
		// The scheduler records returned errors as critical failures
		return fmt.Errorf("failed to fetch papers: %w", err)
	}
	metrics.PapersFetched = len(papers)

	if run.DumpPath != "" {
		if err := storage.SavePapers(run.DumpPath, papers); err != nil {
			a.partial(events, fmt.Errorf("failed to save papers: %w", err), startTime)
		} else {
			a.logger.Info("Saved papers", zap.String("path", run.DumpPath), zap.Int("count", len(papers)))
		}
	}

	if len(papers) == 0 {
		a.logger.Info("No papers found, stopping", zap.String("window", metrics.Window))
		a.enter(PhaseDone)
		a.success(events, metrics, startTime)
		return nil
	}

	a.enter(PhaseSummarizing)
	PrintPreview(a.out, papers, a.config.Digest.PreviewCount)

	a.enter(PhaseAnalyzing)
	a.logger.Info("Analyzing papers...", zap.Int("papers", len(papers)))
	body := a.analyzer.Analyze(ctx, papers, run.Window)
	if strings.HasPrefix(body, ai.FailurePrefix) {
		metrics.AnalysisFailed = true
		a.partial(events, fmt.Errorf("analysis failed, mailing the failure notice: %s", strings.TrimPrefix(body, ai.FailurePrefix)), startTime)
	}

	a.enter(PhaseSending)
	a.logger.Info("Sending email...")
	metrics.EmailSent = a.mailer.SendHTML(ctx, body, run.Window, "")
	if !metrics.EmailSent {
		a.partial(events, fmt.Errorf("digest email was not delivered"), startTime)
	}

	a.enter(PhaseDone)
	a.success(events, metrics, startTime)
	a.logger.Info("Digest run complete",
		zap.Int("papers", metrics.PapersFetched),
		zap.Bool("analysis_failed", metrics.AnalysisFailed),
		zap.Bool("email_sent", metrics.EmailSent),
	)
	return nil
}

func (a *Agent) partial(events *scheduler.AgentEvents, err error, startTime time.Time) {
	a.logger.Warn("Run degraded", zap.Error(err))
	if events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(err, time.Since(startTime))
	}
}

func (a *Agent) success(events *scheduler.AgentEvents, metrics DigestMetrics, startTime time.Time) {
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
}

// FetchPapers runs only the fetch step: it resolves the window, fetches,
// optionally dumps to dumpPath and prints the preview. Neither the LLM nor
// SMTP settings are needed.
func FetchPapers(ctx context.Context, cfg *config.Config, source PaperSource, dumpPath string, out io.Writer, logger *zap.Logger) ([]models.Paper, error) {
	run, err := cfg.ForRun(time.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("Fetching papers...", zap.String("window", run.Window.String()), zap.Strings("categories", run.Categories))
	papers, err := source.FetchAll(ctx, run.Categories, run.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch papers: %w", err)
	}

	if dumpPath != "" {
		if err := storage.SavePapers(dumpPath, papers); err != nil {
			return papers, err
		}
		logger.Info("Saved papers", zap.String("path", dumpPath), zap.Int("count", len(papers)))
	}

	PrintPreview(out, papers, cfg.Digest.PreviewCount)
	return papers, nil
}
