package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"astro-digest/internal/models"
	"astro-digest/shared/config"

	"go.uber.org/zap"
)

const (
	// NoPapersMessage is returned by Analyze when there is nothing to analyze
	NoPapersMessage = "No papers were fetched for this date range."

	// FailurePrefix starts the text Analyze returns when the request failed
	FailurePrefix = "AI analysis failed: "
)

var errEmptyCompletion = errors.New("model returned an empty completion")

// CompletionRequest is one chat completion: a system instruction and a user prompt
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer sends a single non-streaming chat completion request
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type Analyzer struct {
	completer Completer
	config    config.AIConfig
	logger    *zap.Logger
}

func NewAnalyzer(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*Analyzer, error) {
	var (
		completer Completer
		err       error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		completer, err = NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	case config.ProviderDeepSeek:
		completer = NewDeepSeekCompleter(cfg.DeepSeekAPIKey, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	return NewAnalyzerWithCompleter(completer, cfg, logger), nil
}

func NewAnalyzerWithCompleter(completer Completer, cfg *config.AIConfig, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		completer: completer,
		config:    *cfg,
		logger:    logger.Named("ai"),
	}
}

// Model is the identifier that will be sent with the next request
func (a *Analyzer) Model() string {
	return a.config.Model()
}

// Analyze asks the model for the HTML digest of papers. It never fails:
// request errors come back as a readable message so that the caller can
// still mail something.
func (a *Analyzer) Analyze(ctx context.Context, papers []models.Paper, window models.DateWindow) string {
	if len(papers) == 0 {
		return NoPapersMessage
	}

	out, err := a.analyze(ctx, papers, window)
	if err != nil {
		a.logger.Error("LLM analysis failed", zap.String("model", a.Model()), zap.Error(err))
		return FailurePrefix + err.Error()
	}

	a.logger.Info("LLM analysis complete",
		zap.String("model", a.Model()),
		zap.Int("papers", len(papers)),
		zap.Int("response_chars", len(out)),
	)
	return out
}

func (a *Analyzer) analyze(ctx context.Context, papers []models.Paper, window models.DateWindow) (string, error) {
	model := a.Model()

	prompt, err := BuildPrompt(papers, window, PromptOptions{
		Topic:    a.config.Topic,
		Keywords: a.config.Keywords,
		Language: a.config.Language,
		Model:    model,
	})
	if err != nil {
		return "", err
	}

	a.logger.Debug("Sending prompt", zap.String("model", model), zap.Int("prompt_chars", len(prompt)))

	text, err := a.completer.Complete(ctx, CompletionRequest{
		Model:       model,
		System:      systemPrompt(a.config.Language),
		Prompt:      prompt,
		Temperature: a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyCompletion
	}

	return text, nil
}
