package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"astro-digest/internal/models"
)

// ErrInvalidConfig is matched by every error returned from Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError lists every problem found in one pass
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// RunConfig is the fully resolved configuration for a single run
type RunConfig struct {
	Window     models.DateWindow
	Categories []string
	AI         AIConfig
	Email      EmailConfig
	DumpPath   string
}

// ForRun resolves the search window relative to now. An unset start date
// means yesterday; an unset end date means the start date.
func (c *Config) ForRun(now time.Time) (*RunConfig, error) {
	window, err := c.Dates.Resolve(now)
	if err != nil {
		return nil, err
	}

	return &RunConfig{
		Window:     window,
		Categories: append([]string(nil), c.Arxiv.Categories...),
		AI:         c.AI,
		Email:      c.Email,
		DumpPath:   c.Digest.DumpPath,
	}, nil
}

func (d DatesConfig) Resolve(now time.Time) (models.DateWindow, error) {
	loc := now.Location()

	var start time.Time
	if s := strings.TrimSpace(d.Start); s != "" {
		t, err := time.ParseInLocation(models.DateLayout, s, loc)
		if err != nil {
			return models.DateWindow{}, fmt.Errorf("TARGET_DATE1 %q is not a YYYY-MM-DD date: %w", s, err)
		}
		start = t
	} else {
		y, m, day := now.AddDate(0, 0, -1).Date()
		start = time.Date(y, m, day, 0, 0, 0, 0, loc)
	}

	end := start
	if s := strings.TrimSpace(d.End); s != "" {
		t, err := time.ParseInLocation(models.DateLayout, s, loc)
		if err != nil {
			return models.DateWindow{}, fmt.Errorf("TARGET_DATE2 %q is not a YYYY-MM-DD date: %w", s, err)
		}
		end = t
	}

	if end.Before(start) {
		return models.DateWindow{}, fmt.Errorf("TARGET_DATE2 %s is before TARGET_DATE1 %s",
			end.Format(models.DateLayout), start.Format(models.DateLayout))
	}

	return models.DateWindow{Start: start, End: end}, nil
}

// Validate reports missing secrets and out of range values before any
// network call is made.
func (c *Config) Validate() error {
	var problems []string

	if _, err := c.Dates.Resolve(time.Now()); err != nil {
		problems = append(problems, err.Error())
	}

	if len(c.Arxiv.Categories) == 0 {
		problems = append(problems, "at least one arXiv category is required (ARXIV_CATEGORIES)")
	}
	if c.Arxiv.MaxResults <= 0 {
		problems = append(problems, "arxiv.max_results must be positive")
	}

	switch c.AI.Provider {
	case ProviderDeepSeek:
		if c.AI.DeepSeekAPIKey == "" {
			problems = append(problems, "DeepSeek API key is required (set DEEPSEEK_API_KEY or ai.deepseek_api_key)")
		}
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			problems = append(problems, "Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown LLM provider %q (want %s or %s)", c.AI.Provider, ProviderDeepSeek, ProviderGemini))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("LLM temperature %.2f is outside [0, 2]", c.AI.Temperature))
	}
	if c.AI.MaxTokens <= 0 {
		problems = append(problems, "LLM max tokens must be positive")
	}

	if c.Email.Sender == "" {
		problems = append(problems, "Email sender is required (set EMAIL_SENDER or email.sender)")
	}
	if c.Email.Password == "" {
		problems = append(problems, "Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	if len(c.Email.Recipients) == 0 {
		problems = append(problems, "at least one recipient is required (set EMAIL_RECEIVER or email.recipients)")
	}
	if c.Email.SMTPHost == "" {
		problems = append(problems, "SMTP host is required (set SMTP_HOST or email.smtp_host)")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
