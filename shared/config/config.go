package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

type Config struct {
	Dates      DatesConfig      `yaml:"dates"`
	Arxiv      ArxivConfig      `yaml:"arxiv"`
	AI         AIConfig         `yaml:"ai"`
	Email      EmailConfig      `yaml:"email"`
	Digest     DigestConfig     `yaml:"digest"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

// DatesConfig holds the raw search window. Empty values are resolved per run.
type DatesConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type ArxivConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Categories []string      `yaml:"categories"`
	MaxResults int           `yaml:"max_results"`
	PageSize   int           `yaml:"page_size"`
	PageDelay  time.Duration `yaml:"page_delay"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
}

type AIConfig struct {
	Provider       string   `yaml:"provider"`
	DeepSeekAPIKey string   `yaml:"deepseek_api_key"`
	GeminiAPIKey   string   `yaml:"gemini_api_key"`
	BaseURL        string   `yaml:"base_url"`
	Temperature    float64  `yaml:"temperature"`
	MaxTokens      int      `yaml:"max_tokens"`
	Thinking       bool     `yaml:"thinking"`
	ChatModel      string   `yaml:"chat_model"`
	ReasoningModel string   `yaml:"reasoning_model"`
	Topic          string   `yaml:"topic"`
	Keywords       []string `yaml:"keywords"`
	Language       string   `yaml:"language"`
}

type EmailConfig struct {
	SMTPHost     string        `yaml:"smtp_host"`
	SSLPort      int           `yaml:"ssl_port"`
	StartTLSPort int           `yaml:"starttls_port"`
	Sender       string        `yaml:"sender"`
	Password     string        `yaml:"password"`
	Recipients   []string      `yaml:"recipients"`
	Timeout      time.Duration `yaml:"timeout"`
	Subject      string        `yaml:"subject"`
}

type DigestConfig struct {
	DumpPath     string `yaml:"dump_path"`
	PreviewCount int    `yaml:"preview_count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

// Default returns a Config with every optional setting filled in.
func Default() Config {
	return Config{
		Arxiv: ArxivConfig{
			BaseURL:    "https://export.arxiv.org",
			Categories: []string{"astro-ph.GA", "astro-ph.CO"},
			MaxResults: 1000,
			PageSize:   100,
			PageDelay:  3 * time.Second,
			Timeout:    60 * time.Second,
			UserAgent:  "astro-digest/1.0",
		},
		AI: AIConfig{
			Provider:    ProviderDeepSeek,
			Temperature: 0.3,
			MaxTokens:   8192,
			Thinking:    true,
			Topic:       "high-redshift galaxies",
			Keywords: []string{
				"high-redshift galaxies", "AGN", "galaxy evolution", "early universe",
				"galaxy formation", "ISM", "CGM", "IGM", "reionization", "JWST", "ALMA", "VLA",
			},
			Language: "Simplified Chinese",
		},
		Email: EmailConfig{
			SMTPHost:     "smtp.qq.com",
			SSLPort:      465,
			StartTLSPort: 587,
			Timeout:      10 * time.Second,
		},
		Digest: DigestConfig{
			PreviewCount: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Monitoring: MonitoringConfig{
			HealthPort: 8080,
		},
		Schedule: "0 0 9 * * *", // Daily at 9 AM
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment-only setup, as in CI
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.fillModelDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	setString(&c.Dates.Start, "TARGET_DATE1")
	setString(&c.Dates.End, "TARGET_DATE2")

	if v := os.Getenv("ARXIV_CATEGORIES"); v != "" {
		c.Arxiv.Categories = splitList(v)
	}

	setString(&c.AI.Provider, "LLM_PROVIDER")
	setString(&c.AI.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	setString(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	errs = append(errs,
		setFloat(&c.AI.Temperature, "LLM_TEMPERATURE"),
		setInt(&c.AI.MaxTokens, "LLM_MAX_TOKENS"),
		setBool(&c.AI.Thinking, "LLM_THINKING"),
	)

	setString(&c.Email.SMTPHost, "SMTP_HOST")
	setString(&c.Email.Sender, "EMAIL_SENDER")
	setString(&c.Email.Password, "EMAIL_PASSWORD")
	if v := os.Getenv("EMAIL_RECEIVER"); v != "" {
		c.Email.Recipients = splitList(v)
	}
	errs = append(errs,
		setInt(&c.Email.SSLPort, "SMTP_SSL_PORT"),
		setInt(&c.Email.StartTLSPort, "SMTP_STARTTLS_PORT"),
	)

	setString(&c.Digest.DumpPath, "PAPERS_DUMP")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Logging.File, "LOG_FILE")
	setString(&c.Schedule, "SCHEDULE")
	errs = append(errs, setInt(&c.Monitoring.HealthPort, "HEALTH_PORT"))

	return errors.Join(errs...)
}

func (c *Config) fillModelDefaults() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))

	var chat, reasoning string
	switch c.AI.Provider {
	case ProviderGemini:
		chat, reasoning = "gemini-2.5-flash", "gemini-2.5-pro"
	default:
		chat, reasoning = "deepseek-chat", "deepseek-reasoner"
		if c.AI.BaseURL == "" {
			c.AI.BaseURL = "https://api.deepseek.com"
		}
	}
	if c.AI.ChatModel == "" {
		c.AI.ChatModel = chat
	}
	if c.AI.ReasoningModel == "" {
		c.AI.ReasoningModel = reasoning
	}
}

// APIKey returns the key of the configured LLM provider
func (a AIConfig) APIKey() string {
	if a.Provider == ProviderGemini {
		return a.GeminiAPIKey
	}
	return a.DeepSeekAPIKey
}

// Model picks the reasoning variant when thinking mode is on
func (a AIConfig) Model() string {
	if a.Thinking {
		return a.ReasoningModel
	}
	return a.ChatModel
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s must be a number, got %q", key, v)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	*dst = b
	return nil
}

// splitList accepts "a,b", "a; b", a JSON array or a Python list literal.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var out []string
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `"'`)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
