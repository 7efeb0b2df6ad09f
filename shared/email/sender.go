package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astro-digest/internal/models"
	"astro-digest/shared/config"

	"go.uber.org/zap"
)

// DefaultSubject is used when no subject is configured
func DefaultSubject(window models.DateWindow) string {
	return fmt.Sprintf("Daily astro-ph digest (arXiv) // %s to %s", window.StartString(), window.EndString())
}

type Sender struct {
	config     *config.EmailConfig
	transports []Transport
	logger     *zap.Logger
	now        func() time.Time
}

// NewSender delivers over implicit TLS first and falls back to STARTTLS once.
func NewSender(cfg *config.EmailConfig, logger *zap.Logger) *Sender {
	return NewSenderWithTransports(cfg, logger,
		NewSSLTransport(cfg.SMTPHost, cfg.SSLPort, cfg.Sender, cfg.Password, cfg.Timeout),
		NewStartTLSTransport(cfg.SMTPHost, cfg.StartTLSPort, cfg.Sender, cfg.Password, cfg.Timeout),
	)
}

func NewSenderWithTransports(cfg *config.EmailConfig, logger *zap.Logger, transports ...Transport) *Sender {
	return &Sender{
		config:     cfg,
		transports: transports,
		logger:     logger.Named("email"),
		now:        time.Now,
	}
}

// SendHTML mails htmlContent to every configured recipient. An empty
// subject falls back to the configured one, then to DefaultSubject.
// It reports whether a transport confirmed delivery and never returns an
// error.
func (s *Sender) SendHTML(ctx context.Context, htmlContent string, window models.DateWindow, subject string) bool {
	if subject == "" {
		subject = s.config.Subject
	}
	if subject == "" {
		subject = DefaultSubject(window)
	}

	msg, err := BuildMessage(s.config.Sender, s.config.Recipients, subject, htmlContent, s.now())
	if err != nil {
		s.logger.Error("Failed to build email", zap.Error(err))
		return false
	}

	s.logger.Info("Sending email",
		zap.Int("recipients", len(s.config.Recipients)),
		zap.String("subject", subject),
	)

	for i, t := range s.transports {
		err := t.Deliver(ctx, s.config.Sender, s.config.Recipients, msg)
		if err == nil {
			s.logger.Info("Email sent", zap.String("transport", t.Name()))
			return true
		}

		if errors.Is(err, ErrAuth) {
			s.logger.Error("SMTP authentication failed, check EMAIL_SENDER and EMAIL_PASSWORD (most providers require an app password)",
				zap.String("transport", t.Name()),
				zap.Error(err),
			)
		} else {
			s.logger.Error("Email delivery failed", zap.String("transport", t.Name()), zap.Error(err))
		}

		if i+1 < len(s.transports) {
			s.logger.Info("Retrying with fallback transport", zap.String("transport", s.transports[i+1].Name()))
		}
	}

	return false
}
