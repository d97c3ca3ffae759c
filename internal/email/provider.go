// Package email sends order notifications.
package email

import (
	"context"
	"fmt"
	"log/slog"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	APIKey string
	From   string
}

// NewProvider returns a Resend provider when an API key is configured and a
// logging no-op provider otherwise.
func NewProvider(config Config, logger *slog.Logger) (Provider, error) {
	if config.APIKey == "" {
		return NewNoopProvider(logger), nil
	}
	if config.From == "" {
		return nil, fmt.Errorf("EMAIL_FROM is required when RESEND_API_KEY is set")
	}
	return NewResendProvider(config.APIKey, config.From), nil
}

// NoopProvider drops emails after logging their recipient and subject.
type NoopProvider struct {
	logger *slog.Logger
}

func NewNoopProvider(logger *slog.Logger) *NoopProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopProvider{logger: logger}
}

func (n *NoopProvider) SendEmail(_ context.Context, email *Email) error {
	if email == nil {
		return fmt.Errorf("email is required")
	}
	n.logger.Info("email delivery disabled, dropping message", "to", email.To, "subject", email.Subject)
	return nil
}
