package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	Port        string `env:"PORT" envDefault:"8080"`

	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY" validate:"required_with=StripeSecretKey"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET" validate:"required_with=StripeSecretKey"`
	Currency             string `env:"CURRENCY" envDefault:"usd" validate:"required,len=3,lowercase"`

	PayPalClientID     string `env:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string `env:"PAYPAL_CLIENT_SECRET"`
	PayPalAPIBase      string `env:"PAYPAL_API_BASE" envDefault:"https://api-m.sandbox.paypal.com" validate:"required,url"`

	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET,required" validate:"required,min=32"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" validate:"required_with=ResendAPIKey"`

	CacheProvider        string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisAddr            string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
}

var configValidator = validator.New()

// Load reads a .env file when present, then parses and validates the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasPayPalClientID := strings.TrimSpace(c.PayPalClientID) != ""
	hasPayPalClientSecret := strings.TrimSpace(c.PayPalClientSecret) != ""
	if hasPayPalClientSecret && !hasPayPalClientID {
		return fmt.Errorf("PAYPAL_CLIENT_SECRET requires PAYPAL_CLIENT_ID")
	}

	parsed, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("BASE_URL must be a valid absolute URL")
	}
	if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
		return fmt.Errorf("BASE_URL must use https outside local development")
	}

	return nil
}

// SecureCookies reports whether session cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(strings.ToLower(c.BaseURL), "https://")
}

// PayPalVerification reports whether PayPal confirmations are checked against
// the PayPal API.
func (c *Config) PayPalVerification() bool {
	return strings.TrimSpace(c.PayPalClientID) != "" && strings.TrimSpace(c.PayPalClientSecret) != ""
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
