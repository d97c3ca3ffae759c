// Package cache remembers processed webhook events.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Provider is a string key/value store with per-key expiry.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

func WebhookKey(source, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", source, eventID)
}

const processedMarker = "processed"

// WebhookProcessed reports whether the event was already handled.
func WebhookProcessed(ctx context.Context, provider Provider, source, eventID string) (bool, error) {
	_, err := provider.Get(ctx, WebhookKey(source, eventID))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkWebhookProcessed records the event for ttl.
func MarkWebhookProcessed(ctx context.Context, provider Provider, source, eventID string, ttl time.Duration) error {
	return provider.Set(ctx, WebhookKey(source, eventID), processedMarker, ttl)
}
