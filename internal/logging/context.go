// Package logging carries request-scoped slog loggers through contexts and
// builds the process logger.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

var discard = slog.New(slog.DiscardHandler)

// WithLogger returns a context that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = discard
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithAttrs adds attributes to the context's logger so every later log line
// for the request carries them. It is a no-op when ctx has no logger.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil || len(args) == 0 {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger.With(args...))
}

// FromContext returns the logger stored in ctx, then fallback, then a
// logger that discards everything.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return discard
}
