package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
)

// Options selects the handler New builds.
type Options struct {
	Level  slog.Level
	Format string
	Output io.Writer
	// Sentry fans records out to the Sentry client initialised by the
	// caller: errors become events, warnings and info become logs.
	Sentry bool
	// Extra handlers receive every record alongside the output handler.
	Extra []slog.Handler
}

// New builds the process logger. "json" selects the JSON handler; anything
// else gets tint's coloured text output.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var base slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		base = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
	default:
		base = tint.NewHandler(out, &tint.Options{Level: opts.Level})
	}

	handlers := []slog.Handler{base}
	if opts.Sentry {
		handlers = append(handlers, sentryslog.Option{
			EventLevel: []slog.Level{slog.LevelError},
			LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelInfo},
		}.NewSentryHandler(context.Background()))
	}
	handlers = append(handlers, opts.Extra...)

	return slog.New(MultiHandler(handlers...))
}
