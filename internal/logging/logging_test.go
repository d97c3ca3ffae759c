package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Format: "json", Output: &buf})
	logger.Debug("hidden")
	logger.Info("order placed", "order_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["msg"] != "order placed" || record["order_id"] != float64(7) {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(Options{Level: slog.LevelDebug, Format: "text", Output: &buf}).Debug("cart updated")

	if !strings.Contains(buf.String(), "cart updated") {
		t.Fatalf("expected message in output, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil))
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	if got := FromContext(WithLogger(context.Background(), scoped), fallback); got != scoped {
		t.Fatal("expected the context logger")
	}
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected the fallback logger")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Fatal("expected a no-op logger")
	}
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer
	logger := slog.New(MultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		nil,
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)).With("component", "test")

	logger.Info("info line")
	logger.Warn("warn line")

	if !strings.Contains(debugBuf.String(), "info line") || !strings.Contains(debugBuf.String(), "warn line") {
		t.Fatalf("debug handler missed records: %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "info line") {
		t.Fatalf("warn handler received info record: %q", warnBuf.String())
	}
	if !strings.Contains(warnBuf.String(), "component=test") {
		t.Fatalf("expected attrs to reach every handler: %q", warnBuf.String())
	}
}

func TestNew_FansOutToExtraHandlers(t *testing.T) {
	t.Parallel()

	var out, alerts bytes.Buffer
	logger := New(Options{
		Level:  slog.LevelInfo,
		Format: "json",
		Output: &out,
		Extra:  []slog.Handler{slog.NewTextHandler(&alerts, &slog.HandlerOptions{Level: slog.LevelError})},
	})
	logger = logger.With("order_id", 12).WithGroup("payment")

	logger.Info("order placed", "provider", "PayPal")
	logger.Error("webhook failed", "provider", "Stripe")

	if !strings.Contains(out.String(), `"msg":"order placed"`) || !strings.Contains(out.String(), `"msg":"webhook failed"`) {
		t.Fatalf("json output missed records: %q", out.String())
	}
	if strings.Contains(alerts.String(), "order placed") {
		t.Fatalf("error handler received info record: %q", alerts.String())
	}
	if !strings.Contains(alerts.String(), "order_id=12") || !strings.Contains(alerts.String(), "payment.provider=Stripe") {
		t.Fatalf("expected attrs and group on the extra handler: %q", alerts.String())
	}
}

func TestMultiHandler_SingleAndEmpty(t *testing.T) {
	t.Parallel()

	base := slog.NewTextHandler(&bytes.Buffer{}, nil)
	if got := MultiHandler(nil, base); got != base {
		t.Fatalf("expected single handler to be returned unwrapped, got %T", got)
	}
	if MultiHandler(nil).Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected handler without outputs to be disabled")
	}
}

func TestWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	ctx = WithAttrs(ctx, "order_id", 12)

	FromContext(ctx, nil).Info("cart viewed")
	if !strings.Contains(buf.String(), "order_id=12") {
		t.Fatalf("expected attribute in output, got %q", buf.String())
	}

	bare := context.Background()
	if WithAttrs(bare, "order_id", 12) != bare {
		t.Fatal("expected context without logger to be returned unchanged")
	}
}
