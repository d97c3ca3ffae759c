package handlers

import (
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/session"
)

// MetricsContext adds a request-scoped, pre-attributed meter to the context.
func (h *Handlers) MetricsContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attrs := []attribute.Builder{
			attribute.String("http.request_id", requestIDFromRequest(r)),
			attribute.String("http.method", r.Method),
			attribute.String("network.client.ip", clientIP(r)),
		}
		if route := routeLabel(r); route != "" {
			attrs = append(attrs, attribute.String("http.route", route))
		}
		if userAgent := strings.TrimSpace(r.UserAgent()); userAgent != "" {
			attrs = append(attrs, attribute.String("http.user_agent", userAgent))
		}

		if sess := h.peekSession(r); sess != nil && sess.Data != nil {
			if sess.Data.UserID > 0 {
				attrs = append(attrs, attribute.Int64("user.id", sess.Data.UserID))
			}
			if sess.Data.OrderID > 0 {
				attrs = append(attrs, attribute.Int64("order.id", sess.Data.OrderID))
			}
			if sess.Data.Staff {
				attrs = append(attrs, attribute.String("user.role", "staff"))
			}
		}

		meter := sentry.NewMeter(ctx).WithCtx(ctx)
		meter.SetAttributes(attrs...)

		ctx = observability.WithMeter(ctx, meter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// peekSession returns the request's session without starting one.
func (h *Handlers) peekSession(r *http.Request) *session.Session {
	if sess := session.FromContext(r.Context()); sess != nil {
		return sess
	}
	if h.sessionManager == nil {
		return nil
	}
	sess, err := h.sessionManager.GetSession(r.Context(), r)
	if err != nil {
		return nil
	}
	return sess
}
