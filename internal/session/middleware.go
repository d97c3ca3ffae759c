package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gitshopapp/storefront/internal/logging"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	// ctxKey is the key used to store the session in context
	ctxKey contextKey = "session"
)

// Middleware makes sure every request carries a session, starting an
// anonymous one for first-time visitors.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Ensure(r.Context(), w, r)
		if err != nil {
			logging.FromContext(r.Context(), nil).Error("failed to start session", slog.Any("error", err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey, s)
}

// FromContext retrieves the session stored by Middleware.
func FromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	s, ok := ctx.Value(ctxKey).(*Session)
	if !ok {
		return nil
	}
	return s
}
