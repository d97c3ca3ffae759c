// Package session provides cookie-backed server-side sessions for shoppers.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	cookieName = "storefront_session"
	ttl        = 14 * 24 * time.Hour
)

// Data represents the data stored in a session. OrderID is the shopper's
// active cart; the identity fields are empty for anonymous visitors.
// CreatedAt is set once when the session id is issued and bounds its
// lifetime.
type Data struct {
	OrderID   int64  `json:"order_id"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Staff     bool   `json:"staff"`
	CreatedAt int64  `json:"created_at"`
}

// Manager handles session creation, validation, and storage
type Manager struct {
	store  Store
	secure bool
	now    func() time.Time
}

// Store defines the interface for session storage
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// Session is a loaded session bound to its id. It is the explicit handle
// handlers pass to the cart binder.
type Session struct {
	ID      string
	Data    *Data
	manager *Manager
}

// OrderID returns the stored active order id, or zero.
func (s *Session) OrderID() int64 {
	if s == nil || s.Data == nil {
		return 0
	}
	return s.Data.OrderID
}

// BindOrder stores orderID as the session's active order.
func (s *Session) BindOrder(ctx context.Context, orderID int64) error {
	if s == nil || s.manager == nil {
		return fmt.Errorf("session is not initialised")
	}
	s.Data.OrderID = orderID
	return s.manager.Save(ctx, s.ID, s.Data)
}

// NewManager creates a new session manager
func NewManager(store Store, secure bool) *Manager {
	return &Manager{
		store:  store,
		secure: secure,
		now:    time.Now,
	}
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// CreateSession creates a new session and sets the cookie
func (m *Manager) CreateSession(ctx context.Context, w http.ResponseWriter, data *Data) (*Session, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if data == nil {
		return nil, fmt.Errorf("session data is required")
	}

	sessionID := generateSessionID()

	sessionData := cloneData(data)
	sessionData.CreatedAt = m.now().Unix()
	m.store.Set(ctx, sessionID, sessionData, ttl)

	http.SetCookie(w, m.cookie(sessionID, int(ttl.Seconds())))

	return &Session{ID: sessionID, Data: sessionData, manager: m}, nil
}

// GetSession retrieves the session from the request cookie.
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie found: %w", err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	data, ok := m.store.Get(ctx, cookie.Value)
	if !ok {
		return nil, fmt.Errorf("session not found or expired")
	}

	if m.remaining(data) <= 0 {
		m.store.Delete(ctx, cookie.Value)
		return nil, fmt.Errorf("session expired")
	}

	return &Session{ID: cookie.Value, Data: data, manager: m}, nil
}

// Ensure returns the request's session, starting an anonymous one when the
// cookie is missing or stale.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if s, err := m.GetSession(ctx, r); err == nil {
		return s, nil
	}
	return m.CreateSession(ctx, w, &Data{})
}

// Save writes data under an existing session id. The stored entry expires
// when the session's fixed lifetime ends.
func (m *Manager) Save(ctx context.Context, sessionID string, data *Data) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if data == nil {
		return fmt.Errorf("session data is required")
	}

	sessionData := cloneData(data)
	if sessionData.CreatedAt == 0 {
		sessionData.CreatedAt = m.now().Unix()
	}
	remaining := m.remaining(sessionData)
	if remaining <= 0 {
		m.store.Delete(ctx, sessionID)
		return fmt.Errorf("session expired")
	}
	m.store.Set(ctx, sessionID, sessionData, remaining)
	return nil
}

func (m *Manager) remaining(data *Data) time.Duration {
	return ttl - m.now().Sub(time.Unix(data.CreatedAt, 0))
}

// Rotate replaces the request's session with a new id carrying data. The
// active order id of the previous session is kept when data has none.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) (*Session, error) {
	if data == nil {
		return nil, fmt.Errorf("session data is required")
	}
	next := cloneData(data)
	if previous, err := m.GetSession(ctx, r); err == nil {
		if next.OrderID == 0 {
			next.OrderID = previous.Data.OrderID
		}
		m.store.Delete(ctx, previous.ID)
	}
	return m.CreateSession(ctx, w, next)
}

// DestroySession removes the session and clears the cookie
func (m *Manager) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if ctx == nil {
		ctx = r.Context()
	}
	if err == nil {
		m.store.Delete(ctx, cookie.Value)
	}

	http.SetCookie(w, m.cookie("", -1))

	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// generateSessionID generates a session ID.
func generateSessionID() string {
	return uuid.NewString()
}

func cloneData(data *Data) *Data {
	if data == nil {
		return nil
	}
	cloned := *data
	return &cloned
}
