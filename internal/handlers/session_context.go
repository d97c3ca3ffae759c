package handlers

import (
	"errors"
	"net/http"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/session"
)

var errNoSession = errors.New("request has no session")

// requestSession returns the session loaded by SessionMiddleware.
func (h *Handlers) requestSession(r *http.Request) (*session.Session, error) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil, errNoSession
	}
	return sess, nil
}

// shopperFromRequest identifies the caller. A bearer token wins over the
// identity stored in the session; an invalid token is an error.
func (h *Handlers) shopperFromRequest(r *http.Request) (models.Shopper, error) {
	if token := auth.BearerToken(r); token != "" {
		return h.verifier.Verify(token)
	}

	sess := session.FromContext(r.Context())
	if sess == nil || sess.Data == nil {
		return models.Shopper{}, nil
	}
	return models.Shopper{
		UserID: sess.Data.UserID,
		Email:  sess.Data.Email,
		Staff:  sess.Data.Staff,
	}, nil
}

// requestContext resolves both the session and the shopper, writing the error
// response itself when either fails.
func (h *Handlers) requestContext(w http.ResponseWriter, r *http.Request) (*session.Session, models.Shopper, bool) {
	sess, err := h.requestSession(r)
	if err != nil {
		h.writeError(w, r, err)
		return nil, models.Shopper{}, false
	}
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return nil, models.Shopper{}, false
	}
	return sess, shopper, true
}
