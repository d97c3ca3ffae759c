package handlers

import (
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/session"
)

// CreateSession exchanges an identity token for a logged-in session. The
// token comes from the token form field or the Authorization header. The
// session id is rotated and the anonymous cart is kept.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		token = auth.BearerToken(r)
	}
	if token == "" {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "token is required"})
		return
	}

	shopper, err := h.verifier.Verify(token)
	if err != nil {
		logger.Warn("rejected identity token", "error", err)
		h.writeError(w, r, err)
		return
	}

	sess, err := h.sessionManager.Rotate(ctx, w, r, &session.Data{
		UserID: shopper.UserID,
		Email:  shopper.Email,
		Staff:  shopper.Staff,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	logger.Info("user logged in", "user_id", shopper.UserID, "staff", shopper.Staff)
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"user_id":  shopper.UserID,
		"email":    shopper.Email,
		"staff":    shopper.Staff,
		"order_id": sess.OrderID(),
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.sessionManager.DestroySession(ctx, w, r); err != nil {
		h.loggerFromContext(ctx).Error("failed to destroy session", "error", err)
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}
