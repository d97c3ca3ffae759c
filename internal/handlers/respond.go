package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/paypal"
	"github.com/gitshopapp/storefront/internal/services"
	stripewebhook "github.com/gitshopapp/storefront/internal/stripe"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and reported as a 500 without detail.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		message := "Invalid input"
		if validationErr.Err != nil {
			message = validationErr.Err.Error()
		}
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: message, Fields: validationErr.Fields})
		return
	}

	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.loggerFromContext(r.Context()).Error("request failed", "error", err)
	}
	h.writeJSON(w, r, status, errorResponse{Error: message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrOrderItemNotFound),
		errors.Is(err, services.ErrAddressNotFound),
		errors.Is(err, services.ErrStripePaymentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrLoginRequired), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Login required"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, paypal.ErrMalformedConfirmation),
		errors.Is(err, stripewebhook.ErrMissingSignature),
		errors.Is(err, stripewebhook.ErrInvalidPayload):
		return http.StatusBadRequest, "Invalid payload"
	case errors.Is(err, paypal.ErrVerificationFailed):
		return http.StatusPaymentRequired, "Payment could not be verified"
	case errors.Is(err, services.ErrPaymentsDisabled):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// pathID reads a positive integer route variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageNumber(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
