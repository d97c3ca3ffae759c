package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/internal/paypal"
)

const maxConfirmationBodyBytes = 64 << 10

// PaymentForm returns what the PayPal buttons need.
func (h *Handlers) PaymentForm(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	payment, err := h.paypal.Context(r.Context(), sess, shopper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, payment)
}

// ConfirmOrder receives the PayPal order the client captured.
func (h *Handlers) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxConfirmationBodyBytes))
	if err != nil {
		h.writeError(w, r, errors.Join(paypal.ErrMalformedConfirmation, err))
		return
	}

	payment, err := h.paypal.ConfirmOrder(r.Context(), sess, shopper, body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.loggerFromContext(r.Context()).Info("paypal payment recorded", "order_id", payment.OrderID, "payment_id", payment.ID)
	h.writeJSON(w, r, http.StatusOK, map[string]string{"data": "Success"})
}

// StripePaymentForm creates a PaymentIntent and lists saved cards.
func (h *Handlers) StripePaymentForm(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	payment, err := h.stripe.PreparePayment(r.Context(), sess, shopper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, payment)
}

// StripePayment charges the saved card named by the selectedCard field.
// A card decline is answered with a warning, not an error status.
func (h *Handlers) StripePayment(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	result, err := h.stripe.ChargeSavedCard(r.Context(), sess, shopper, strings.TrimSpace(r.FormValue("selectedCard")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}
