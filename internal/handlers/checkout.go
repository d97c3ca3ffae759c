package handlers

import (
	"net/http"

	"github.com/gitshopapp/storefront/internal/services"
)

func (h *Handlers) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	checkout, err := h.checkout.Context(r.Context(), sess, shopper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, checkout)
}

// Checkout attaches billing and shipping addresses to the active order.
// Each side is either selected_<side>_address or the freeform
// <side>_address_line_1, <side>_address_line_2, <side>_zip_code and
// <side>_city fields.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	input := services.CheckoutInput{
		Billing:  addressInput(r, "billing"),
		Shipping: addressInput(r, "shipping"),
	}
	order, err := h.checkout.SubmitAddresses(r.Context(), sess, shopper, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"order":    order,
		"next_url": "/payment/",
	})
}

func addressInput(r *http.Request, side string) services.AddressInput {
	return services.AddressInput{
		SelectedID:   formInt64(r, "selected_"+side+"_address"),
		AddressLine1: r.FormValue(side + "_address_line_1"),
		AddressLine2: r.FormValue(side + "_address_line_2"),
		ZipCode:      r.FormValue(side + "_zip_code"),
		City:         r.FormValue(side + "_city"),
	}
}
