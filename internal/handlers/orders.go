package handlers

import (
	"net/http"

	"github.com/gitshopapp/storefront/internal/services"
)

func (h *Handlers) OrderDetail(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orderID, ok := pathID(r, "id")
	if !ok {
		h.writeError(w, r, services.ErrOrderNotFound)
		return
	}

	detail, err := h.orders.Detail(r.Context(), shopper, orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, detail)
}
