package handlers

import (
	"net/http"
	"strings"

	"github.com/gitshopapp/storefront/internal/services"
)

func (h *Handlers) StaffOrders(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	orders, err := h.staff.Orders(r.Context(), shopper, pageNumber(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, orders)
}

func (h *Handlers) StaffProducts(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	products, err := h.staff.Products(r.Context(), shopper, pageNumber(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, products)
}

func (h *Handlers) StaffCreateProduct(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	product, err := h.staff.CreateProduct(r.Context(), shopper, productInput(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, map[string]any{"product": product})
}

func (h *Handlers) StaffUpdateProduct(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	productID, ok := pathID(r, "id")
	if !ok {
		h.writeError(w, r, services.ErrProductNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	product, err := h.staff.UpdateProduct(r.Context(), shopper, productID, productInput(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"product": product})
}

func (h *Handlers) StaffDeleteProduct(w http.ResponseWriter, r *http.Request) {
	shopper, err := h.shopperFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	productID, ok := pathID(r, "id")
	if !ok {
		h.writeError(w, r, services.ErrProductNotFound)
		return
	}

	if err := h.staff.DeleteProduct(r.Context(), shopper, productID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productInput(r *http.Request) services.ProductInput {
	return services.ProductInput{
		Title:               r.FormValue("title"),
		Slug:                r.FormValue("slug"),
		Image:               r.FormValue("image"),
		Description:         r.FormValue("description"),
		Price:               r.FormValue("price"),
		Stock:               formInt(r, "stock"),
		Active:              formBool(r, "active"),
		PrimaryCategory:     r.FormValue("primary_category"),
		SecondaryCategories: r.Form["secondary_categories"],
		Colours:             r.Form["available_colours"],
		Sizes:               r.Form["available_sizes"],
	}
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}
