package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
)

type cartResponse struct {
	Order    *models.Order `json:"order"`
	Subtotal string        `json:"subtotal"`
	Total    string        `json:"total"`
}

func newCartResponse(order *models.Order) cartResponse {
	return cartResponse{Order: order, Subtotal: order.Subtotal(), Total: order.Total()}
}

// CartSummary renders the active order.
func (h *Handlers) CartSummary(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	order, err := h.cart.Summary(r.Context(), sess, shopper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newCartResponse(order))
}

// AddToCartForm returns the product an add-to-cart form is built for.
func (h *Handlers) AddToCartForm(w http.ResponseWriter, r *http.Request) {
	product, err := h.cart.Product(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"product":           product,
		"available_colours": product.Colours,
		"available_sizes":   product.Sizes,
	})
}

// AddToCart takes quantity, colour and size form fields.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	input := services.AddItemInput{
		Slug:     mux.Vars(r)["slug"],
		Quantity: formInt(r, "quantity"),
		ColourID: formInt64(r, "colour"),
		SizeID:   formInt64(r, "size"),
	}
	item, err := h.cart.AddItem(r.Context(), sess, shopper, input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.loggerFromContext(r.Context()).Info("item added to cart", "order_id", item.OrderID, "item_id", item.ID, "quantity", item.Quantity)
	h.writeJSON(w, r, http.StatusOK, map[string]any{"item": item})
}

func (h *Handlers) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, h.cart.IncreaseQuantity)
}

func (h *Handlers) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, h.cart.DecreaseQuantity)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.mutateCart(w, r, h.cart.RemoveItem)
}

type cartMutation func(ctx context.Context, session services.CartSession, shopper models.Shopper, itemID int64) error

// mutateCart applies a line mutation and answers with the updated cart.
func (h *Handlers) mutateCart(w http.ResponseWriter, r *http.Request, mutate cartMutation) {
	sess, shopper, ok := h.requestContext(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "id")
	if !ok {
		h.writeError(w, r, services.ErrOrderItemNotFound)
		return
	}

	if err := mutate(r.Context(), sess, shopper, itemID); err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.cart.Summary(r.Context(), sess, shopper)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newCartResponse(order))
}

func formInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return 0
	}
	return value
}

func formInt64(r *http.Request, key string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(key)), 10, 64)
	if err != nil {
		return 0
	}
	return value
}
