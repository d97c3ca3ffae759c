package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handlers) ProductList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.catalog.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, listing)
}

func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Detail(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"product": product})
}
