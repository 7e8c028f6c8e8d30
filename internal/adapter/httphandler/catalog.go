package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

type CatalogHandler struct {
	categories port.CategoryLister
}

func RegisterCatalog(mux *http.ServeMux, categories port.CategoryLister) {
	h := CatalogHandler{categories}
	mux.HandleFunc("GET /v1/categories", h.GetCategories)
}

func (h CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	const op = "CatalogHandler.GetCategories"

	categories, err := h.categories.Categories(r.Context())
	if err != nil {
		writeError(w, err, "Error fetching categories")
		slog.Warn("failed to fetch categories", "op", op, "err", err)
		return
	}

	resp := make([]Category, len(categories))
	for i, c := range categories {
		resp[i] = fromCategory(c)
	}
	writeJSON(w, http.StatusOK, resp)
}
