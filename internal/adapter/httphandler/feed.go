package httphandler

import (
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

type FeedHandler struct {
	feed port.FeedController
}

func RegisterFeed(mux *http.ServeMux, feed port.FeedController) {
	h := FeedHandler{feed}
	mux.HandleFunc("GET /v1/feed", h.GetFeed)
	mux.HandleFunc("PUT /v1/feed/query", h.PutQuery)
	mux.HandleFunc("POST /v1/feed/more", h.PostMore)
}

func (h FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fromFeed(h.feed.Snapshot()))
}

// PutQuery replaces filters and sort and loads the first page.
func (h FeedHandler) PutQuery(w http.ResponseWriter, r *http.Request) {
	var q FeedQuery
	if !decodeJSON(w, r, &q) {
		return
	}

	filters, sort := q.toDomain()
	if err := h.feed.SetQuery(r.Context(), filters, sort); err != nil {
		writeError(w, err, "Error fetching products")
		return
	}
	writeJSON(w, http.StatusOK, fromFeed(h.feed.Snapshot()))
}

// PostMore loads the next page. A request made while a page is loading or
// after the last page reports fetched=false.
func (h FeedHandler) PostMore(w http.ResponseWriter, r *http.Request) {
	fetched, err := h.feed.LoadMore(r.Context())
	if err != nil {
		writeError(w, err, "Error fetching products")
		return
	}
	writeJSON(w, http.StatusOK, FeedMore{
		Fetched: fetched,
		Feed:    fromFeed(h.feed.Snapshot()),
	})
}
