package httphandler

import (
	"mime"
	"net/http"
	"slices"
)

const (
	MediaTypeJSON      = "application/json"
	MediaTypeMultipart = "multipart/form-data"
)

// AllowMediaTypes rejects requests with a body of any other media type.
func AllowMediaTypes(types ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hf := func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || !slices.Contains(types, mediaType) {
				http.Error(w, "invalid media type", http.StatusUnsupportedMediaType)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hf)
	}
}
