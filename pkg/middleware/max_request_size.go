package middleware

import (
	"net/http"

	"acuitysync/pkg/logger"
)

// MaxRequestSize caps the request body; oversized webhook deliveries are
// rejected before any decoding happens.
func MaxRequestSize(maxBytes int64, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				log.Warn("Request body too large",
					"request_id", requestIDFromContext(r.Context()),
					"content_length", r.ContentLength,
					"max_bytes", maxBytes,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(`{"error":"Request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
