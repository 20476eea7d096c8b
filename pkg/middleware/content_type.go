package middleware

import (
	"net/http"
	"strings"

	"acuitysync/pkg/logger"
)

// ContentTypeValidation rejects mutating requests whose Content-Type is not
// one of the accepted types. Defaults to JSON only.
func ContentTypeValidation(log *logger.Logger, accepted ...string) func(http.Handler) http.Handler {
	if len(accepted) == 0 {
		accepted = []string{"application/json"}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r.Method) {
				contentType := extractContentType(r.Header.Get("Content-Type"))

				if !isAccepted(contentType, accepted) {
					rejectInvalidContentType(w, log, r, contentType)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.Split(header, ";")
	return strings.TrimSpace(parts[0])
}

func isAccepted(contentType string, accepted []string) bool {
	for _, a := range accepted {
		if contentType == a {
			return true
		}
	}
	return false
}

func rejectInvalidContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, contentType string) {
	log.Warn("Invalid Content-Type header",
		"request_id", requestIDFromContext(r.Context()),
		"content_type", contentType,
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnsupportedMediaType)
	_, _ = w.Write([]byte(`{"error":"Unsupported Content-Type"}`))
}
