package middleware

import (
	"context"
	"net/http"
	"strings"

	"acuitysync/pkg/logger"
	"acuitysync/pkg/sealer"
)

// CustomerAuth requires a valid Bearer session token on storefront routes
// and places the customer id it resolves to on the request context.
func CustomerAuth(s *sealer.Sealer, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)

			if token == "" {
				rejectUnauthorized(w, log, r, "Missing Authorization header")
				return
			}

			customerID, err := s.ParseSessionToken(token)
			if err != nil {
				rejectUnauthorized(w, log, r, "Invalid session token")
				return
			}

			ctx := context.WithValue(r.Context(), CustomerIDKey, customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}

	return strings.TrimSpace(token)
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Customer authentication failed",
		"request_id", requestIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
