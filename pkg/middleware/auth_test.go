package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httputil "acuitysync/pkg/http"
	"acuitysync/pkg/logger"
	"acuitysync/pkg/sealer"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func testSealer(t *testing.T) *sealer.Sealer {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	s, err := sealer.NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}
	return s
}

func TestCustomerAuth(t *testing.T) {
	s := testSealer(t)

	validToken, err := s.CreateSessionToken("cust_42", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	expiredToken, err := s.CreateSessionToken("cust_42", -time.Minute)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		wantStatus     int
		wantCustomerID string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + validToken,
			wantStatus:     http.StatusOK,
			wantCustomerID: "cust_42",
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic " + validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCustomerID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCustomerID = CustomerIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/store/appointments", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			CustomerAuth(s, testLogger())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCustomerID != "" && gotCustomerID != tt.wantCustomerID {
				t.Errorf("customer id = %q, want %q", gotCustomerID, tt.wantCustomerID)
			}
		})
	}
}

func TestAcuitySignatureVerification(t *testing.T) {
	const apiKey = "test-api-key"
	body := `{"id":123,"datetime":"2026-03-01T10:00:00-0500"}`

	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(body))
	validSignature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{
			name:       "valid signature",
			signature:  validSignature,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature",
			signature:  "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signature",
			signature:  "bm90LXRoZS1zaWduYXR1cmU=",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody []byte
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set("X-Acuity-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()

			AcuitySignatureVerification(apiKey, testLogger())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && string(gotBody) != body {
				t.Errorf("handler body = %q, want %q (body must be restored after verification)", gotBody, body)
			}
		})
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"received":1,"failed":0,"total":1}`))
	})

	handler := Idempotency(store, "", httputil.ReplayableBatch)(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "delivery-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != `{"received":1,"failed":0,"total":1}` {
			t.Fatalf("body = %q", rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("handler invoked %d times, want 1", calls)
	}
}

func TestIdempotency_PartialFailureAckNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"received":2,"failed":1,"total":3}`))
	})

	handler := Idempotency(store, "", httputil.ReplayableBatch)(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "delivery-2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler invoked %d times, want 2: a partial-failure ack must not be replayed", calls)
	}
}

func TestIdempotency_MissingKeyPassesThrough(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	handler := Idempotency(store, "", nil)(next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("handler invoked %d times, want 2", calls)
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{
			name:        "json accepted",
			method:      http.MethodPost,
			contentType: "application/json",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "json with charset accepted",
			method:      http.MethodPost,
			contentType: "application/json; charset=utf-8",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "form encoding rejected",
			method:      http.MethodPost,
			contentType: "application/x-www-form-urlencoded",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "missing content type rejected",
			method:      http.MethodPost,
			contentType: "",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:       "get bypasses the check",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/webhooks/appointments", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()

			ContentTypeValidation(testLogger(), "application/json")(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
