package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "acuitysync/pkg/errors"
	httputil "acuitysync/pkg/http"
	"acuitysync/pkg/logger"
	"acuitysync/pkg/middleware"
	"acuitysync/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockAppointmentService struct {
	ingestFunc func(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error)
	listFunc   func(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, int64, error)
}

func (m *mockAppointmentService) Ingest(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, payload, raw, customerID)
	}
	return &model.Appointment{ID: payload.ExternalID()}, true, nil
}

func (m *mockAppointmentService) ListForCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, customerID, limit, offset)
	}
	return []*model.Appointment{}, 0, nil
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, email string) (string, error)
}

func (m *mockResolver) ResolveByEmail(ctx context.Context, email string) (string, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, email)
	}
	return "", nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func decodeBatch(t *testing.T, rec *httptest.ResponseRecorder) httputil.BatchResponse {
	t.Helper()
	var resp httputil.BatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode batch response: %v", err)
	}
	return resp
}

func TestHandleWebhook_SingleObject(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{}, &mockResolver{}, testLogger())

	body := `{"id": 101, "firstName": "Bob", "datetime": "2026-03-01T10:00:00-0500"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req, httprouter.Params{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBatch(t, rec)
	if resp.Received != 1 || resp.Failed != 0 || resp.Total != 1 {
		t.Errorf("batch = %+v, want received=1 failed=0 total=1", resp)
	}
}

func TestHandleWebhook_BatchWithFailureIsolation(t *testing.T) {
	svc := &mockAppointmentService{
		ingestFunc: func(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error) {
			if payload.ExternalID() == "102" {
				return nil, false, apperrors.Validation("Appointment validation failed", nil)
			}
			return &model.Appointment{ID: payload.ExternalID()}, true, nil
		},
	}
	h := NewAppointmentHandler(svc, &mockResolver{}, testLogger())

	body := `[
		{"id": 101, "datetime": "2026-03-01T10:00:00-0500"},
		{"id": 102, "datetime": "2026-03-01T11:00:00-0500"},
		{"id": 103, "datetime": "2026-03-01T12:00:00-0500"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req, httprouter.Params{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBatch(t, rec)
	if resp.Received != 2 || resp.Failed != 1 || resp.Total != 3 {
		t.Errorf("batch = %+v, want received=2 failed=1 total=3", resp)
	}
}

func TestHandleWebhook_MalformedItemInBatch(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{}, &mockResolver{}, testLogger())

	body := `[{"id": 101, "datetime": "2026-03-01T10:00:00-0500"}, {"id": {"nested": true}}]`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleWebhook(rec, req, httprouter.Params{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBatch(t, rec)
	if resp.Received != 1 || resp.Failed != 1 {
		t.Errorf("batch = %+v, want received=1 failed=1", resp)
	}
}

func TestHandleWebhook_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "not json", body: "id=101&datetime=now"},
		{name: "truncated array", body: `[{"id": 101}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&mockAppointmentService{}, &mockResolver{}, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.HandleWebhook(rec, req, httprouter.Params{})

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleWebhook_CustomerResolution(t *testing.T) {
	tests := []struct {
		name         string
		resolver     *mockResolver
		wantCustomer *string
	}{
		{
			name: "resolved customer is linked",
			resolver: &mockResolver{
				resolveFunc: func(ctx context.Context, email string) (string, error) {
					return "cust_7", nil
				},
			},
			wantCustomer: strPtr("cust_7"),
		},
		{
			name: "no match stores unlinked",
			resolver: &mockResolver{
				resolveFunc: func(ctx context.Context, email string) (string, error) {
					return "", nil
				},
			},
			wantCustomer: nil,
		},
		{
			name: "lookup failure stores unlinked",
			resolver: &mockResolver{
				resolveFunc: func(ctx context.Context, email string) (string, error) {
					return "", errors.New("connection refused")
				},
			},
			wantCustomer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCustomer *string
			ingested := false
			svc := &mockAppointmentService{
				ingestFunc: func(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error) {
					ingested = true
					gotCustomer = customerID
					return &model.Appointment{ID: payload.ExternalID()}, true, nil
				},
			}
			h := NewAppointmentHandler(svc, tt.resolver, testLogger())

			body := `{"id": 101, "email": "bob@example.com", "datetime": "2026-03-01T10:00:00-0500"}`
			req := httptest.NewRequest(http.MethodPost, "/webhooks/appointments", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.HandleWebhook(rec, req, httprouter.Params{})

			if !ingested {
				t.Fatal("item was not ingested")
			}
			if (gotCustomer == nil) != (tt.wantCustomer == nil) {
				t.Fatalf("customer id = %v, want %v", gotCustomer, tt.wantCustomer)
			}
			if gotCustomer != nil && *gotCustomer != *tt.wantCustomer {
				t.Errorf("customer id = %q, want %q", *gotCustomer, *tt.wantCustomer)
			}

			resp := decodeBatch(t, rec)
			if resp.Received != 1 {
				t.Errorf("received = %d, want 1 (resolution is best effort)", resp.Received)
			}
		})
	}
}

func TestListForCustomer_RequiresAuthContext(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{}, &mockResolver{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/store/appointments", nil)
	rec := httptest.NewRecorder()

	h.ListForCustomer(rec, req, httprouter.Params{})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListForCustomer_ReturnsCustomerAppointments(t *testing.T) {
	var gotCustomerID string
	var gotLimit int
	var gotOffset int64
	svc := &mockAppointmentService{
		listFunc: func(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
			gotCustomerID = customerID
			gotLimit = limit
			gotOffset = offset
			return []*model.Appointment{{ID: "2"}, {ID: "1"}}, 5, nil
		},
	}
	h := NewAppointmentHandler(svc, &mockResolver{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/store/appointments?limit=2&offset=2", nil)
	ctx := context.WithValue(req.Context(), middleware.CustomerIDKey, "cust_7")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	h.ListForCustomer(rec, req, httprouter.Params{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotCustomerID != "cust_7" {
		t.Errorf("customer id = %q, want %q", gotCustomerID, "cust_7")
	}
	if gotLimit != 2 || gotOffset != 2 {
		t.Errorf("limit=%d offset=%d, want 2 and 2", gotLimit, gotOffset)
	}

	var resp httputil.ListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if resp.TotalCount != 5 {
		t.Errorf("total_count = %d, want 5", resp.TotalCount)
	}
}

func TestListForCustomer_InvalidPagination(t *testing.T) {
	h := NewAppointmentHandler(&mockAppointmentService{}, &mockResolver{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/store/appointments?limit=abc", nil)
	ctx := context.WithValue(req.Context(), middleware.CustomerIDKey, "cust_7")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	h.ListForCustomer(rec, req, httprouter.Params{})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func strPtr(s string) *string {
	return &s
}
