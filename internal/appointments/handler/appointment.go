package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"acuitysync/internal/appointments/service"
	httputil "acuitysync/pkg/http"
	"acuitysync/pkg/logger"
	"acuitysync/pkg/middleware"
	"acuitysync/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// CustomerResolver looks up a customer id by email. Resolution is best
// effort: an error or an empty id both leave the appointment unlinked.
type CustomerResolver interface {
	ResolveByEmail(ctx context.Context, email string) (string, error)
}

type AppointmentHandler struct {
	service  service.AppointmentService
	resolver CustomerResolver
	log      *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, resolver CustomerResolver, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:  service,
		resolver: resolver,
		log:      log,
	}
}

// HandleWebhook accepts a single appointment object or an array of them.
// Items are processed independently: one bad item never fails the batch,
// and the response reports how many were received versus rejected.
func (h *AppointmentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Failed to read request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "HandleWebhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	items, err := splitWebhookItems(body)
	if err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "HandleWebhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	received := 0
	failed := 0
	for i, item := range items {
		if err := h.processItem(r.Context(), item); err != nil {
			h.log.Warn("Webhook item rejected",
				"request_id", requestID(r),
				"item_index", i,
				"error", err,
			)
			failed++
			continue
		}
		received++
	}

	if err := httputil.WriteBatch(w, received, failed); err != nil {
		h.log.Error("failed to write batch response", "handler", "HandleWebhook", "operation", "WriteBatch", "error", err)
	}
}

func (h *AppointmentHandler) processItem(ctx context.Context, item json.RawMessage) error {
	var payload model.WebhookPayload
	if err := json.Unmarshal(item, &payload); err != nil {
		return err
	}

	customerID := h.resolveCustomer(ctx, payload.Email)

	_, _, err := h.service.Ingest(ctx, &payload, item, customerID)
	return err
}

// resolveCustomer matches the appointment to a known customer by email.
// Lookup failures are logged and swallowed: an unlinked appointment is
// better than a dropped webhook.
func (h *AppointmentHandler) resolveCustomer(ctx context.Context, email string) *string {
	if email == "" || h.resolver == nil {
		return nil
	}

	id, err := h.resolver.ResolveByEmail(ctx, email)
	if err != nil {
		h.log.Warn("Customer resolution failed, storing appointment unlinked",
			"email", email,
			"error", err,
		)
		return nil
	}

	if id == "" {
		return nil
	}
	return &id
}

func (h *AppointmentHandler) ListForCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	customerID := middleware.CustomerIDFromContext(r.Context())
	if customerID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
			Error: "Unauthorized",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ListForCustomer", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForCustomer", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	appointments, total, err := h.service.ListForCustomer(r.Context(), customerID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForCustomer", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write list response", "handler", "ListForCustomer", "operation", "WriteList", "error", err)
	}
}

func (h *AppointmentHandler) RegisterWebhookRoutes(router *httprouter.Router) {
	router.POST("/webhooks/appointments", h.HandleWebhook)
}

func (h *AppointmentHandler) RegisterStoreRoutes(router *httprouter.Router) {
	router.GET("/store/appointments", h.ListForCustomer)
}

// splitWebhookItems normalizes the delivery shape: a JSON array becomes its
// elements, a single object becomes a one-element slice.
func splitWebhookItems(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var item json.RawMessage
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []json.RawMessage{item}, nil
}

func requestID(r *http.Request) string {
	if rid := r.Context().Value(middleware.RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			return id
		}
	}
	return ""
}
