package client

import (
	"context"
	"encoding/json"
	"fmt"

	"acuitysync/pkg/model"
)

// AppointmentClient is a typed client for the appointments service, used by
// sibling services and operational tooling.
type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseURL string) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// DeliverWebhook posts a raw provider delivery, optionally signed.
func (c *AppointmentClient) DeliverWebhook(ctx context.Context, rawBody []byte, signature string) (*Response, error) {
	headers := map[string]string{}
	if signature != "" {
		headers["X-Acuity-Signature"] = signature
	}
	return c.httpClient.POSTRaw(ctx, "/webhooks/appointments", rawBody, headers)
}

// ListForCustomer fetches the calling customer's appointments using a sealed
// session token.
func (c *AppointmentClient) ListForCustomer(ctx context.Context, sessionToken string, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/store/appointments?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GETWithHeaders(ctx, path, map[string]string{
		"Authorization": "Bearer " + sessionToken,
	})
}

func (c *AppointmentClient) DecodeAppointments(resp *Response) ([]*model.Appointment, int64, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
	}

	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, 0, fmt.Errorf("could not decode list wrapper: %w", err)
	}

	var appointments []*model.Appointment
	if err := json.Unmarshal(wrapper.Data, &appointments); err != nil {
		return nil, 0, fmt.Errorf("could not decode appointment list: %w", err)
	}

	return appointments, wrapper.TotalCount, nil
}
