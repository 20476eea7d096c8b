package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	apperrors "acuitysync/pkg/errors"
)

// Customer is the subset of the accounts service record needed to link an
// appointment to its owner.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CustomerClient queries the accounts service by exact email match. It is the
// customer-resolution collaborator for webhook ingestion.
type CustomerClient struct {
	httpClient *HttpClient
}

func NewCustomerClient(baseURL string) *CustomerClient {
	return &CustomerClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// ResolveByEmail returns the id of the customer with the given email, or ""
// when no account matches. Transport and non-2xx failures come back as
// dependency errors so callers can fail open.
func (c *CustomerClient) ResolveByEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("email", email)

	resp, err := c.httpClient.GET(ctx, "/api/v1/customers?"+q.Encode())
	if err != nil {
		return "", apperrors.Dependency("customer lookup request failed", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Dependency(
			fmt.Sprintf("customer lookup returned status %d", resp.StatusCode), nil)
	}

	var wrapper struct {
		Data []Customer `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return "", apperrors.Dependency("could not decode customer lookup response", err)
	}

	if len(wrapper.Data) == 0 {
		return "", nil
	}

	return wrapper.Data[0].ID, nil
}
