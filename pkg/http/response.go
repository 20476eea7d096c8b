package http

import (
	"encoding/json"
	"net/http"

	apperrors "acuitysync/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

// BatchResponse acknowledges a webhook delivery. Received counts the items
// accepted for processing; Failed the items rejected; Total their sum.
type BatchResponse struct {
	Received int `json:"received"`
	Failed   int `json:"failed"`
	Total    int `json:"total"`
}

type ListResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteBatch(w http.ResponseWriter, received, failed int) error {
	return WriteJSON(w, http.StatusOK, BatchResponse{
		Received: received,
		Failed:   failed,
		Total:    received + failed,
	})
}

// ReplayableBatch reports whether a webhook ack may be replayed verbatim for
// a redelivered request. An ack with failed items must not be replayed: the
// provider retries the delivery precisely so those items get reprocessed.
func ReplayableBatch(statusCode int, body []byte) bool {
	var ack BatchResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return true
	}
	return ack.Failed == 0
}

func WriteList(w http.ResponseWriter, data any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, ListResponse{
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}
