package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Appointment mirrors one Acuity booking into our own store. The provider's
// appointment id is the primary key, so re-delivery of the same id is always
// an update.
type Appointment struct {
	ID         string  `json:"id" bson:"_id"`
	CustomerID *string `json:"customer_id" bson:"customer_id"`

	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`

	Datetime        time.Time `json:"datetime" bson:"datetime"`
	EndDatetime     time.Time `json:"end_datetime" bson:"end_datetime"`
	Timezone        string    `json:"timezone,omitempty" bson:"timezone,omitempty"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`

	Price      string `json:"price,omitempty" bson:"price,omitempty"`
	Paid       bool   `json:"paid" bson:"paid"`
	AmountPaid string `json:"amount_paid,omitempty" bson:"amount_paid,omitempty"`

	AppointmentType   string `json:"appointment_type,omitempty" bson:"appointment_type,omitempty"`
	AppointmentTypeID int64  `json:"appointment_type_id,omitempty" bson:"appointment_type_id,omitempty"`
	Calendar          string `json:"calendar,omitempty" bson:"calendar,omitempty"`
	CalendarID        int64  `json:"calendar_id,omitempty" bson:"calendar_id,omitempty"`

	CanClientCancel     *bool  `json:"can_client_cancel,omitempty" bson:"can_client_cancel,omitempty"`
	CanClientReschedule *bool  `json:"can_client_reschedule,omitempty" bson:"can_client_reschedule,omitempty"`
	Location            string `json:"location,omitempty" bson:"location,omitempty"`
	Notes               string `json:"notes,omitempty" bson:"notes,omitempty"`
	ConfirmationPage    string `json:"confirmation_page,omitempty" bson:"confirmation_page,omitempty"`

	Forms    any     `json:"forms,omitempty" bson:"forms,omitempty"`
	Labels   any     `json:"labels,omitempty" bson:"labels,omitempty"`
	AddonIDs []int64 `json:"addon_ids,omitempty" bson:"addon_ids,omitempty"`

	RawPayload map[string]any `json:"-" bson:"raw_payload"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// WebhookPayload is one appointment object as Acuity delivers it: camelCase
// keys, numeric ids, string durations and string booleans.
type WebhookPayload struct {
	ID        json.Number `json:"id" validate:"required"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email" validate:"omitempty,email"`
	Phone     string      `json:"phone"`

	Datetime string      `json:"datetime" validate:"required"`
	EndTime  string      `json:"endTime"`
	Timezone string      `json:"timezone"`
	Duration json.Number `json:"duration"`

	Type              string `json:"type"`
	AppointmentTypeID int64  `json:"appointmentTypeID"`
	Calendar          string `json:"calendar"`
	CalendarID        int64  `json:"calendarID"`

	Price      string `json:"price"`
	Paid       any    `json:"paid"`
	AmountPaid string `json:"amountPaid"`

	CanClientCancel     *bool  `json:"canClientCancel"`
	CanClientReschedule *bool  `json:"canClientReschedule"`
	Location            string `json:"location"`
	Notes               string `json:"notes"`
	ConfirmationPage    string `json:"confirmationPage"`

	Forms    json.RawMessage `json:"forms"`
	Labels   json.RawMessage `json:"labels"`
	AddonIDs []int64         `json:"addonIDs"`
}

// ExternalID is the provider id in its canonical string form.
func (p *WebhookPayload) ExternalID() string {
	return p.ID.String()
}

// PaidBool collapses the provider's heterogeneous paid encodings. Only the
// string "yes" (any casing) and the boolean true count as paid.
func (p *WebhookPayload) PaidBool() bool {
	switch v := p.Paid.(type) {
	case string:
		return strings.EqualFold(v, "yes")
	case bool:
		return v
	default:
		return false
	}
}

// DurationMinutes parses the provider duration, defaulting to 0 when the
// field is missing or unparseable.
func (p *WebhookPayload) DurationMinutes() int {
	if p.Duration.String() == "" {
		return 0
	}
	n, err := p.Duration.Int64()
	if err != nil {
		return 0
	}
	return int(n)
}

// Provider timestamps arrive as RFC 3339 or with a colon-less offset
// ("2025-06-01T10:00:00-0500").
var providerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

func ParseProviderTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range providerTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
