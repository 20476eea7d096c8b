package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWebhookPayload_PaidBool(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{
			name: "string yes",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": "yes"}`,
			want: true,
		},
		{
			name: "string yes uppercased",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": "Yes"}`,
			want: true,
		},
		{
			name: "boolean true",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": true}`,
			want: true,
		},
		{
			name: "string no",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": "no"}`,
			want: false,
		},
		{
			name: "boolean false",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": false}`,
			want: false,
		},
		{
			name: "missing",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z"}`,
			want: false,
		},
		{
			name: "unexpected number",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "paid": 1}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WebhookPayload
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := p.PaidBool(); got != tt.want {
				t.Errorf("PaidBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebhookPayload_ExternalID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "numeric id",
			raw:  `{"id": 501, "datetime": "2025-06-01T10:00:00Z"}`,
			want: "501",
		},
		{
			name: "string id",
			raw:  `{"id": "501", "datetime": "2025-06-01T10:00:00Z"}`,
			want: "501",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WebhookPayload
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := p.ExternalID(); got != tt.want {
				t.Errorf("ExternalID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWebhookPayload_DurationMinutes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "string duration",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "duration": "30"}`,
			want: 30,
		},
		{
			name: "numeric duration",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z", "duration": 45}`,
			want: 45,
		},
		{
			name: "missing duration",
			raw:  `{"id": 1, "datetime": "2025-06-01T10:00:00Z"}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p WebhookPayload
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := p.DurationMinutes(); got != tt.want {
				t.Errorf("DurationMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseProviderTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC3339 UTC",
			input: "2025-06-01T10:00:00Z",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "colon-less offset",
			input: "2025-06-01T10:00:00-0500",
			want:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.FixedZone("", -5*3600)),
		},
		{
			name:    "not a timestamp",
			input:   "next tuesday",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProviderTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseProviderTime(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProviderTime(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseProviderTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
