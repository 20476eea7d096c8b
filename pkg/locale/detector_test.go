package locale

import "testing"

func TestInferCountryFromPhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "us number",
			phone:    "+12125550147",
			wantCode: "US",
			wantOK:   true,
		},
		{
			name:     "israeli number",
			phone:    "+972528000000",
			wantCode: "IL",
			wantOK:   true,
		},
		{
			name:     "uk number",
			phone:    "+447911123456",
			wantCode: "GB",
			wantOK:   true,
		},
		{
			name:   "unknown prefix",
			phone:  "+81312345678",
			wantOK: false,
		},
		{
			name:   "not e164",
			phone:  "2125550147",
			wantOK: false,
		},
		{
			name:   "empty",
			phone:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			country, ok := InferCountryFromPhone(tt.phone)
			if ok != tt.wantOK {
				t.Fatalf("InferCountryFromPhone(%q) ok = %v, want %v", tt.phone, ok, tt.wantOK)
			}
			if ok && country.Code != tt.wantCode {
				t.Errorf("country code = %q, want %q", country.Code, tt.wantCode)
			}
		})
	}
}

func TestInferTimezoneFromPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{
			name:  "israeli number",
			phone: "+972528000000",
			want:  "Asia/Jerusalem",
		},
		{
			name:  "us number",
			phone: "+12125550147",
			want:  "America/New_York",
		},
		{
			name:  "unknown falls back to utc",
			phone: "+81312345678",
			want:  "UTC",
		},
		{
			name:  "empty falls back to utc",
			phone: "",
			want:  "UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTimezoneFromPhone(tt.phone); got != tt.want {
				t.Errorf("InferTimezoneFromPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}
