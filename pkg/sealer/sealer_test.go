package sealer

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	apperrors "acuitysync/pkg/errors"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestNewSealer(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{
			name:    "valid 32 byte key",
			key:     testKey(),
			wantErr: false,
		},
		{
			name:    "valid 16 byte key",
			key:     base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")),
			wantErr: false,
		},
		{
			name:    "not base64",
			key:     "!!!not-base64!!!",
			wantErr: true,
		},
		{
			name:    "wrong key length",
			key:     base64.StdEncoding.EncodeToString([]byte("short")),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSealer(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSealer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey())
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}

	token, err := s.CreateSessionToken("cust_123", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	customerID, err := s.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}
	if customerID != "cust_123" {
		t.Errorf("customer id = %q, want %q", customerID, "cust_123")
	}
}

func TestCreateSessionToken_EmptyCustomerID(t *testing.T) {
	s, _ := NewSealer(testKey())
	_, err := s.CreateSessionToken("", time.Hour)
	if err == nil {
		t.Fatal("expected error for empty customer id")
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	s, _ := NewSealer(testKey())

	token, err := s.CreateSessionToken("cust_123", -time.Minute)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	_, err = s.ParseSessionToken(token)
	if err == nil {
		t.Fatal("expected error for expired token")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnauthorized {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestParseSessionToken_Tampered(t *testing.T) {
	s, _ := NewSealer(testKey())

	token, err := s.CreateSessionToken("cust_123", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	raw, _ := base64.RawURLEncoding.DecodeString(token)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.RawURLEncoding.EncodeToString(raw)

	if _, err := s.ParseSessionToken(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestParseSessionToken_Garbage(t *testing.T) {
	s, _ := NewSealer(testKey())

	for _, token := range []string{"", "not-a-token", strings.Repeat("A", 4)} {
		if _, err := s.ParseSessionToken(token); err == nil {
			t.Errorf("expected error for token %q", token)
		}
	}
}

func TestSessionToken_DifferentKeysRejected(t *testing.T) {
	s1, _ := NewSealer(testKey())
	s2, _ := NewSealer(base64.StdEncoding.EncodeToString([]byte("fedcba9876543210fedcba9876543210")))

	token, err := s1.CreateSessionToken("cust_123", time.Hour)
	if err != nil {
		t.Fatalf("CreateSessionToken() error = %v", err)
	}

	if _, err := s2.ParseSessionToken(token); err == nil {
		t.Fatal("expected token sealed with a different key to be rejected")
	}
}
