// Package sealer issues and verifies opaque customer session tokens using
// AES-GCM authenticated encryption. A token carries the customer id and an
// expiry; tampering with either invalidates the token.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "acuitysync/pkg/errors"
)

type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer builds a Sealer from a base64-encoded key. The decoded key must
// be 16, 24, or 32 bytes (AES-128/192/256).
func NewSealer(encodedKey string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode seal key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{gcm: gcm}, nil
}

// CreateSessionToken seals "customerID:expiryUnix" into a URL-safe token.
func (s *Sealer) CreateSessionToken(customerID string, ttl time.Duration) (string, error) {
	if customerID == "" {
		return "", apperrors.InvalidInput("customer id is required")
	}

	expiry := time.Now().Add(ttl).Unix()
	plaintext := fmt.Sprintf("%s:%d", customerID, expiry)

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// ParseSessionToken opens a token and returns the customer id it was issued
// for. Expired, malformed, or tampered tokens all return an unauthorized
// error; callers should not distinguish between the failure modes.
func (s *Sealer) ParseSessionToken(token string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", apperrors.Unauthorized("invalid session token")
	}

	nonceSize := s.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return "", apperrors.Unauthorized("invalid session token")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", apperrors.Unauthorized("invalid session token")
	}

	customerID, expiryStr, found := strings.Cut(string(plaintext), ":")
	if !found || customerID == "" {
		return "", apperrors.Unauthorized("invalid session token")
	}

	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return "", apperrors.Unauthorized("invalid session token")
	}

	if time.Now().Unix() > expiry {
		return "", apperrors.Unauthorized("session token expired")
	}

	return customerID, nil
}
