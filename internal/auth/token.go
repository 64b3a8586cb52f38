package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Bearer token keys are opaque random hex strings persisted one-per-user.
// Login fetches the existing key when one is already issued, so the key is
// stored as issued rather than hashed.

const DefaultTokenLength = 20 // random bytes; hex key is twice this long

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

func GenerateTokenKey(length int) (string, error) {
	if length < 16 {
		length = DefaultTokenLength
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func TokenFromRequest(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrMissingToken
	}
	return TokenFromHeader(r.Header.Get("Authorization"))
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	key := strings.TrimSpace(parts[1])
	if key == "" || !utf8.ValidString(key) {
		return "", ErrInvalidToken
	}
	return key, nil
}
