package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSessionToken returns an opaque 64-character hex token suitable for use
// as a session primary key.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
