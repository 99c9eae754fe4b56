package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// MinSigningKeyLen is the shortest accepted HS256 signing key, in bytes.
const MinSigningKeyLen = 32

// ErrWeakSigningKey indicates the configured signing key is too short.
var ErrWeakSigningKey = errors.New("signing key too short")

// GenerateSigningKey returns a random signing key suitable for
// JWT_SIGNING_KEY, base64url encoded.
func GenerateSigningKey() (string, error) {
	buf := make([]byte, MinSigningKeyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateSigningKey rejects keys shorter than MinSigningKeyLen bytes.
func ValidateSigningKey(key string) error {
	if len(key) < MinSigningKeyLen {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrWeakSigningKey, len(key), MinSigningKeyLen)
	}
	return nil
}
