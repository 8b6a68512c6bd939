package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewRawToken returns a fresh opaque token handed to the client for
// remember-me and account-activation flows. Only its digest is persisted.
func NewRawToken() string {
	return uuid.New().String()
}

// DigestToken returns the hex SHA-256 digest of a raw token.
func DigestToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TokenMatches compares a raw token against a stored digest in constant time.
func TokenMatches(raw, digest string) bool {
	computed := DigestToken(raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
