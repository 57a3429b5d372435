package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EmailKey derives a stable user ID from an email address. Case and
// surrounding whitespace do not change the result.
func EmailKey(email string) string {
	return HashUserKey(strings.ToLower(strings.TrimSpace(email)))
}
