package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first 12 hex characters of the SHA-256 of s.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
