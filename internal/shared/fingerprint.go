package shared

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies a key in logs without revealing it: the first 12 hex
// characters of its SHA-256.
func Fingerprint(key string) string {
	if key == "" {
		return ""
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])[:12]
}
