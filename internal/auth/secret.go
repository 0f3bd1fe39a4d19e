package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecret returns a random signing secret. Used when no secret is
// configured; tokens then stop validating across restarts.
func GenerateSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}
