package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash is a short stable digest used to key rendered content.
func ContentHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:8])
}
