package knol

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// Key normalizes a question into its index key.
func Key(question string) string {
	return strings.ToLower(question)
}

// Hash returns the first 8 bytes of the key's SHA-256 digest.
func Hash(key string) uint64 {
	sum := sha256.Sum256([]byte(key))
	return binary.BigEndian.Uint64(sum[:8])
}
