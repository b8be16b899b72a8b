package layout

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the SHA-256 of the whitespace-normalized text,
// hex-encoded. Two texts differing only in whitespace run length hash
// identically.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(NormalizeSpace(text)))
	return hex.EncodeToString(sum[:])
}
