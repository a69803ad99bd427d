package testutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the dedup hash the metadata provider assigns to data:
// "sha256:" followed by the lowercase hex digest.
func ContentHash(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
