package store

import (
	"crypto/sha256"
	"fmt"
)

// DumpHash fingerprints a program dump. Loading the same bytes twice yields
// the same hash, which lets callers skip a reload.
func DumpHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
