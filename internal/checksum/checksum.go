// Package checksum provides content digests used to detect whether an
// on-disk note file differs from the in-memory state.
package checksum

import "crypto/sha256"

// Equal reports whether two blobs have the same SHA-256 digest.
func Equal(a, b []byte) bool {
	return sha256.Sum256(a) == sha256.Sum256(b)
}
