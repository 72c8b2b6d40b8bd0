// Package checksum provides content digests used as snapshot revisions and ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes a digest for use in an ETag header.
func ETag(sum string) string {
	return `"` + sum + `"`
}
