// Package signature implements the signed-upload digest the storage
// provider expects: SHA-1 over the canonical parameter string concatenated
// with the shared API secret, rendered as lowercase hex.
package signature

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Params builds the canonical parameter string the digest covers. The
// provider recomputes the digest over the same string, so key order is fixed.
func Params(folder string, timestamp int64) string {
	return fmt.Sprintf("folder=%s&timestamp=%d", folder, timestamp)
}

// Sign returns the hex digest authorizing an upload of the given folder and
// timestamp. Deterministic: same inputs always produce the same signature.
func Sign(folder string, timestamp int64, apiSecret string) string {
	sum := sha1.Sum([]byte(Params(folder, timestamp) + apiSecret))
	return hex.EncodeToString(sum[:])
}
