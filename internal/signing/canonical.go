package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Request headers carrying grid signature material.
const (
	HeaderKeyID     = "X-Grid-Key-Id"
	HeaderRegion    = "X-Grid-Region"
	HeaderTimestamp = "X-Grid-Timestamp"
	HeaderNonce     = "X-Grid-Nonce"
	HeaderSignature = "X-Grid-Signature"
)

// CanonicalRequest builds the string covered by the request signature:
// method, path, unix timestamp, nonce, and the hex SHA-256 of the body,
// joined with newlines. The body digest binds the signature to the payload
// without requiring the verifier to buffer both at once.
func CanonicalRequest(method, path string, timestamp int64, nonce string, body []byte) string {
	return strings.Join([]string{
		strings.ToUpper(strings.TrimSpace(method)),
		path,
		fmt.Sprintf("%d", timestamp),
		nonce,
		BodyDigest(body),
	}, "\n")
}

// BodyDigest returns the lowercase hex SHA-256 of the request body.
// An empty body digests to the hash of zero bytes, never to "".
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
