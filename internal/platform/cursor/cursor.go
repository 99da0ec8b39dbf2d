// Package cursor mints opaque page tokens for seq-ordered listings.
//
// A token carries the last sequence number a page ended on plus a short hash
// of the filter that produced the page, so a token from one filter cannot
// resume a listing under another.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMismatch reports a token minted for a different filter.
var ErrMismatch = errors.New("page token does not match the listing filter")

type payload struct {
	Seq    uint64 `json:"s"`
	Filter string `json:"f,omitempty"`
}

// Encode builds a token that resumes a listing after seq. filterKey must be
// the same string the listing will pass to Decode.
func Encode(seq uint64, filterKey string) (string, error) {
	data, err := json.Marshal(payload{Seq: seq, Filter: hashFilter(filterKey)})
	if err != nil {
		return "", fmt.Errorf("marshal page token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode returns the sequence number the token resumes after. Malformed
// tokens and tokens minted for another filterKey fail.
func Decode(token, filterKey string) (uint64, error) {
	if token == "" {
		return 0, errors.New("empty page token")
	}
	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("decode page token: %w", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("unmarshal page token: %w", err)
	}
	if p.Filter != hashFilter(filterKey) {
		return 0, ErrMismatch
	}
	return p.Seq, nil
}

// hashFilter keeps tokens small; 64 bits is plenty to catch a filter that
// changed between pages.
func hashFilter(filter string) string {
	if filter == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(filter))
	return hex.EncodeToString(sum[:8])
}
