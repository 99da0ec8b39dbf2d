// Package signing authenticates grid-originated HTTP requests with
// HMAC-SHA256 signatures, rotating key ids, and replay protection.
package signing

import (
	"crypto/hkdf"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

const (
	envHMACKeys  = "GRIDLINK_GRID_HMAC_KEYS"
	envHMACKey   = "GRIDLINK_GRID_HMAC_KEY"
	envHMACKeyID = "GRIDLINK_GRID_HMAC_KEY_ID"
	defaultKeyID = "v1"
)

// Keyring stores root HMAC keys and the active key id.
type Keyring struct {
	keys        map[string][]byte
	activeKeyID string
}

// NewKeyring constructs a keyring for HMAC signing and verification.
func NewKeyring(keys map[string][]byte, activeKeyID string) (*Keyring, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("hmac keys are required")
	}
	activeKeyID = strings.TrimSpace(activeKeyID)
	if activeKeyID == "" {
		return nil, fmt.Errorf("active hmac key id is required")
	}
	if _, ok := keys[activeKeyID]; !ok {
		return nil, fmt.Errorf("active hmac key id is not configured")
	}
	return &Keyring{keys: keys, activeKeyID: activeKeyID}, nil
}

// KeyringFromEnv loads the HMAC keyring configuration from environment
// variables. GRIDLINK_GRID_HMAC_KEYS holds comma-separated id=key pairs for
// rotation; GRIDLINK_GRID_HMAC_KEY holds a single key under the default id.
func KeyringFromEnv() (*Keyring, error) {
	keyID := strings.TrimSpace(os.Getenv(envHMACKeyID))
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(os.Getenv(envHMACKeys))
	if keySpec == "" {
		raw := strings.TrimSpace(os.Getenv(envHMACKey))
		if raw == "" {
			return nil, fmt.Errorf("%s is required", envHMACKey)
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid %s entry", envHMACKeys)
		}
		id := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if id == "" || value == "" {
			return nil, fmt.Errorf("invalid %s entry", envHMACKeys)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}

// ActiveKeyID returns the configured signing key id.
func (k *Keyring) ActiveKeyID() string {
	if k == nil {
		return ""
	}
	return k.activeKeyID
}

// Sign signs a canonical request string with the active key for a region.
// It returns the hex signature and the key id it was produced with.
func (k *Keyring) Sign(region, canonical string) (signature, keyID string, err error) {
	if k == nil {
		return "", "", fmt.Errorf("hmac keyring is not configured")
	}
	key, err := k.deriveKey(k.activeKeyID, region)
	if err != nil {
		return "", "", err
	}
	return hmacSHA256Hex(key, canonical), k.activeKeyID, nil
}

// Verify validates a canonical request signature produced with keyID.
func (k *Keyring) Verify(region, canonical, signature, keyID string) error {
	if k == nil {
		return fmt.Errorf("hmac keyring is not configured")
	}
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return apperrors.New(apperrors.CodeSignatureKeyID, "signature key id is required")
	}
	rootKey, ok := k.keys[keyID]
	if !ok {
		return apperrors.New(apperrors.CodeSignatureKeyID, "signature key id is unknown")
	}
	key, err := deriveRegionKey(rootKey, region)
	if err != nil {
		return err
	}
	expected := hmacSHA256Hex(key, canonical)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperrors.New(apperrors.CodeSignatureInvalid, "signature mismatch")
	}
	return nil
}

func (k *Keyring) deriveKey(keyID, region string) ([]byte, error) {
	rootKey, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("hmac key id is unknown")
	}
	return deriveRegionKey(rootKey, region)
}

func deriveRegionKey(rootKey []byte, region string) ([]byte, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, apperrors.New(apperrors.CodeSignatureNoRegion, "grid region is required")
	}
	key, err := hkdf.Key(sha256.New, rootKey, nil, "region:"+region, 32)
	if err != nil {
		return nil, fmt.Errorf("derive region key: %w", err)
	}
	return key, nil
}

func hmacSHA256Hex(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
