package signing

import (
	"errors"
	"testing"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

func testKeyring(t *testing.T) *Keyring {
	t.Helper()
	keyring, err := NewKeyring(map[string][]byte{"v1": []byte("root-key-one"), "v2": []byte("root-key-two")}, "v2")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	return keyring
}

func TestNewKeyringValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewKeyring(nil, "v1"); err == nil {
		t.Fatal("expected error for empty keys")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("k")}, ""); err == nil {
		t.Fatal("expected error for empty active id")
	}
	if _, err := NewKeyring(map[string][]byte{"v1": []byte("k")}, "v9"); err == nil {
		t.Fatal("expected error for unknown active id")
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	keyring := testKeyring(t)
	canonical := CanonicalRequest("POST", "/v1/characters", 1700000000, "nonce-1", []byte(`{"name":"Vex"}`))

	signature, keyID, err := keyring.Sign("emberfall", canonical)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if keyID != "v2" {
		t.Fatalf("keyID = %q, want v2", keyID)
	}
	if err := keyring.Verify("emberfall", canonical, signature, keyID); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyRejectsWrongRegion(t *testing.T) {
	t.Parallel()

	keyring := testKeyring(t)
	canonical := CanonicalRequest("GET", "/v1/characters/c1", 1700000000, "nonce-2", nil)
	signature, keyID, err := keyring.Sign("emberfall", canonical)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	err = keyring.Verify("duskmire", canonical, signature, keyID)
	if apperrors.CodeOf(err) != apperrors.CodeSignatureInvalid {
		t.Fatalf("expected SIGNATURE_INVALID, got %v", err)
	}
}

func TestVerifyRejectsTamperedCanonical(t *testing.T) {
	t.Parallel()

	keyring := testKeyring(t)
	canonical := CanonicalRequest("POST", "/v1/payments", 1700000000, "nonce-3", []byte(`{"amount":100}`))
	signature, keyID, err := keyring.Sign("emberfall", canonical)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tampered := CanonicalRequest("POST", "/v1/payments", 1700000000, "nonce-3", []byte(`{"amount":9000}`))
	if err := keyring.Verify("emberfall", tampered, signature, keyID); err == nil {
		t.Fatal("expected error for tampered body")
	}
}

func TestVerifyUnknownKeyID(t *testing.T) {
	t.Parallel()

	keyring := testKeyring(t)
	err := keyring.Verify("emberfall", "canonical", "sig", "v9")
	if apperrors.CodeOf(err) != apperrors.CodeSignatureKeyID {
		t.Fatalf("expected SIGNATURE_UNKNOWN_KEY_ID, got %v", err)
	}
	err = keyring.Verify("emberfall", "canonical", "sig", "")
	if apperrors.CodeOf(err) != apperrors.CodeSignatureKeyID {
		t.Fatalf("expected SIGNATURE_UNKNOWN_KEY_ID for empty id, got %v", err)
	}
}

func TestVerifyRotatedKeyStillAccepted(t *testing.T) {
	t.Parallel()

	old, err := NewKeyring(map[string][]byte{"v1": []byte("root-key-one")}, "v1")
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}
	canonical := CanonicalRequest("GET", "/v1/characters/c1", 1700000000, "nonce-4", nil)
	signature, keyID, err := old.Sign("emberfall", canonical)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// After rotation the verifier keeps the old root key under its id.
	rotated := testKeyring(t)
	if err := rotated.Verify("emberfall", canonical, signature, keyID); err != nil {
		t.Fatalf("verify with rotated keyring: %v", err)
	}
}

func TestKeyringFromEnvSingleKey(t *testing.T) {
	t.Setenv("GRIDLINK_GRID_HMAC_KEYS", "")
	t.Setenv("GRIDLINK_GRID_HMAC_KEY", "super-secret")
	t.Setenv("GRIDLINK_GRID_HMAC_KEY_ID", "")

	keyring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if keyring.ActiveKeyID() != "v1" {
		t.Fatalf("ActiveKeyID = %q, want v1", keyring.ActiveKeyID())
	}
}

func TestKeyringFromEnvMultipleKeys(t *testing.T) {
	t.Setenv("GRIDLINK_GRID_HMAC_KEYS", "v1=old-key, v2=new-key")
	t.Setenv("GRIDLINK_GRID_HMAC_KEY_ID", "v2")

	keyring, err := KeyringFromEnv()
	if err != nil {
		t.Fatalf("keyring from env: %v", err)
	}
	if keyring.ActiveKeyID() != "v2" {
		t.Fatalf("ActiveKeyID = %q, want v2", keyring.ActiveKeyID())
	}
}

func TestKeyringFromEnvMissing(t *testing.T) {
	t.Setenv("GRIDLINK_GRID_HMAC_KEYS", "")
	t.Setenv("GRIDLINK_GRID_HMAC_KEY", "")

	if _, err := KeyringFromEnv(); err == nil {
		t.Fatal("expected error when no key configured")
	}
}

func TestKeyringFromEnvMalformedSpec(t *testing.T) {
	t.Setenv("GRIDLINK_GRID_HMAC_KEYS", "v1")

	if _, err := KeyringFromEnv(); err == nil {
		t.Fatal("expected error for malformed key spec")
	}
}

func TestSignEmptyRegion(t *testing.T) {
	t.Parallel()

	keyring := testKeyring(t)
	_, _, err := keyring.Sign("", "canonical")
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeSignatureNoRegion {
		t.Fatalf("expected SIGNATURE_EMPTY_REGION, got %v", err)
	}
}
