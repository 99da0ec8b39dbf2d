package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

func testKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GRIDLINK_SESSION_ISSUER", "")
	t.Setenv("GRIDLINK_SESSION_AUDIENCE", "")
	t.Setenv("GRIDLINK_SESSION_PUBLIC_KEY", "")
	t.Setenv("GRIDLINK_SESSION_PRIVATE_KEY", "")

	if _, err := LoadConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when env vars are missing")
	}

	pub, priv := testKeys(t)

	t.Setenv("GRIDLINK_SESSION_ISSUER", "gridlink-admin")
	t.Setenv("GRIDLINK_SESSION_AUDIENCE", "admin-service")
	t.Setenv("GRIDLINK_SESSION_PUBLIC_KEY", base64.RawStdEncoding.EncodeToString(pub))
	t.Setenv("GRIDLINK_SESSION_PRIVATE_KEY", base64.RawStdEncoding.EncodeToString(priv))
	t.Setenv("GRIDLINK_SESSION_TTL_MINUTES", "30")

	cfg, err := LoadConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load session config: %v", err)
	}
	if cfg.Issuer != "gridlink-admin" || cfg.Audience != "admin-service" {
		t.Fatal("expected issuer and audience to be loaded")
	}
	if len(cfg.PublicKey) != ed25519.PublicKeySize {
		t.Fatalf("expected public key size %d", ed25519.PublicKeySize)
	}
	if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		t.Fatalf("expected private key size %d", ed25519.PrivateKeySize)
	}
	if cfg.TTL != 30*time.Minute {
		t.Fatalf("ttl = %v, want 30m", cfg.TTL)
	}
}

func TestIssueAndValidate(t *testing.T) {
	pub, priv := testKeys(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := Config{
		Issuer:     "gridlink-admin",
		Audience:   "admin-service",
		PublicKey:  pub,
		PrivateKey: priv,
		TTL:        time.Hour,
		Now:        func() time.Time { return now },
	}

	signed, err := Issue("user-1", RoleOperator, cfg)
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}

	claims, err := Validate(signed, cfg)
	if err != nil {
		t.Fatalf("validate session token: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Role != RoleOperator {
		t.Fatalf("role = %q, want operator", claims.Role)
	}
	if claims.JWTID == "" {
		t.Fatal("expected a jti to be assigned")
	}
	if !claims.ExpiresAt.Equal(time.Unix(now.Add(time.Hour).Unix(), 0).UTC()) {
		t.Fatal("expected expires at to match issue time plus ttl")
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	_, priv := testKeys(t)
	cfg := Config{Issuer: "gridlink-admin", Audience: "admin-service", PrivateKey: priv, TTL: time.Hour}
	if _, err := Issue("user-1", Role("wizard"), cfg); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestValidateExpired(t *testing.T) {
	pub, priv := testKeys(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issueCfg := Config{
		Issuer:     "gridlink-admin",
		Audience:   "admin-service",
		PrivateKey: priv,
		TTL:        time.Minute,
		Now:        func() time.Time { return now },
	}
	signed, err := Issue("user-1", RoleViewer, issueCfg)
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}

	verifyCfg := Config{
		Issuer:    "gridlink-admin",
		Audience:  "admin-service",
		PublicKey: pub,
		Now:       func() time.Time { return now.Add(2 * time.Minute) },
	}
	_, err = Validate(signed, verifyCfg)
	if apperrors.CodeOf(err) != apperrors.CodeTokenExpired {
		t.Fatalf("expected token expired code, got %v", err)
	}
}

func TestValidateWrongKey(t *testing.T) {
	_, priv := testKeys(t)
	otherPub, _ := testKeys(t)

	cfg := Config{Issuer: "gridlink-admin", Audience: "admin-service", PrivateKey: priv, TTL: time.Hour}
	signed, err := Issue("user-1", RoleViewer, cfg)
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}

	verifyCfg := Config{Issuer: "gridlink-admin", Audience: "admin-service", PublicKey: otherPub}
	_, err = Validate(signed, verifyCfg)
	if apperrors.CodeOf(err) != apperrors.CodeTokenInvalid {
		t.Fatalf("expected token invalid code, got %v", err)
	}
}

func TestValidateIssuerMismatch(t *testing.T) {
	pub, priv := testKeys(t)
	cfg := Config{Issuer: "gridlink-admin", Audience: "admin-service", PublicKey: pub, PrivateKey: priv, TTL: time.Hour}
	signed, err := Issue("user-1", RoleViewer, cfg)
	if err != nil {
		t.Fatalf("issue session token: %v", err)
	}

	verifyCfg := cfg
	verifyCfg.Issuer = "someone-else"
	_, err = Validate(signed, verifyCfg)
	if err == nil || !strings.Contains(err.Error(), "issuer mismatch") {
		t.Fatalf("expected issuer mismatch error, got %v", err)
	}
}

func TestValidateEmptyToken(t *testing.T) {
	pub, _ := testKeys(t)
	cfg := Config{Issuer: "gridlink-admin", Audience: "admin-service", PublicKey: pub}
	_, err := Validate("  ", cfg)
	if apperrors.CodeOf(err) != apperrors.CodeTokenMissing {
		t.Fatalf("expected token missing code, got %v", err)
	}
}
