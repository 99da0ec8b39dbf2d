// Package token issues and validates EdDSA-signed session tokens for the
// admin surfaces. Tokens carry the operator identity and role; the game
// service never sees them, it authenticates grid traffic with HMAC
// signatures instead.
package token

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

// Role constrains what an authenticated operator may do on the admin surface.
type Role string

const (
	// RoleViewer may read characters, payments and statistics.
	RoleViewer Role = "viewer"
	// RoleOperator may additionally mutate characters and resolve payments.
	RoleOperator Role = "operator"
)

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer     string `env:"GRIDLINK_SESSION_ISSUER"`
	Audience   string `env:"GRIDLINK_SESSION_AUDIENCE"`
	PublicKey  string `env:"GRIDLINK_SESSION_PUBLIC_KEY"`
	PrivateKey string `env:"GRIDLINK_SESSION_PRIVATE_KEY"`
	TTLMinutes int    `env:"GRIDLINK_SESSION_TTL_MINUTES" envDefault:"60"`
}

// Config defines how session tokens are issued and verified. PrivateKey is
// only required on the issuing side; verifiers need the public key alone.
type Config struct {
	Issuer     string
	Audience   string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	TTL        time.Duration
	Now        func() time.Time
}

// Claims captures a validated session token.
type Claims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
	UserID    string
	Role      Role
}

// sessionClaims is the internal claims type used for JWT signing and parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// LoadConfigFromEnv reads session token configuration. The private key is
// optional so verify-only services can share the same loader.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw sessionEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("GRIDLINK_SESSION_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("GRIDLINK_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("GRIDLINK_SESSION_PUBLIC_KEY is required")
	}
	publicBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(publicBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	if raw.TTLMinutes <= 0 {
		return Config{}, fmt.Errorf("GRIDLINK_SESSION_TTL_MINUTES must be positive")
	}
	if now == nil {
		now = time.Now
	}

	cfg := Config{
		Issuer:    issuer,
		Audience:  audience,
		PublicKey: ed25519.PublicKey(publicBytes),
		TTL:       time.Duration(raw.TTLMinutes) * time.Minute,
		Now:       now,
	}

	if privateKey := strings.TrimSpace(raw.PrivateKey); privateKey != "" {
		privateBytes, err := decodeBase64(privateKey)
		if err != nil {
			return Config{}, fmt.Errorf("decode session private key: %w", err)
		}
		if len(privateBytes) != ed25519.PrivateKeySize {
			return Config{}, fmt.Errorf("session private key must be %d bytes", ed25519.PrivateKeySize)
		}
		cfg.PrivateKey = ed25519.PrivateKey(privateBytes)
	}
	return cfg, nil
}

// Issue signs a session token for the given operator identity.
func Issue(userID string, role Role, cfg Config) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if role != RoleViewer && role != RoleOperator {
		return "", fmt.Errorf("unknown role %q", role)
	}
	if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
		return "", errors.New("session issuer is not configured with a private key")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	now := cfg.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
		UserID: userID,
		Role:   string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate verifies a session token and returns its claims.
func Validate(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenMissing, "session token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.PublicKey) != ed25519.PublicKeySize {
		return Claims{}, errors.New("session verifier is not configured")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.PublicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"session token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"session token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ID == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "session token jti is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "session token exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeTokenExpired, "session token is expired")
	}

	if strings.TrimSpace(parsed.UserID) == "" {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "session token user is required")
	}
	role := Role(parsed.Role)
	if role != RoleViewer && role != RoleOperator {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeTokenInvalid,
			"session token role is invalid",
			map[string]string{"Field": "role"},
		)
	}

	claims := Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		UserID:    parsed.UserID,
		Role:      role,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeTokenInvalid, "session token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeTokenInvalid, "session token alg is invalid")
	}
	return apperrors.New(apperrors.CodeTokenInvalid, "session token is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
