package signing

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
)

// MaxSkew is the allowed distance between the signed timestamp and server
// time. Nonce retention must exceed twice this window.
const MaxSkew = 5 * time.Minute

// maxBodyBytes caps how much request body the verifier will buffer.
const maxBodyBytes = 1 << 20

// Verifier validates grid request signatures and replay state.
type Verifier struct {
	keyring *Keyring
	nonces  *NonceStore
	logger  *log.Logger
	now     func() time.Time
}

// NewVerifier builds a Verifier from a keyring and nonce store.
func NewVerifier(keyring *Keyring, nonces *NonceStore, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{keyring: keyring, nonces: nonces, logger: logger, now: time.Now}
}

// Middleware verifies the grid signature headers on every request before the
// handler runs. On success the verified region is stored in the request
// context and the body remains readable by the handler.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			v.reject(w, r, apperrors.Wrap(apperrors.CodeSignatureInvalid, "read request body", err))
			return
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		region, err := v.verify(r, body)
		if err != nil {
			v.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(requestctx.WithRegion(r.Context(), region)))
	})
}

func (v *Verifier) verify(r *http.Request, body []byte) (region string, err error) {
	signature := strings.TrimSpace(r.Header.Get(HeaderSignature))
	if signature == "" {
		return "", apperrors.New(apperrors.CodeSignatureMissing, "signature header is required")
	}
	region = strings.TrimSpace(r.Header.Get(HeaderRegion))
	if region == "" {
		return "", apperrors.New(apperrors.CodeSignatureNoRegion, "grid region header is required")
	}

	rawTimestamp := strings.TrimSpace(r.Header.Get(HeaderTimestamp))
	timestamp, parseErr := strconv.ParseInt(rawTimestamp, 10, 64)
	if parseErr != nil {
		return "", apperrors.New(apperrors.CodeSignatureInvalid, "timestamp header is not a unix timestamp")
	}
	skew := v.now().Sub(time.Unix(timestamp, 0))
	if skew > MaxSkew || skew < -MaxSkew {
		return "", apperrors.New(apperrors.CodeSignatureExpired, "signature timestamp outside allowed skew")
	}

	nonce := strings.TrimSpace(r.Header.Get(HeaderNonce))
	if nonce == "" {
		return "", apperrors.New(apperrors.CodeSignatureInvalid, "nonce header is required")
	}

	canonical := CanonicalRequest(r.Method, r.URL.Path, timestamp, nonce, body)
	keyID := r.Header.Get(HeaderKeyID)
	if err := v.keyring.Verify(region, canonical, signature, keyID); err != nil {
		return "", err
	}

	// Replay check runs after signature verification so unauthenticated
	// traffic cannot fill the nonce store.
	replayed, err := v.nonces.Remember(nonce)
	if err != nil {
		return "", err
	}
	if replayed {
		return "", apperrors.New(apperrors.CodeSignatureReplayed, "nonce already used")
	}
	return region, nil
}

func (v *Verifier) reject(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	v.logger.Printf("grid auth rejected method=%s path=%s code=%s: %v", r.Method, r.URL.Path, code, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(code)})
}

// SignRequest signs an outbound request the way the grid client does.
// Exposed for the seed tool and tests.
func SignRequest(keyring *Keyring, r *http.Request, region string, timestamp int64, nonce string, body []byte) error {
	canonical := CanonicalRequest(r.Method, r.URL.Path, timestamp, nonce, body)
	signature, keyID, err := keyring.Sign(region, canonical)
	if err != nil {
		return err
	}
	r.Header.Set(HeaderKeyID, keyID)
	r.Header.Set(HeaderRegion, region)
	r.Header.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	r.Header.Set(HeaderNonce, nonce)
	r.Header.Set(HeaderSignature, signature)
	return nil
}
