package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeCharacterEmptyName, "character name is required")
	if err.Code != CodeCharacterEmptyName {
		t.Fatalf("Code = %q, want %q", err.Code, CodeCharacterEmptyName)
	}
	if err.Error() != "character name is required" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "persist character", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match with errors.Is")
	}
	if err.Unwrap() != cause {
		t.Fatal("Unwrap should return the cause")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeNotFound, "character not found")
	b := New(CodeNotFound, "different message")
	if !stderrors.Is(a, b) {
		t.Fatal("expected errors with equal codes to match")
	}
	c := New(CodeTokenInvalid, "bad token")
	if stderrors.Is(a, c) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestCodeOfUnwrapsChains(t *testing.T) {
	inner := New(CodeSignatureReplayed, "nonce already seen")
	wrapped := fmt.Errorf("verify request: %w", inner)
	if got := CodeOf(wrapped); got != CodeSignatureReplayed {
		t.Fatalf("CodeOf = %q, want %q", got, CodeSignatureReplayed)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf nil = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeCharacterEmptyName, http.StatusBadRequest},
		{CodeEffectInvalidTag, http.StatusBadRequest},
		{CodeSignatureInvalid, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeTaskInvalidTransition, http.StatusConflict},
		{CodeInventoryInsufficient, http.StatusConflict},
		{CodeNotFound, http.StatusNotFound},
		{CodeEffectNotOnCharacter, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
		{Code("SOMETHING_NEW"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s HTTPStatus = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestWithMetadata(t *testing.T) {
	err := WithMetadata(CodeInventoryInsufficient, "not enough items", map[string]string{"item": "ember_shard"})
	if err.Metadata["item"] != "ember_shard" {
		t.Fatalf("Metadata = %v", err.Metadata)
	}
}
