package cursor

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	token, err := Encode(42, `region = "emberfall"`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	seq, err := Decode(token, `region = "emberfall"`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if seq != 42 {
		t.Fatalf("seq = %d, want 42", seq)
	}
}

func TestDecodeRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := Decode("", ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := Decode("not-base64!!", ""); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	garbage := base64.URLEncoding.EncodeToString([]byte("not json"))
	if _, err := Decode(garbage, ""); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestDecodeRejectsForeignFilter(t *testing.T) {
	t.Parallel()

	token, err := Encode(7, "amount > 100")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(token, "amount > 200"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("err = %v, want ErrMismatch", err)
	}
}

func TestEmptyFilterTokensInterchange(t *testing.T) {
	t.Parallel()

	token, err := Encode(3, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	seq, err := Decode(token, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if seq != 3 {
		t.Fatalf("seq = %d, want 3", seq)
	}
}
