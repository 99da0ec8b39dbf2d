package filter

import (
	"reflect"
	"testing"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

func characterDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := CharacterDefinition()
	if err != nil {
		t.Fatalf("character definition: %v", err)
	}
	return def
}

func paymentDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := PaymentDefinition()
	if err != nil {
		t.Fatalf("payment definition: %v", err)
	}
	return def
}

func TestParse_KindEquals(t *testing.T) {
	cond, err := characterDefinition(t).Parse(`kind = "npc"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "kind = ?" {
		t.Errorf("expected 'kind = ?', got %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"npc"}) {
		t.Errorf("Params = %v", cond.Params)
	}
}

func TestParse_Empty(t *testing.T) {
	cond, err := characterDefinition(t).Parse(" ")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "" || cond.Params != nil {
		t.Fatalf("expected empty condition, got %+v", cond)
	}
}

func TestParse_AndOr(t *testing.T) {
	def := characterDefinition(t)

	cond, err := def.Parse(`kind = "pc" AND region = "emberfall"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(kind = ? AND region = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if !reflect.DeepEqual(cond.Params, []any{"pc", "emberfall"}) {
		t.Fatalf("Params = %v", cond.Params)
	}

	cond, err = def.Parse(`region = "emberfall" OR region = "duskmoor"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(region = ? OR region = ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParse_NumericComparisons(t *testing.T) {
	def := characterDefinition(t)

	cond, err := def.Parse(`health < 20`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "health < ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	if cond.Params[0] != int64(20) {
		t.Fatalf("param = %v (%T), want int64 20", cond.Params[0], cond.Params[0])
	}

	cond, err = def.Parse(`balance >= 1000`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "balance >= ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParse_Timestamp(t *testing.T) {
	cond, err := paymentDefinition(t).Parse(`created_at > timestamp("2026-01-01T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "created_at > ?" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if cond.Params[0] != want {
		t.Fatalf("param = %v, want millis %d", cond.Params[0], want)
	}
}

func TestParse_PaymentFields(t *testing.T) {
	cond, err := paymentDefinition(t).Parse(`character_id = "char-1" AND amount > 100`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cond.Clause != "(character_id = ? AND amount > ?)" {
		t.Fatalf("Clause = %q", cond.Clause)
	}
}

func TestParse_InvalidField(t *testing.T) {
	_, err := characterDefinition(t).Parse(`secret = "x"`)
	if apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("expected filter invalid code, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := characterDefinition(t).Parse(`kind = `)
	if apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
		t.Fatalf("expected filter invalid code, got %v", err)
	}
}
