package rules

import (
	"errors"
	"testing"
)

func TestEffectValidate(t *testing.T) {
	t.Parallel()

	valid := Effect{
		Name:      "Ember Ward",
		Tag:       TagTimed,
		TurnsLeft: 3,
		Modifiers: []Modifier{{Stat: StatDefense, Op: OpAdd, Value: 2}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEffectValidateEmptyName(t *testing.T) {
	t.Parallel()

	effect := Effect{Tag: TagScened}
	if err := effect.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestEffectValidateUnknownTag(t *testing.T) {
	t.Parallel()

	effect := Effect{Name: "Hex", Tag: DurationTag("forever")}
	if err := effect.Validate(); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestEffectValidateTimedNeedsTurns(t *testing.T) {
	t.Parallel()

	effect := Effect{Name: "Haste", Tag: TagTimed, TurnsLeft: 0}
	if err := effect.Validate(); !errors.Is(err, ErrInvalidTurns) {
		t.Fatalf("expected ErrInvalidTurns, got %v", err)
	}
}

func TestEffectValidateScenedWithoutTurns(t *testing.T) {
	t.Parallel()

	// Scened effects carry no turn budget; zero is fine.
	effect := Effect{Name: "Scene Blessing", Tag: TagScened}
	if err := effect.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestModifierValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mod     Modifier
		wantErr bool
	}{
		{"add attack", Modifier{Stat: StatAttack, Op: OpAdd, Value: 5}, false},
		{"mul speed", Modifier{Stat: StatSpeed, Op: OpMul, Value: 1.5}, false},
		{"negative add", Modifier{Stat: StatDefense, Op: OpAdd, Value: -3}, false},
		{"unknown stat", Modifier{Stat: StatName("luck"), Op: OpAdd, Value: 1}, true},
		{"unknown op", Modifier{Stat: StatAttack, Op: ModifierOp("sub"), Value: 1}, true},
		{"negative multiplier", Modifier{Stat: StatAttack, Op: OpMul, Value: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.mod.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.Is(err, ErrInvalidModifier) {
				t.Fatalf("expected ErrInvalidModifier, got %v", err)
			}
		})
	}
}

func TestEffectExpired(t *testing.T) {
	t.Parallel()

	if (Effect{Tag: TagTimed, TurnsLeft: 1}).Expired() {
		t.Fatal("timed effect with turns left should not be expired")
	}
	if !(Effect{Tag: TagTimed, TurnsLeft: 0}).Expired() {
		t.Fatal("timed effect with zero turns should be expired")
	}
	if (Effect{Tag: TagScened, TurnsLeft: 0}).Expired() {
		t.Fatal("scened effect never expires from turn count")
	}
	if (Effect{Tag: TagPermanent}).Expired() {
		t.Fatal("permanent effect never expires")
	}
}
