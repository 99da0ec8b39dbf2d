// Package rules implements the turn-based effect resolution engine: active
// effect bookkeeping, live stat recomputation from stacked modifiers, and
// clamped healing against the dynamic maximum.
package rules

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

// StatName identifies a derived stat a modifier can change.
type StatName string

const (
	StatMaxHealth StatName = "max_health"
	StatAttack    StatName = "attack"
	StatDefense   StatName = "defense"
	StatSpeed     StatName = "speed"
	StatRegen     StatName = "regen"
)

// ModifierOp defines how a modifier combines with a base stat.
type ModifierOp string

const (
	// OpAdd contributes a flat bonus or penalty.
	OpAdd ModifierOp = "add"
	// OpMul scales the stat after all additive bonuses are applied.
	OpMul ModifierOp = "mul"
)

// DurationTag controls how an effect's remaining turns are processed.
type DurationTag string

const (
	// TagTimed effects lose one turn per end-turn processing and expire at zero.
	TagTimed DurationTag = "timed"
	// TagScened effects persist until the scene ends; end-turn processing
	// leaves their remaining turns untouched.
	TagScened DurationTag = "scened"
	// TagPermanent effects never expire.
	TagPermanent DurationTag = "permanent"
)

var (
	// ErrEmptyName indicates an effect without a name.
	ErrEmptyName = apperrors.New(apperrors.CodeEffectEmptyName, "effect name is required")
	// ErrInvalidTag indicates an unknown duration tag.
	ErrInvalidTag = apperrors.New(apperrors.CodeEffectInvalidTag, "effect tag must be timed, scened, or permanent")
	// ErrInvalidTurns indicates a timed effect without remaining turns.
	ErrInvalidTurns = apperrors.New(apperrors.CodeEffectInvalidTurns, "timed effects need at least one turn")
	// ErrInvalidModifier indicates a modifier with an unknown stat or op.
	ErrInvalidModifier = apperrors.New(apperrors.CodeEffectInvalidModifier, "effect modifier is invalid")
)

// Modifier is a single stat modification contributed by an effect.
// Multiple modifiers can stack on the same stat.
type Modifier struct {
	Stat  StatName   `json:"stat"`
	Op    ModifierOp `json:"op"`
	Value float64    `json:"value"`
}

// Validate checks the modifier references a known stat and operation.
func (m Modifier) Validate() error {
	switch m.Stat {
	case StatMaxHealth, StatAttack, StatDefense, StatSpeed, StatRegen:
	default:
		return apperrors.WithMetadata(apperrors.CodeEffectInvalidModifier,
			fmt.Sprintf("unknown stat %q", m.Stat),
			map[string]string{"stat": string(m.Stat)})
	}
	switch m.Op {
	case OpAdd:
	case OpMul:
		if m.Value < 0 {
			return apperrors.New(apperrors.CodeEffectInvalidModifier, "multiplier cannot be negative")
		}
	default:
		return apperrors.WithMetadata(apperrors.CodeEffectInvalidModifier,
			fmt.Sprintf("unknown op %q", m.Op),
			map[string]string{"op": string(m.Op)})
	}
	return nil
}

// Effect is one active timed or scened effect on a character.
type Effect struct {
	ID          string      `json:"id"`
	CharacterID string      `json:"character_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Tag         DurationTag `json:"tag"`
	TurnsLeft   int         `json:"turns_left"`
	Modifiers   []Modifier  `json:"modifiers"`
	AppliedAt   time.Time   `json:"applied_at"`
}

// Validate checks the effect is well formed before it is persisted.
func (e Effect) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	switch e.Tag {
	case TagTimed:
		if e.TurnsLeft < 1 {
			return ErrInvalidTurns
		}
	case TagScened, TagPermanent:
	default:
		return ErrInvalidTag
	}
	for _, mod := range e.Modifiers {
		if err := mod.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Expired reports whether the effect has no turns left to contribute.
func (e Effect) Expired() bool {
	return e.Tag == TagTimed && e.TurnsLeft <= 0
}
