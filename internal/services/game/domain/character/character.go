// Package character holds character identity, base stats, and the derived
// state the grid reads back after every turn.
package character

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/id"
	"github.com/veilspire/gridlink/internal/rules"
)

// Kind captures whether a character is player controlled.
type Kind string

const (
	// KindPC is a player character driven by a grid avatar.
	KindPC Kind = "pc"
	// KindNPC is a scripted character driven by the region simulation.
	KindNPC Kind = "npc"
)

// Stat bounds enforced at registration and on stat updates.
const (
	MinMaxHealth = 1
	MaxMaxHealth = 1000
	MinStat      = 0
	MaxStat      = 500
)

var (
	// ErrEmptyName indicates a character without a display name.
	ErrEmptyName = apperrors.New(apperrors.CodeCharacterEmptyName, "character name is required")
	// ErrEmptyRegion indicates a character without a home region.
	ErrEmptyRegion = apperrors.New(apperrors.CodeCharacterEmptyRegion, "character region is required")
	// ErrInvalidKind indicates an unknown character kind.
	ErrInvalidKind = apperrors.New(apperrors.CodeCharacterInvalidKind, "character kind must be pc or npc")
)

// Character is the persisted character state: profile, base stats, and the
// derived values last computed by the rules engine.
type Character struct {
	ID        string
	Name      string
	AvatarKey string
	Kind      Kind
	Region    string

	Base   rules.BaseStats
	Live   rules.LiveStats
	Health int

	// Balance is the credit balance in grid minor units, fed by payments.
	Balance int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterInput contains the fields required to register a character.
type RegisterInput struct {
	Name      string
	AvatarKey string
	Kind      Kind
	Region    string
	Base      rules.BaseStats
}

// NormalizeRegisterInput trims and validates registration input.
func NormalizeRegisterInput(input RegisterInput) (RegisterInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return RegisterInput{}, ErrEmptyName
	}

	input.Region = strings.TrimSpace(input.Region)
	if input.Region == "" {
		return RegisterInput{}, ErrEmptyRegion
	}

	input.Kind = Kind(strings.ToLower(strings.TrimSpace(string(input.Kind))))
	if input.Kind != KindPC && input.Kind != KindNPC {
		return RegisterInput{}, ErrInvalidKind
	}

	input.AvatarKey = strings.TrimSpace(input.AvatarKey)

	if err := ValidateBaseStats(input.Base); err != nil {
		return RegisterInput{}, err
	}
	return input, nil
}

// ValidateBaseStats checks base stats against the allowed bounds.
func ValidateBaseStats(base rules.BaseStats) error {
	if base.MaxHealth < MinMaxHealth || base.MaxHealth > MaxMaxHealth {
		return apperrors.WithMetadata(apperrors.CodeCharacterInvalidStats,
			fmt.Sprintf("max health must be between %d and %d", MinMaxHealth, MaxMaxHealth),
			map[string]string{"Field": "max_health"})
	}
	bounded := map[string]int{
		"attack":  base.Attack,
		"defense": base.Defense,
		"speed":   base.Speed,
		"regen":   base.Regen,
	}
	for field, value := range bounded {
		if value < MinStat || value > MaxStat {
			return apperrors.WithMetadata(apperrors.CodeCharacterInvalidStats,
				fmt.Sprintf("%s must be between %d and %d", field, MinStat, MaxStat),
				map[string]string{"Field": field})
		}
	}
	return nil
}

// Register constructs a normalized character with generated ID. Live stats
// start as the plain derivation of base stats and health starts full.
func Register(input RegisterInput, now func() time.Time, idGenerator func() (string, error)) (Character, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeRegisterInput(input)
	if err != nil {
		return Character{}, err
	}

	characterID, err := idGenerator()
	if err != nil {
		return Character{}, fmt.Errorf("generate character id: %w", err)
	}

	live := rules.RecalculateLiveStats(normalized.Base, nil)
	createdAt := now().UTC()
	return Character{
		ID:        characterID,
		Name:      normalized.Name,
		AvatarKey: normalized.AvatarKey,
		Kind:      normalized.Kind,
		Region:    normalized.Region,
		Base:      normalized.Base,
		Live:      live,
		Health:    live.MaxHealth,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// UpdateBaseStats replaces base stats, rederives live stats from the given
// active effects, and re-clamps health against the new maximum.
func UpdateBaseStats(c Character, base rules.BaseStats, effects []rules.Effect, now func() time.Time) (Character, error) {
	if now == nil {
		now = time.Now
	}
	if err := ValidateBaseStats(base); err != nil {
		return Character{}, err
	}

	c.Base = base
	c.Live = rules.RecalculateLiveStats(base, effects)
	c.Health = rules.ApplyHealthBonusChanges(c.Health, c.Live.MaxHealth)
	c.UpdatedAt = now().UTC()
	return c, nil
}
