// Package app orchestrates game operations between the HTTP surface, the
// rules engine, and storage.
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/id"
	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/rules/catalog"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/domain/task"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// Service coordinates game operations. All methods are safe for concurrent
// use; persistence consistency is delegated to the store.
type Service struct {
	store        storage.Store
	catalog      *catalog.Catalog
	rewardScript *task.RewardScript
	logger       *log.Logger
	now          func() time.Time
	newID        func() (string, error)
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithRewardScript installs a Lua hook for task reward computation.
func WithRewardScript(script *task.RewardScript) Option {
	return func(s *Service) { s.rewardScript = script }
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(s *Service) { s.newID = generator }
}

// New creates a game service.
func New(store storage.Store, cat *catalog.Catalog, logger *log.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("effect catalog is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	svc := &Service{
		store:   store,
		catalog: cat,
		logger:  logger,
		now:     time.Now,
		newID:   id.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// RegisterCharacter registers a new character and persists it.
func (s *Service) RegisterCharacter(ctx context.Context, input character.RegisterInput) (character.Character, error) {
	c, err := character.Register(input, s.now, s.newID)
	if err != nil {
		return character.Character{}, err
	}
	if err := s.store.PutCharacter(ctx, c); err != nil {
		return character.Character{}, err
	}
	s.logger.Printf("character registered id=%s region=%s kind=%s", c.ID, c.Region, c.Kind)
	return c, nil
}

// GetCharacter fetches a character with its active effects.
func (s *Service) GetCharacter(ctx context.Context, characterID string) (character.Character, []rules.Effect, error) {
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, nil, err
	}
	effects, err := s.store.ListEffectsByCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, nil, err
	}
	return c, effects, nil
}

// UpdateCharacterStats replaces a character's base stats and rederives its
// live state against current effects.
func (s *Service) UpdateCharacterStats(ctx context.Context, characterID string, base rules.BaseStats) (character.Character, error) {
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, err
	}
	effects, err := s.store.ListEffectsByCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, err
	}
	updated, err := character.UpdateBaseStats(c, base, effects, s.now)
	if err != nil {
		return character.Character{}, err
	}
	if err := s.store.PutCharacter(ctx, updated); err != nil {
		return character.Character{}, err
	}
	return updated, nil
}

// ListCharacters lists characters, optionally narrowed to a region.
func (s *Service) ListCharacters(ctx context.Context, query storage.ListCharactersQuery) (storage.CharacterPage, error) {
	return s.store.ListCharacters(ctx, query)
}

// ApplyEffectInput describes an apply-effect request. TemplateKey selects a
// catalog template; explicit fields build a custom effect instead.
type ApplyEffectInput struct {
	TemplateKey string
	Name        string
	Category    string
	Tag         rules.DurationTag
	TurnsLeft   int
	Modifiers   []rules.Modifier
}

// ApplyEffect attaches an effect to a character and returns the refreshed
// character state.
func (s *Service) ApplyEffect(ctx context.Context, characterID string, input ApplyEffectInput) (rules.Effect, character.Character, error) {
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return rules.Effect{}, character.Character{}, err
	}

	effectID, err := s.newID()
	if err != nil {
		return rules.Effect{}, character.Character{}, fmt.Errorf("generate effect id: %w", err)
	}

	var effect rules.Effect
	if key := strings.TrimSpace(input.TemplateKey); key != "" {
		effect, err = s.catalog.Instantiate(key, effectID, c.ID)
		if err != nil {
			return rules.Effect{}, character.Character{}, err
		}
	} else {
		effect = rules.Effect{
			ID:          effectID,
			CharacterID: c.ID,
			Name:        input.Name,
			Category:    input.Category,
			Tag:         input.Tag,
			TurnsLeft:   input.TurnsLeft,
			Modifiers:   input.Modifiers,
		}
	}
	effect.AppliedAt = s.now().UTC()
	if err := effect.Validate(); err != nil {
		return rules.Effect{}, character.Character{}, err
	}

	if err := s.store.PutEffect(ctx, effect); err != nil {
		return rules.Effect{}, character.Character{}, err
	}

	refreshed, err := s.recalculate(ctx, c)
	if err != nil {
		return rules.Effect{}, character.Character{}, err
	}
	s.logger.Printf("effect applied character=%s effect=%s name=%q", c.ID, effect.ID, effect.Name)
	return effect, refreshed, nil
}

// DispelEffect removes an effect and returns the refreshed character state.
func (s *Service) DispelEffect(ctx context.Context, characterID, effectID string) (character.Character, error) {
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, err
	}
	if err := s.store.DeleteEffect(ctx, characterID, effectID); err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return character.Character{}, apperrors.New(apperrors.CodeEffectNotOnCharacter, "effect is not on this character")
		}
		return character.Character{}, err
	}
	return s.recalculate(ctx, c)
}

// recalculate rederives live stats and clamped health from current effects
// and persists the result.
func (s *Service) recalculate(ctx context.Context, c character.Character) (character.Character, error) {
	effects, err := s.store.ListEffectsByCharacter(ctx, c.ID)
	if err != nil {
		return character.Character{}, err
	}
	c.Live = rules.RecalculateLiveStats(c.Base, effects)
	c.Health = rules.ApplyHealthBonusChanges(c.Health, c.Live.MaxHealth)
	c.UpdatedAt = s.now().UTC()
	if err := s.store.PutCharacter(ctx, c); err != nil {
		return character.Character{}, err
	}
	return c, nil
}

// TurnOutcome is the response of end-turn processing.
type TurnOutcome struct {
	Character    character.Character
	Active       []rules.Effect
	Expired      []rules.Effect
	Healed       int
	RegenApplied int
}

// EndTurn runs end-of-turn processing for a character: effect durations
// tick, live stats are recomputed, regen then explicit healing apply, and
// the outcome is persisted atomically.
func (s *Service) EndTurn(ctx context.Context, characterID string, healAmount int) (TurnOutcome, error) {
	if healAmount < 0 {
		return TurnOutcome{}, apperrors.New(apperrors.CodeEffectHealingNegative, "healing cannot be negative")
	}

	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return TurnOutcome{}, err
	}
	effects, err := s.store.ListEffectsByCharacter(ctx, characterID)
	if err != nil {
		return TurnOutcome{}, err
	}

	result := rules.EndTurn(c.Base, c.Health, effects, healAmount)

	c.Live = result.Live
	c.Health = result.Health
	c.UpdatedAt = s.now().UTC()

	expiredIDs := make([]string, 0, len(result.Expired))
	for _, e := range result.Expired {
		expiredIDs = append(expiredIDs, e.ID)
	}
	if err := s.store.SaveTurnResult(ctx, c, result.Active, expiredIDs); err != nil {
		return TurnOutcome{}, err
	}

	s.logger.Printf("turn ended character=%s active=%d expired=%d health=%d",
		c.ID, len(result.Active), len(result.Expired), c.Health)
	return TurnOutcome{
		Character:    c,
		Active:       result.Active,
		Expired:      result.Expired,
		Healed:       result.Healed,
		RegenApplied: result.RegenApplied,
	}, nil
}

// Damage reduces a character's health, flooring at zero.
func (s *Service) Damage(ctx context.Context, characterID string, amount int) (character.Character, error) {
	if amount < 0 {
		return character.Character{}, apperrors.New(apperrors.CodeEffectDamageNegative, "damage cannot be negative")
	}
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, err
	}

	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.store.PutCharacter(ctx, c); err != nil {
		return character.Character{}, err
	}
	return c, nil
}

// Heal raises a character's health, clamped to the live maximum, and
// returns the healing actually applied.
func (s *Service) Heal(ctx context.Context, characterID string, amount int) (character.Character, int, error) {
	if amount < 0 {
		return character.Character{}, 0, apperrors.New(apperrors.CodeEffectHealingNegative, "healing cannot be negative")
	}
	c, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		return character.Character{}, 0, err
	}

	healed, result := rules.ApplyHealing(c.Health, amount, c.Live.MaxHealth)
	c.Health = result
	c.UpdatedAt = s.now().UTC()
	if err := s.store.PutCharacter(ctx, c); err != nil {
		return character.Character{}, 0, err
	}
	return c, healed, nil
}
