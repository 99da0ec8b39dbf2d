package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// PutEffect persists an active effect.
func (s *Store) PutEffect(ctx context.Context, e rules.Effect) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("effect id is required")
	}
	if strings.TrimSpace(e.CharacterID) == "" {
		return fmt.Errorf("effect character id is required")
	}
	if err := e.Validate(); err != nil {
		return err
	}

	modifiers, err := encodeModifiers(e.Modifiers)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO effects (id, character_id, name, category, tag, turns_left, modifiers, applied_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	category = excluded.category,
	tag = excluded.tag,
	turns_left = excluded.turns_left,
	modifiers = excluded.modifiers
`,
		e.ID, e.CharacterID, e.Name, e.Category, string(e.Tag), e.TurnsLeft, modifiers, toMillis(e.AppliedAt),
	)
	if err != nil {
		return fmt.Errorf("put effect: %w", err)
	}
	return nil
}

// DeleteEffect removes an effect from a character.
func (s *Store) DeleteEffect(ctx context.Context, characterID, effectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	effectID = strings.TrimSpace(effectID)
	if characterID == "" || effectID == "" {
		return fmt.Errorf("character id and effect id are required")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM effects WHERE id = ? AND character_id = ?`, effectID, characterID)
	if err != nil {
		return fmt.Errorf("delete effect: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete effect: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListEffectsByCharacter returns all effects on a character ordered by
// application time.
func (s *Store) ListEffectsByCharacter(ctx context.Context, characterID string) ([]rules.Effect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return nil, fmt.Errorf("character id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, character_id, name, category, tag, turns_left, modifiers, applied_at
FROM effects
WHERE character_id = ?
ORDER BY applied_at ASC, id ASC
`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list effects: %w", err)
	}
	defer rows.Close()

	var effects []rules.Effect
	for rows.Next() {
		var (
			e            rules.Effect
			tag          string
			modifiersRaw string
			appliedAt    int64
		)
		if err := rows.Scan(&e.ID, &e.CharacterID, &e.Name, &e.Category, &tag, &e.TurnsLeft, &modifiersRaw, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan effect: %w", err)
		}
		mods, err := decodeModifiers(modifiersRaw)
		if err != nil {
			return nil, err
		}
		e.Tag = rules.DurationTag(tag)
		e.Modifiers = mods
		e.AppliedAt = fromMillis(appliedAt)
		effects = append(effects, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list effects: %w", err)
	}
	return effects, nil
}

// SaveTurnResult persists end-turn output in one transaction: expired
// effects are removed, surviving effect turn counts are updated, and the
// character's live stats and health are written together.
func (s *Store) SaveTurnResult(ctx context.Context, c character.Character, active []rules.Effect, expiredIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("character id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin turn transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, effectID := range expiredIDs {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM effects WHERE id = ? AND character_id = ?`, effectID, c.ID); err != nil {
			return fmt.Errorf("remove expired effect: %w", err)
		}
	}
	for _, e := range active {
		if _, err := tx.ExecContext(ctx,
			`UPDATE effects SET turns_left = ? WHERE id = ? AND character_id = ?`,
			e.TurnsLeft, e.ID, c.ID); err != nil {
			return fmt.Errorf("update effect turns: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
UPDATE characters SET
	live_max_health = ?, live_attack = ?, live_defense = ?, live_speed = ?, live_regen = ?,
	health = ?, updated_at = ?
WHERE id = ?
`,
		c.Live.MaxHealth, c.Live.Attack, c.Live.Defense, c.Live.Speed, c.Live.Regen,
		c.Health, toMillis(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update character state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update character state: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit turn transaction: %w", err)
	}
	return nil
}
