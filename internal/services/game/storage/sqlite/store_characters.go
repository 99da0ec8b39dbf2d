package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/veilspire/gridlink/internal/platform/cursor"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

const characterColumns = `id, name, avatar_key, kind, region,
	base_max_health, base_attack, base_defense, base_speed, base_regen,
	live_max_health, live_attack, live_defense, live_speed, live_regen,
	health, balance, created_at, updated_at`

// PutCharacter persists a character record, replacing any prior state.
func (s *Store) PutCharacter(ctx context.Context, c character.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("character name is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("character region is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO characters (
	id, name, avatar_key, kind, region,
	base_max_health, base_attack, base_defense, base_speed, base_regen,
	live_max_health, live_attack, live_defense, live_speed, live_regen,
	health, balance, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	avatar_key = excluded.avatar_key,
	kind = excluded.kind,
	region = excluded.region,
	base_max_health = excluded.base_max_health,
	base_attack = excluded.base_attack,
	base_defense = excluded.base_defense,
	base_speed = excluded.base_speed,
	base_regen = excluded.base_regen,
	live_max_health = excluded.live_max_health,
	live_attack = excluded.live_attack,
	live_defense = excluded.live_defense,
	live_speed = excluded.live_speed,
	live_regen = excluded.live_regen,
	health = excluded.health,
	updated_at = excluded.updated_at
`,
		c.ID, c.Name, c.AvatarKey, string(c.Kind), c.Region,
		c.Base.MaxHealth, c.Base.Attack, c.Base.Defense, c.Base.Speed, c.Base.Regen,
		c.Live.MaxHealth, c.Live.Attack, c.Live.Defense, c.Live.Speed, c.Live.Regen,
		c.Health, c.Balance, toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrCharacterExists
		}
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter fetches a character by ID.
func (s *Store) GetCharacter(ctx context.Context, id string) (character.Character, error) {
	if err := ctx.Err(); err != nil {
		return character.Character{}, err
	}
	if s == nil || s.sqlDB == nil {
		return character.Character{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return character.Character{}, fmt.Errorf("character id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, id)
	c, err := scanCharacter(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return character.Character{}, storage.ErrNotFound
		}
		return character.Character{}, fmt.Errorf("get character: %w", err)
	}
	return c, nil
}

// ListCharacters returns a page of characters ordered by insertion. Region
// and filter narrowing compose; page tokens bind to the filter key.
func (s *Store) ListCharacters(ctx context.Context, query storage.ListCharactersQuery) (storage.CharacterPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CharacterPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CharacterPage{}, fmt.Errorf("storage is not configured")
	}

	pageSize := normalizePageSize(query.PageSize)
	afterSeq, err := decodePageToken(query.PageToken, query.FilterKey)
	if err != nil {
		return storage.CharacterPage{}, err
	}

	where := []string{"seq > ?"}
	args := []any{afterSeq}
	if region := strings.TrimSpace(query.Region); region != "" {
		where = append(where, "region = ?")
		args = append(args, region)
	}
	if filter := strings.TrimSpace(query.FilterSQL); filter != "" {
		where = append(where, "("+filter+")")
		args = append(args, query.FilterArgs...)
	}
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, `+characterColumns+`
FROM characters
WHERE `+strings.Join(where, " AND ")+`
ORDER BY seq ASC
LIMIT ?
`, args...)
	if err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var page storage.CharacterPage
	var lastSeq uint64
	for rows.Next() {
		var seq uint64
		c, err := scanCharacter(func(dest ...any) error {
			return rows.Scan(append([]any{&seq}, dest...)...)
		})
		if err != nil {
			return storage.CharacterPage{}, fmt.Errorf("scan character: %w", err)
		}
		if len(page.Characters) == pageSize {
			token, err := encodePageToken(lastSeq, query.FilterKey)
			if err != nil {
				return storage.CharacterPage{}, err
			}
			page.NextPageToken = token
			break
		}
		page.Characters = append(page.Characters, c)
		lastSeq = seq
	}
	if err := rows.Err(); err != nil {
		return storage.CharacterPage{}, fmt.Errorf("list characters: %w", err)
	}
	return page, nil
}

// CreditBalance atomically adds to a character's balance.
func (s *Store) CreditBalance(ctx context.Context, characterID string, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	if characterID == "" {
		return fmt.Errorf("character id is required")
	}

	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE characters SET balance = balance + ? WHERE id = ?`, amount, characterID)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanCharacter(scan func(dest ...any) error) (character.Character, error) {
	var (
		c         character.Character
		kind      string
		createdAt int64
		updatedAt int64
	)
	if err := scan(
		&c.ID, &c.Name, &c.AvatarKey, &kind, &c.Region,
		&c.Base.MaxHealth, &c.Base.Attack, &c.Base.Defense, &c.Base.Speed, &c.Base.Regen,
		&c.Live.MaxHealth, &c.Live.Attack, &c.Live.Defense, &c.Live.Speed, &c.Live.Regen,
		&c.Health, &c.Balance, &createdAt, &updatedAt,
	); err != nil {
		return character.Character{}, err
	}
	c.Kind = character.Kind(kind)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

const defaultPageSize = 50
const maxPageSize = 200

func normalizePageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

func decodePageToken(token, filterKey string) (uint64, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}
	seq, err := cursor.Decode(token, filterKey)
	if err != nil {
		return 0, storage.ErrInvalidCursor
	}
	return seq, nil
}

func encodePageToken(seq uint64, filterKey string) (string, error) {
	token, err := cursor.Encode(seq, filterKey)
	if err != nil {
		return "", fmt.Errorf("encode page token: %w", err)
	}
	return token, nil
}
