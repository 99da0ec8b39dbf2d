package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// GetStack fetches one item stack.
func (s *Store) GetStack(ctx context.Context, characterID, itemKey string) (inventory.Stack, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Stack{}, err
	}
	if s == nil || s.sqlDB == nil {
		return inventory.Stack{}, fmt.Errorf("storage is not configured")
	}
	characterID = strings.TrimSpace(characterID)
	itemKey = strings.TrimSpace(itemKey)
	if characterID == "" || itemKey == "" {
		return inventory.Stack{}, fmt.Errorf("character id and item key are required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT character_id, item_key, quantity, updated_at
FROM inventory_stacks
WHERE character_id = ? AND item_key = ?
`, characterID, itemKey)
	stack, err := scanStack(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inventory.Stack{}, storage.ErrNotFound
		}
		return inventory.Stack{}, fmt.Errorf("get stack: %w", err)
	}
	return stack, nil
}

// PutStack persists an item stack. A zero quantity removes the row so
// consumed-out stacks do not linger.
func (s *Store) PutStack(ctx context.Context, stack inventory.Stack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(stack.CharacterID) == "" || strings.TrimSpace(stack.ItemKey) == "" {
		return fmt.Errorf("character id and item key are required")
	}
	if stack.Quantity < 0 {
		return fmt.Errorf("stack quantity cannot be negative")
	}

	if stack.Quantity == 0 {
		_, err := s.sqlDB.ExecContext(ctx,
			`DELETE FROM inventory_stacks WHERE character_id = ? AND item_key = ?`,
			stack.CharacterID, stack.ItemKey)
		if err != nil {
			return fmt.Errorf("delete empty stack: %w", err)
		}
		return nil
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO inventory_stacks (character_id, item_key, quantity, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(character_id, item_key) DO UPDATE SET
	quantity = excluded.quantity,
	updated_at = excluded.updated_at
`,
		stack.CharacterID, stack.ItemKey, stack.Quantity, toMillis(stack.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put stack: %w", err)
	}
	return nil
}

// ListStacksByCharacter returns all stacks for one character.
func (s *Store) ListStacksByCharacter(ctx context.Context, characterID string) ([]inventory.Stack, error) {
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
SELECT character_id, item_key, quantity, updated_at
FROM inventory_stacks
WHERE character_id = ?
ORDER BY item_key ASC
`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	defer rows.Close()

	var stacks []inventory.Stack
	for rows.Next() {
		stack, err := scanStack(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		stacks = append(stacks, stack)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	return stacks, nil
}

// ForEachStack streams every stack ordered by character then item.
func (s *Store) ForEachStack(ctx context.Context, fn func(inventory.Stack) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if fn == nil {
		return fmt.Errorf("callback is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT character_id, item_key, quantity, updated_at
FROM inventory_stacks
ORDER BY character_id ASC, item_key ASC
`)
	if err != nil {
		return fmt.Errorf("stream stacks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		stack, err := scanStack(rows.Scan)
		if err != nil {
			return fmt.Errorf("scan stack: %w", err)
		}
		if err := fn(stack); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("stream stacks: %w", err)
	}
	return nil
}

func scanStack(scan func(dest ...any) error) (inventory.Stack, error) {
	var (
		stack     inventory.Stack
		updatedAt int64
	)
	if err := scan(&stack.CharacterID, &stack.ItemKey, &stack.Quantity, &updatedAt); err != nil {
		return inventory.Stack{}, err
	}
	stack.UpdatedAt = fromMillis(updatedAt)
	return stack, nil
}
