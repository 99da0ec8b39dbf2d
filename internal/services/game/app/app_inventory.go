package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
)

// GrantItem merges a quantity into a character's item stack.
func (s *Service) GrantItem(ctx context.Context, input inventory.ChangeInput) (inventory.Stack, error) {
	if _, err := s.store.GetCharacter(ctx, input.CharacterID); err != nil {
		return inventory.Stack{}, err
	}

	current, err := s.store.GetStack(ctx, input.CharacterID, input.ItemKey)
	if err != nil && apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return inventory.Stack{}, err
	}

	granted, err := inventory.Grant(current, input, s.now)
	if err != nil {
		return inventory.Stack{}, err
	}
	if err := s.store.PutStack(ctx, granted); err != nil {
		return inventory.Stack{}, err
	}
	return granted, nil
}

// ConsumeItem removes a quantity from a character's item stack.
func (s *Service) ConsumeItem(ctx context.Context, input inventory.ChangeInput) (inventory.Stack, error) {
	current, err := s.store.GetStack(ctx, input.CharacterID, input.ItemKey)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return inventory.Stack{}, apperrors.New(apperrors.CodeInventoryInsufficient, "not enough items to consume")
		}
		return inventory.Stack{}, err
	}

	consumed, err := inventory.Consume(current, input, s.now)
	if err != nil {
		return inventory.Stack{}, err
	}
	if err := s.store.PutStack(ctx, consumed); err != nil {
		return inventory.Stack{}, err
	}
	return consumed, nil
}

// ListInventory returns all stacks for a character.
func (s *Service) ListInventory(ctx context.Context, characterID string) ([]inventory.Stack, error) {
	if _, err := s.store.GetCharacter(ctx, characterID); err != nil {
		return nil, err
	}
	return s.store.ListStacksByCharacter(ctx, characterID)
}

// ExportInventory streams every stack as zstd-compressed JSON lines.
func (s *Service) ExportInventory(ctx context.Context, out io.Writer) error {
	if out == nil {
		return fmt.Errorf("output is required")
	}

	writer, err := zstd.NewWriter(out)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}

	encoder := json.NewEncoder(writer)
	if err := s.store.ForEachStack(ctx, func(stack inventory.Stack) error {
		return encoder.Encode(stack)
	}); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}
