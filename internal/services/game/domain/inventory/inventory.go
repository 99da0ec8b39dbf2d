// Package inventory tracks item stacks per character. Grants merge into
// existing stacks; consumption fails rather than going negative.
package inventory

import (
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

var (
	// ErrEmptyItem indicates a grant or consume without an item key.
	ErrEmptyItem = apperrors.New(apperrors.CodeInventoryEmptyItem, "item key is required")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = apperrors.New(apperrors.CodeInventoryInvalidQuantity, "quantity must be positive")
)

// Stack is one item stack in a character's inventory.
type Stack struct {
	CharacterID string `json:"character_id"`
	ItemKey     string `json:"item_key"`
	Quantity    int64  `json:"quantity"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeInput contains the fields of a grant or consume request.
type ChangeInput struct {
	CharacterID string
	ItemKey     string
	Quantity    int64
}

// NormalizeChangeInput trims and validates a stack change.
func NormalizeChangeInput(input ChangeInput) (ChangeInput, error) {
	input.CharacterID = strings.TrimSpace(input.CharacterID)
	if input.CharacterID == "" {
		return ChangeInput{}, apperrors.New(apperrors.CodeCharacterEmptyName, "character id is required")
	}
	input.ItemKey = strings.ToLower(strings.TrimSpace(input.ItemKey))
	if input.ItemKey == "" {
		return ChangeInput{}, ErrEmptyItem
	}
	if input.Quantity <= 0 {
		return ChangeInput{}, ErrInvalidQuantity
	}
	return input, nil
}

// Grant merges a quantity into a stack, creating it when absent.
func Grant(stack Stack, input ChangeInput, now func() time.Time) (Stack, error) {
	if now == nil {
		now = time.Now
	}
	normalized, err := NormalizeChangeInput(input)
	if err != nil {
		return Stack{}, err
	}

	stack.CharacterID = normalized.CharacterID
	stack.ItemKey = normalized.ItemKey
	stack.Quantity += normalized.Quantity
	stack.UpdatedAt = now().UTC()
	return stack, nil
}

// Consume removes a quantity from a stack. Consuming more than the stack
// holds fails with an insufficient-quantity error.
func Consume(stack Stack, input ChangeInput, now func() time.Time) (Stack, error) {
	if now == nil {
		now = time.Now
	}
	normalized, err := NormalizeChangeInput(input)
	if err != nil {
		return Stack{}, err
	}
	if stack.Quantity < normalized.Quantity {
		return Stack{}, apperrors.WithMetadata(apperrors.CodeInventoryInsufficient,
			"not enough items to consume",
			map[string]string{"Item": normalized.ItemKey})
	}

	stack.Quantity -= normalized.Quantity
	stack.UpdatedAt = now().UTC()
	return stack, nil
}
