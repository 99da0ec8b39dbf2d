// Package storage defines persistence interfaces for the game service.
// Implementations live in subpackages (sqlite).
package storage

import (
	"context"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/domain/task"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrInvalidCursor indicates a malformed or mismatched page token. Tokens
// are bound to the filter they were issued for.
var ErrInvalidCursor = apperrors.New(apperrors.CodeCursorInvalid, "page token is invalid")

// ErrCharacterExists indicates a write collided with the unique
// (region, name) character identity.
var ErrCharacterExists = apperrors.New(apperrors.CodeCharacterAlreadyExists, "a character with this name already exists in the region")

// CharacterPage describes a page of characters.
type CharacterPage struct {
	Characters    []character.Character
	NextPageToken string
}

// ListCharactersQuery narrows a character listing. FilterSQL is a WHERE
// fragment produced by the filter translator with bind args in FilterArgs.
type ListCharactersQuery struct {
	Region     string
	FilterSQL  string
	FilterArgs []any
	PageSize   int
	PageToken  string
	// FilterKey invalidates page tokens when the filter changes between pages.
	FilterKey string
}

// CharacterStore owns character profiles, stats, and balances.
type CharacterStore interface {
	PutCharacter(ctx context.Context, c character.Character) error
	GetCharacter(ctx context.Context, id string) (character.Character, error)
	ListCharacters(ctx context.Context, query ListCharactersQuery) (CharacterPage, error)
	// CreditBalance atomically adds to a character's balance.
	CreditBalance(ctx context.Context, characterID string, amount int64) error
}

// EffectStore owns active effects per character.
type EffectStore interface {
	PutEffect(ctx context.Context, e rules.Effect) error
	DeleteEffect(ctx context.Context, characterID, effectID string) error
	ListEffectsByCharacter(ctx context.Context, characterID string) ([]rules.Effect, error)
}

// TurnStore persists the outcome of end-turn processing atomically:
// surviving effects, removed effects, and the character's derived state.
type TurnStore interface {
	SaveTurnResult(ctx context.Context, c character.Character, active []rules.Effect, expiredIDs []string) error
}

// TaskPage describes a page of tasks.
type TaskPage struct {
	Tasks         []task.Task
	NextPageToken string
}

// TaskStore owns NPC task records.
type TaskStore interface {
	PutTask(ctx context.Context, t task.Task) error
	GetTask(ctx context.Context, id string) (task.Task, error)
	ListTasksByNPC(ctx context.Context, npcID string, pageSize int, pageToken string) (TaskPage, error)
}

// PaymentPage describes a page of payments.
type PaymentPage struct {
	Payments      []payment.Payment
	NextPageToken string
}

// ListPaymentsQuery narrows a payment listing the same way character
// listings are narrowed.
type ListPaymentsQuery struct {
	FilterSQL  string
	FilterArgs []any
	PageSize   int
	PageToken  string
	FilterKey  string
}

// PaymentStore owns grid payment records. RecordPayment is idempotent on
// the grid transaction id: a replayed notification returns the stored
// payment with created=false.
type PaymentStore interface {
	RecordPayment(ctx context.Context, p payment.Payment) (stored payment.Payment, created bool, err error)
	GetPaymentByGridTxn(ctx context.Context, gridTxnID string) (payment.Payment, error)
	ListPayments(ctx context.Context, query ListPaymentsQuery) (PaymentPage, error)
	// ListPaymentAmounts returns all amounts for a region, or every region
	// when region is empty. Feeds the admin statistics view.
	ListPaymentAmounts(ctx context.Context, region string) ([]int64, error)
}

// InventoryStore owns item stacks. ForEachStack streams every stack for the
// admin export without materializing the full inventory in memory.
type InventoryStore interface {
	GetStack(ctx context.Context, characterID, itemKey string) (inventory.Stack, error)
	PutStack(ctx context.Context, s inventory.Stack) error
	ListStacksByCharacter(ctx context.Context, characterID string) ([]inventory.Stack, error)
	ForEachStack(ctx context.Context, fn func(inventory.Stack) error) error
}

// Store aggregates every persistence interface the game service needs.
type Store interface {
	CharacterStore
	EffectStore
	TurnStore
	TaskStore
	PaymentStore
	InventoryStore
}
