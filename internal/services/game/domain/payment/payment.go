// Package payment records grid payment notifications and credits character
// balances. Recording is idempotent on the grid transaction id so the grid
// can safely retry delivery.
package payment

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/id"
)

var (
	// ErrEmptyTransaction indicates a payment without a grid transaction id.
	ErrEmptyTransaction = apperrors.New(apperrors.CodePaymentEmptyTransaction, "grid transaction id is required")
	// ErrInvalidAmount indicates a non-positive payment amount.
	ErrInvalidAmount = apperrors.New(apperrors.CodePaymentInvalidAmount, "payment amount must be positive")
)

// Payment is one recorded grid payment notification.
type Payment struct {
	ID          string
	GridTxnID   string
	CharacterID string
	Region      string

	// Amount is in grid minor units.
	Amount int64
	Note   string

	CreatedAt time.Time
}

// RecordInput contains the fields required to record a payment.
type RecordInput struct {
	GridTxnID   string
	CharacterID string
	Region      string
	Amount      int64
	Note        string
}

// NormalizeRecordInput trims and validates payment input.
func NormalizeRecordInput(input RecordInput) (RecordInput, error) {
	input.GridTxnID = strings.TrimSpace(input.GridTxnID)
	if input.GridTxnID == "" {
		return RecordInput{}, ErrEmptyTransaction
	}
	input.CharacterID = strings.TrimSpace(input.CharacterID)
	if input.CharacterID == "" {
		return RecordInput{}, apperrors.New(apperrors.CodeCharacterEmptyName, "character id is required")
	}
	input.Region = strings.TrimSpace(input.Region)
	if input.Amount <= 0 {
		return RecordInput{}, ErrInvalidAmount
	}
	input.Note = strings.TrimSpace(input.Note)
	return input, nil
}

// Record constructs a normalized payment with generated ID.
func Record(input RecordInput, now func() time.Time, idGenerator func() (string, error)) (Payment, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeRecordInput(input)
	if err != nil {
		return Payment{}, err
	}

	paymentID, err := idGenerator()
	if err != nil {
		return Payment{}, fmt.Errorf("generate payment id: %w", err)
	}

	return Payment{
		ID:          paymentID,
		GridTxnID:   normalized.GridTxnID,
		CharacterID: normalized.CharacterID,
		Region:      normalized.Region,
		Amount:      normalized.Amount,
		Note:        normalized.Note,
		CreatedAt:   now().UTC(),
	}, nil
}
