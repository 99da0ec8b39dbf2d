package app

import (
	"context"

	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// PaymentReceipt is the response of a payment notification.
type PaymentReceipt struct {
	Payment payment.Payment
	// Duplicate reports whether the grid transaction was already recorded.
	Duplicate bool
}

// RecordPayment records a grid payment notification idempotently and
// credits the character balance on first delivery.
func (s *Service) RecordPayment(ctx context.Context, input payment.RecordInput) (PaymentReceipt, error) {
	p, err := payment.Record(input, s.now, s.newID)
	if err != nil {
		return PaymentReceipt{}, err
	}

	stored, created, err := s.store.RecordPayment(ctx, p)
	if err != nil {
		return PaymentReceipt{}, err
	}
	if created {
		s.logger.Printf("payment recorded txn=%s character=%s amount=%d", stored.GridTxnID, stored.CharacterID, stored.Amount)
	}
	return PaymentReceipt{Payment: stored, Duplicate: !created}, nil
}

// GetPaymentByGridTxn returns the stored receipt for a grid transaction id.
func (s *Service) GetPaymentByGridTxn(ctx context.Context, gridTxnID string) (payment.Payment, error) {
	return s.store.GetPaymentByGridTxn(ctx, gridTxnID)
}

// ListPayments returns a page of payments.
func (s *Service) ListPayments(ctx context.Context, query storage.ListPaymentsQuery) (storage.PaymentPage, error) {
	return s.store.ListPayments(ctx, query)
}

// PaymentStatistics aggregates payment amounts for a region (or all
// regions when region is empty).
func (s *Service) PaymentStatistics(ctx context.Context, region string) (payment.Statistics, error) {
	amounts, err := s.store.ListPaymentAmounts(ctx, region)
	if err != nil {
		return payment.Statistics{}, err
	}
	return payment.Summarize(amounts), nil
}
