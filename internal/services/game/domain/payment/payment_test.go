package payment

import (
	"math"
	"testing"
	"time"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

func TestNormalizeRecordInput(t *testing.T) {
	t.Parallel()

	normalized, err := NormalizeRecordInput(RecordInput{
		GridTxnID:   " txn-9 ",
		CharacterID: " char-1 ",
		Region:      " emberfall ",
		Amount:      250,
		Note:        " tavern tab ",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.GridTxnID != "txn-9" || normalized.CharacterID != "char-1" {
		t.Fatalf("normalized = %+v, want trimmed ids", normalized)
	}
	if normalized.Note != "tavern tab" {
		t.Fatalf("note = %q, want trimmed", normalized.Note)
	}
}

func TestNormalizeRecordInputRejections(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeRecordInput(RecordInput{CharacterID: "char-1", Amount: 10}); apperrors.CodeOf(err) != apperrors.CodePaymentEmptyTransaction {
		t.Fatalf("expected empty transaction code, got %v", err)
	}
	if _, err := NormalizeRecordInput(RecordInput{GridTxnID: "txn-1", CharacterID: "char-1", Amount: 0}); apperrors.CodeOf(err) != apperrors.CodePaymentInvalidAmount {
		t.Fatalf("expected invalid amount code, got %v", err)
	}
	if _, err := NormalizeRecordInput(RecordInput{GridTxnID: "txn-1", Amount: 10}); err == nil {
		t.Fatal("expected error for missing character id")
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	p, err := Record(RecordInput{GridTxnID: "txn-1", CharacterID: "char-1", Region: "emberfall", Amount: 500},
		func() time.Time { return now }, func() (string, error) { return "pay-1", nil })
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if p.ID != "pay-1" || p.Amount != 500 {
		t.Fatalf("payment = %+v, want id pay-1 amount 500", p)
	}
	if !p.CreatedAt.Equal(now) {
		t.Fatal("expected created at to match now")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	summary := Summarize([]int64{100, 200, 300, 400, 1000})
	if summary.Count != 5 {
		t.Fatalf("count = %d, want 5", summary.Count)
	}
	if summary.Total != 2000 {
		t.Fatalf("total = %d, want 2000", summary.Total)
	}
	if summary.Mean != 400 {
		t.Fatalf("mean = %v, want 400", summary.Mean)
	}
	if summary.Max != 1000 {
		t.Fatalf("max = %d, want 1000", summary.Max)
	}
	if summary.Median != 300 {
		t.Fatalf("median = %v, want 300", summary.Median)
	}
	if summary.StdDev <= 0 {
		t.Fatal("expected positive std dev for spread amounts")
	}
	if math.IsNaN(summary.P90) || summary.P90 < summary.Median {
		t.Fatalf("p90 = %v, want at least the median", summary.P90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	if got := Summarize(nil); got != (Statistics{}) {
		t.Fatalf("summary = %+v, want zero value", got)
	}
}
