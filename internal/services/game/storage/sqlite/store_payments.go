package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// RecordPayment inserts a payment and credits the character balance in one
// transaction. A replayed grid transaction id returns the stored payment
// without crediting again.
func (s *Store) RecordPayment(ctx context.Context, p payment.Payment) (payment.Payment, bool, error) {
	if err := ctx.Err(); err != nil {
		return payment.Payment{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return payment.Payment{}, false, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(p.ID) == "" {
		return payment.Payment{}, false, fmt.Errorf("payment id is required")
	}
	if strings.TrimSpace(p.GridTxnID) == "" {
		return payment.Payment{}, false, fmt.Errorf("grid transaction id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
INSERT INTO payments (id, grid_txn_id, character_id, region, amount, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(grid_txn_id) DO NOTHING
`,
		p.ID, p.GridTxnID, p.CharacterID, p.Region, p.Amount, p.Note, toMillis(p.CreatedAt),
	)
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("record payment: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("record payment: %w", err)
	}

	if inserted == 0 {
		// Replay: return the receipt persisted by the first delivery.
		row := tx.QueryRowContext(ctx, paymentSelect+` WHERE grid_txn_id = ?`, p.GridTxnID)
		stored, err := scanPayment(row.Scan)
		if err != nil {
			return payment.Payment{}, false, fmt.Errorf("load replayed payment: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return payment.Payment{}, false, fmt.Errorf("commit payment transaction: %w", err)
		}
		return stored, false, nil
	}

	credit, err := tx.ExecContext(ctx,
		`UPDATE characters SET balance = balance + ? WHERE id = ?`, p.Amount, p.CharacterID)
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("credit balance: %w", err)
	}
	affected, err := credit.RowsAffected()
	if err != nil {
		return payment.Payment{}, false, fmt.Errorf("credit balance: %w", err)
	}
	if affected == 0 {
		return payment.Payment{}, false, storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return payment.Payment{}, false, fmt.Errorf("commit payment transaction: %w", err)
	}
	return p, true, nil
}

const paymentSelect = `
SELECT id, grid_txn_id, character_id, region, amount, note, created_at
FROM payments`

// GetPaymentByGridTxn fetches a payment by its grid transaction id.
func (s *Store) GetPaymentByGridTxn(ctx context.Context, gridTxnID string) (payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return payment.Payment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return payment.Payment{}, fmt.Errorf("storage is not configured")
	}
	gridTxnID = strings.TrimSpace(gridTxnID)
	if gridTxnID == "" {
		return payment.Payment{}, fmt.Errorf("grid transaction id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, paymentSelect+` WHERE grid_txn_id = ?`, gridTxnID)
	p, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payment.Payment{}, storage.ErrNotFound
		}
		return payment.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns a page of payments ordered by insertion, optionally
// narrowed by a translated filter fragment.
func (s *Store) ListPayments(ctx context.Context, query storage.ListPaymentsQuery) (storage.PaymentPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.PaymentPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PaymentPage{}, fmt.Errorf("storage is not configured")
	}

	pageSize := normalizePageSize(query.PageSize)
	afterSeq, err := decodePageToken(query.PageToken, query.FilterKey)
	if err != nil {
		return storage.PaymentPage{}, err
	}

	where := "seq > ?"
	args := []any{afterSeq}
	if filter := strings.TrimSpace(query.FilterSQL); filter != "" {
		where += " AND (" + filter + ")"
		args = append(args, query.FilterArgs...)
	}
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT seq, id, grid_txn_id, character_id, region, amount, note, created_at
FROM payments
WHERE `+where+`
ORDER BY seq ASC
LIMIT ?
`, args...)
	if err != nil {
		return storage.PaymentPage{}, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var page storage.PaymentPage
	var lastSeq uint64
	for rows.Next() {
		var seq uint64
		p, err := scanPayment(func(dest ...any) error {
			return rows.Scan(append([]any{&seq}, dest...)...)
		})
		if err != nil {
			return storage.PaymentPage{}, fmt.Errorf("scan payment: %w", err)
		}
		if len(page.Payments) == pageSize {
			token, err := encodePageToken(lastSeq, query.FilterKey)
			if err != nil {
				return storage.PaymentPage{}, err
			}
			page.NextPageToken = token
			break
		}
		page.Payments = append(page.Payments, p)
		lastSeq = seq
	}
	if err := rows.Err(); err != nil {
		return storage.PaymentPage{}, fmt.Errorf("list payments: %w", err)
	}
	return page, nil
}

// ListPaymentAmounts returns all payment amounts, optionally narrowed to a
// region, for the admin statistics view.
func (s *Store) ListPaymentAmounts(ctx context.Context, region string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT amount FROM payments`
	var args []any
	if region = strings.TrimSpace(region); region != "" {
		query += ` WHERE region = ?`
		args = append(args, region)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment amounts: %w", err)
	}
	defer rows.Close()

	var amounts []int64
	for rows.Next() {
		var amount int64
		if err := rows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("scan payment amount: %w", err)
		}
		amounts = append(amounts, amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment amounts: %w", err)
	}
	return amounts, nil
}

func scanPayment(scan func(dest ...any) error) (payment.Payment, error) {
	var (
		p         payment.Payment
		createdAt int64
	)
	if err := scan(&p.ID, &p.GridTxnID, &p.CharacterID, &p.Region, &p.Amount, &p.Note, &createdAt); err != nil {
		return payment.Payment{}, err
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}
