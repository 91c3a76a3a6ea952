package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (user_id, name, category, target_cents, due_day) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Category, b.Target.Cents, b.DueDay)
	if err != nil {
		return 0, fmt.Errorf("create bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetBill(ctx context.Context, userID, id int64) (*core.Bill, error) {
	var b core.Bill
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, category, target_cents, due_day FROM bills WHERE id = ? AND user_id = ?`,
		id, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Category, &b.Target.Cents, &b.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return &b, nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context, userID int64) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, category, target_cents, due_day FROM bills WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var out []core.Bill
	for rows.Next() {
		var b core.Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Category, &b.Target.Cents, &b.DueDay); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, b core.Bill) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, category = ?, target_cents = ?, due_day = ? WHERE id = ? AND user_id = ?`,
		b.Name, b.Category, b.Target.Cents, b.DueDay, b.ID, b.UserID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteBill(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bills WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return rowsMatched(res)
}

// CreateBillPayment records a payment against a user's bill. The month key
// is derived from the payment date, never taken from the client.
func (r *SQLiteRepository) CreateBillPayment(ctx context.Context, userID int64, p core.BillPayment) (int64, error) {
	// Ownership check doubles as the 404 for foreign bills.
	if _, err := r.GetBill(ctx, userID, p.BillID); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bill_payments (bill_id, amount_cents, paid_at, month_key) VALUES (?, ?, ?, ?)`,
		p.BillID, p.Amount.Cents, formatDate(p.PaidAt), p.PaidAt.MonthKey())
	if err != nil {
		return 0, fmt.Errorf("create bill payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListBillPayments(ctx context.Context, userID, billID int64) ([]core.BillPayment, error) {
	if _, err := r.GetBill(ctx, userID, billID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bill_id, amount_cents, paid_at, month_key FROM bill_payments
		 WHERE bill_id = ? ORDER BY paid_at DESC, id DESC`, billID)
	if err != nil {
		return nil, fmt.Errorf("list bill payments: %w", err)
	}
	defer rows.Close()

	var out []core.BillPayment
	for rows.Next() {
		var (
			p      core.BillPayment
			paidAt string
		)
		if err := rows.Scan(&p.ID, &p.BillID, &p.Amount.Cents, &paidAt, &p.MonthKey); err != nil {
			return nil, fmt.Errorf("scan bill payment: %w", err)
		}
		p.PaidAt = parseDate(paidAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SumBillPaymentsSince totals payments whose month key falls at or after
// fromKey (inclusive, YYYY-MM string ordering).
func (r *SQLiteRepository) SumBillPaymentsSince(ctx context.Context, billID int64, fromKey string) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM bill_payments WHERE bill_id = ? AND month_key >= ?`,
		billID, fromKey).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum bill payments: %w", err)
	}
	return total.Int64, nil
}
