package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Type     core.TransactionType
	Category string
	Year     int
	Month    int
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, category, description, tx_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), t.Amount.Cents, t.Category, t.Description, formatDate(t.Date))
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return id, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT id, user_id, type, amount_cents, category, description, tx_date
	          FROM transactions WHERE user_id = ?`
	args := []any{userID}

	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		query += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Year != 0 && f.Month != 0 {
		query += ` AND substr(tx_date, 1, 7) = ?`
		args = append(args, monthKey(f.Year, f.Month))
	} else if f.Year != 0 {
		query += ` AND substr(tx_date, 1, 4) = ?`
		args = append(args, fmt.Sprintf("%04d", f.Year))
	}
	query += ` ORDER BY tx_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			typ     string
			txDate  string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.Category, &t.Description, &txDate); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.Date = parseDate(txDate)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount_cents = ?, category = ?, description = ?, tx_date = ?
		 WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Amount.Cents, t.Category, t.Description, formatDate(t.Date), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return rowsMatched(res)
}

// ListCategories returns the distinct expense categories a user has used.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM transactions WHERE user_id = ? AND type = 'expense' ORDER BY category`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, rows.Err()
}
