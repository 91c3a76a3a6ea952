package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// MonthlyIncomeTotal sums income transactions for one YYYY-MM bucket.
func (r *SQLiteRepository) MonthlyIncomeTotal(ctx context.Context, userID int64, year, month int) (core.Money, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount_cents) FROM transactions
		 WHERE user_id = ? AND type = 'income' AND substr(tx_date, 1, 7) = ?`,
		userID, monthKey(year, month)).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum monthly income: %w", err)
	}
	return core.Money{Cents: total.Int64}, nil
}

// MonthlyCategoryTotals groups a month's expense transactions by category,
// largest total first.
func (r *SQLiteRepository) MonthlyCategoryTotals(ctx context.Context, userID int64, year, month int) ([]core.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents), COUNT(*) FROM transactions
		 WHERE user_id = ? AND type = 'expense' AND substr(tx_date, 1, 7) = ?
		 GROUP BY category ORDER BY SUM(amount_cents) DESC`,
		userID, monthKey(year, month))
	if err != nil {
		return nil, fmt.Errorf("sum category totals: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var c core.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Total.Cents, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MonthTotals is one row of the trends series.
type MonthTotals struct {
	MonthKey string
	Income   core.Money
	Expenses core.Money
}

// MonthlyTrendTotals returns income/expense totals per month from fromKey
// (inclusive) onward, oldest first. Months with no transactions are absent.
func (r *SQLiteRepository) MonthlyTrendTotals(ctx context.Context, userID int64, fromKey string) ([]MonthTotals, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT substr(tx_date, 1, 7) AS month,
		        SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END),
		        SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END)
		 FROM transactions
		 WHERE user_id = ? AND substr(tx_date, 1, 7) >= ?
		 GROUP BY month ORDER BY month`,
		userID, fromKey)
	if err != nil {
		return nil, fmt.Errorf("monthly trend totals: %w", err)
	}
	defer rows.Close()

	var out []MonthTotals
	for rows.Next() {
		var m MonthTotals
		if err := rows.Scan(&m.MonthKey, &m.Income.Cents, &m.Expenses.Cents); err != nil {
			return nil, fmt.Errorf("scan month totals: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
