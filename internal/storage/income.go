package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateIncomeSource(ctx context.Context, s core.IncomeSource) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO income_sources (user_id, name, amount_cents, frequency) VALUES (?, ?, ?, ?)`,
		s.UserID, s.Name, s.Amount.Cents, string(s.Frequency))
	if err != nil {
		return 0, fmt.Errorf("create income source: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) ListIncomeSources(ctx context.Context, userID int64) ([]core.IncomeSource, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, amount_cents, frequency FROM income_sources WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list income sources: %w", err)
	}
	defer rows.Close()

	var out []core.IncomeSource
	for rows.Next() {
		var (
			s    core.IncomeSource
			freq string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Amount.Cents, &freq); err != nil {
			return nil, fmt.Errorf("scan income source: %w", err)
		}
		s.Frequency = core.Frequency(freq)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateIncomeSource(ctx context.Context, s core.IncomeSource) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE income_sources SET name = ?, amount_cents = ?, frequency = ? WHERE id = ? AND user_id = ?`,
		s.Name, s.Amount.Cents, string(s.Frequency), s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update income source: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteIncomeSource(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM income_sources WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income source: %w", err)
	}
	return rowsMatched(res)
}
