package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateOpportunity(ctx context.Context, o core.Opportunity) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO opportunities (user_id, title, description, amount_cents, status)
		 VALUES (?, ?, ?, ?, ?)`,
		o.UserID, o.Title, o.Description, o.Amount.Cents, statusOrPending(o.Status))
	if err != nil {
		return 0, fmt.Errorf("create opportunity: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListOpportunities(ctx context.Context, userID int64) ([]core.Opportunity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, amount_cents, status
		 FROM opportunities WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var out []core.Opportunity
	for rows.Next() {
		var (
			o      core.Opportunity
			status string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Title, &o.Description, &o.Amount.Cents, &status); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		o.Status = core.Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateOpportunity(ctx context.Context, o core.Opportunity) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE opportunities SET title = ?, description = ?, amount_cents = ?, status = ?
		 WHERE id = ? AND user_id = ?`,
		o.Title, o.Description, o.Amount.Cents, statusOrPending(o.Status), o.ID, o.UserID)
	if err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteOpportunity(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM opportunities WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateFinancialTarget(ctx context.Context, t core.FinancialTarget) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO financial_targets (user_id, name, target_cents, saved_cents, deadline, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Name, t.Target.Cents, t.Saved.Cents, formatOptionalDate(t.Deadline), statusOrPending(t.Status))
	if err != nil {
		return 0, fmt.Errorf("create financial target: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListFinancialTargets(ctx context.Context, userID int64) ([]core.FinancialTarget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target_cents, saved_cents, deadline, status
		 FROM financial_targets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list financial targets: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialTarget
	for rows.Next() {
		var (
			t        core.FinancialTarget
			deadline string
			status   string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Target.Cents, &t.Saved.Cents, &deadline, &status); err != nil {
			return nil, fmt.Errorf("scan financial target: %w", err)
		}
		t.Deadline = parseDate(deadline)
		t.Status = core.Status(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateFinancialTarget(ctx context.Context, t core.FinancialTarget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE financial_targets SET name = ?, target_cents = ?, saved_cents = ?, deadline = ?, status = ?
		 WHERE id = ? AND user_id = ?`,
		t.Name, t.Target.Cents, t.Saved.Cents, formatOptionalDate(t.Deadline), statusOrPending(t.Status), t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("update financial target: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteFinancialTarget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM financial_targets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete financial target: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateCreditScore(ctx context.Context, c core.CreditScore) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_scores (user_id, score, bureau, recorded_at) VALUES (?, ?, ?, ?)`,
		c.UserID, c.Score, c.Bureau, formatDate(c.RecordedAt))
	if err != nil {
		return 0, fmt.Errorf("create credit score: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListCreditScores(ctx context.Context, userID int64) ([]core.CreditScore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, score, bureau, recorded_at FROM credit_scores
		 WHERE user_id = ? ORDER BY recorded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list credit scores: %w", err)
	}
	defer rows.Close()

	var out []core.CreditScore
	for rows.Next() {
		var (
			c          core.CreditScore
			recordedAt string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Score, &c.Bureau, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan credit score: %w", err)
		}
		c.RecordedAt = parseDate(recordedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// statusOrPending defaults a blank status so the CHECK constraint holds.
func statusOrPending(s core.Status) string {
	if s == "" {
		return string(core.StatusPending)
	}
	return string(s)
}

func (r *SQLiteRepository) DeleteCreditScore(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM credit_scores WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete credit score: %w", err)
	}
	return rowsMatched(res)
}
