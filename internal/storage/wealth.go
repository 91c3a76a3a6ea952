package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, name, type, balance_cents) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, string(a.Type), a.Balance.Cents)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, balance_cents FROM accounts WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a   core.Account
			typ string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &typ, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, balance_cents = ? WHERE id = ? AND user_id = ?`,
		a.Name, string(a.Type), a.Balance.Cents, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateRetirementAccount(ctx context.Context, a core.RetirementAccount) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO retirement_accounts (user_id, name, kind, balance_cents) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, a.Kind, a.Balance.Cents)
	if err != nil {
		return 0, fmt.Errorf("create retirement account: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListRetirementAccounts(ctx context.Context, userID int64) ([]core.RetirementAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, balance_cents FROM retirement_accounts WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list retirement accounts: %w", err)
	}
	defer rows.Close()

	var out []core.RetirementAccount
	for rows.Next() {
		var a core.RetirementAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan retirement account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateRetirementAccount(ctx context.Context, a core.RetirementAccount) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE retirement_accounts SET name = ?, kind = ?, balance_cents = ? WHERE id = ? AND user_id = ?`,
		a.Name, a.Kind, a.Balance.Cents, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update retirement account: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteRetirementAccount(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM retirement_accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete retirement account: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (user_id, name, kind, value_cents) VALUES (?, ?, ?, ?)`,
		a.UserID, a.Name, a.Kind, a.Value.Cents)
	if err != nil {
		return 0, fmt.Errorf("create asset: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListAssets(ctx context.Context, userID int64) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, value_cents FROM assets WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []core.Asset
	for rows.Next() {
		var a core.Asset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.Value.Cents); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, a core.Asset) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET name = ?, kind = ?, value_cents = ? WHERE id = ? AND user_id = ?`,
		a.Name, a.Kind, a.Value.Cents, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM assets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return rowsMatched(res)
}

// NetWorthSums aggregates the asset and liability sides in one pass.
// Liability balances contribute their absolute value regardless of sign.
func (r *SQLiteRepository) NetWorthSums(ctx context.Context, userID int64) (assets, liabilities int64, err error) {
	var accAssets, accLiabilities, retirement, assetValues sql.NullInt64

	err = r.db.QueryRowContext(ctx,
		`SELECT
		    SUM(CASE WHEN type IN ('checking', 'savings') THEN balance_cents ELSE 0 END),
		    SUM(CASE WHEN type IN ('credit_card', 'loan', 'mortgage', 'other_debt') THEN ABS(balance_cents) ELSE 0 END)
		 FROM accounts WHERE user_id = ?`, userID).
		Scan(&accAssets, &accLiabilities)
	if err != nil {
		return 0, 0, fmt.Errorf("sum account balances: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT SUM(balance_cents) FROM retirement_accounts WHERE user_id = ?`, userID).
		Scan(&retirement)
	if err != nil {
		return 0, 0, fmt.Errorf("sum retirement balances: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT SUM(value_cents) FROM assets WHERE user_id = ?`, userID).
		Scan(&assetValues)
	if err != nil {
		return 0, 0, fmt.Errorf("sum asset values: %w", err)
	}

	return accAssets.Int64 + retirement.Int64 + assetValues.Int64, accLiabilities.Int64, nil
}

func (r *SQLiteRepository) CreateNetWorthSnapshot(ctx context.Context, s core.NetWorthSnapshot) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO net_worth_snapshots (user_id, total_cents, recorded_at) VALUES (?, ?, ?)`,
		s.UserID, s.Total.Cents, s.RecordedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("create net worth snapshot: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListNetWorthSnapshots(ctx context.Context, userID int64) ([]core.NetWorthSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, total_cents, recorded_at FROM net_worth_snapshots
		 WHERE user_id = ? ORDER BY recorded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list net worth snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.NetWorthSnapshot
	for rows.Next() {
		var (
			s          core.NetWorthSnapshot
			recordedAt string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Total.Cents, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan net worth snapshot: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			s.RecordedAt = t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func lastID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
