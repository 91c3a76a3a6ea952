package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// StoredCredential is the ciphertext form of a provider credential. The
// plaintext key never touches this package.
type StoredCredential struct {
	ID         int64
	UserID     int64
	Provider   string
	Ciphertext []byte
	LastUsedAt time.Time
}

func (r *SQLiteRepository) UpsertCredential(ctx context.Context, c StoredCredential) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO provider_credentials (user_id, provider, api_key_ciphertext)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, provider) DO UPDATE SET api_key_ciphertext = excluded.api_key_ciphertext`,
		c.UserID, c.Provider, c.Ciphertext)
	if err != nil {
		return 0, fmt.Errorf("upsert credential: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListCredentials(ctx context.Context, userID int64) ([]StoredCredential, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, provider, api_key_ciphertext, last_used_at
		 FROM provider_credentials WHERE user_id = ? ORDER BY provider`, userID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []StoredCredential
	for rows.Next() {
		var (
			c        StoredCredential
			lastUsed sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Provider, &c.Ciphertext, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if lastUsed.Valid {
			if t, err := time.Parse(time.RFC3339, lastUsed.String); err == nil {
				c.LastUsedAt = t
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCredential(ctx context.Context, userID int64, provider string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM provider_credentials WHERE user_id = ? AND provider = ?`, userID, provider)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return rowsMatched(res)
}

// MarkCredentialUsed stamps the credential after a successful completion.
func (r *SQLiteRepository) MarkCredentialUsed(ctx context.Context, userID int64, provider string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE provider_credentials SET last_used_at = ? WHERE user_id = ? AND provider = ?`,
		time.Now().UTC().Format(time.RFC3339), userID, provider)
	if err != nil {
		return fmt.Errorf("mark credential used: %w", err)
	}
	return rowsMatched(res)
}

func (r *SQLiteRepository) CreateInsight(ctx context.Context, in core.Insight) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO insights (user_id, provider, title, body, generated_at) VALUES (?, ?, ?, ?, ?)`,
		in.UserID, in.Provider, in.Title, in.Body, in.GeneratedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("create insight: %w", err)
	}
	return lastID(res)
}

func (r *SQLiteRepository) ListInsights(ctx context.Context, userID int64, limit int) ([]core.Insight, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, provider, title, body, generated_at FROM insights
		 WHERE user_id = ? ORDER BY generated_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	var out []core.Insight
	for rows.Next() {
		var (
			in          core.Insight
			generatedAt string
		)
		if err := rows.Scan(&in.ID, &in.UserID, &in.Provider, &in.Title, &in.Body, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
			in.GeneratedAt = t
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
