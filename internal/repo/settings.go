package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetSetting returns the raw JSON value stored under key.
func (r *PostgresRepository) GetSetting(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM settings WHERE key = $1 LIMIT 1;`
	var value []byte
	if err := r.pool.QueryRow(ctx, q, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// PutSetting stores the raw JSON value under key, replacing any previous value.
func (r *PostgresRepository) PutSetting(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
