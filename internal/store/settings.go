package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Setting returns the value for a settings key. The second return value is
// false when the key has never been written.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("Setting %q: %w", key, err)
	}
	return value, true, nil
}

// PutSetting writes a settings key, replacing any previous value.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("PutSetting %q: %w", key, err)
	}
	return nil
}
