package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
)

// CredentialRepository stores session credentials as key/value rows.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (r *CredentialRepository) Get(key string) (value string, ok bool, err error) {
	err = r.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query credential %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts every entry of values in one transaction.
func (r *CredentialRepository) SetMany(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return withTx(context.Background(), r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		for _, k := range keys {
			if _, err := tx.Exec(query, k, values[k]); err != nil {
				return fmt.Errorf("failed to store credential %s: %w", k, err)
			}
		}
		return nil
	})
}

// Delete removes keys in one transaction. Missing keys are ignored.
func (r *CredentialRepository) Delete(keys ...string) error {
	return withTx(context.Background(), r.db, func(tx *sql.Tx) error {
		for _, k := range keys {
			if _, err := tx.Exec("DELETE FROM credentials WHERE key = ?", k); err != nil {
				return fmt.Errorf("failed to delete credential %s: %w", k, err)
			}
		}
		return nil
	})
}
