// ABOUTME: User profile operations: birth date for chronological age.
// ABOUTME: The core consumes resolved user IDs; this is the only per-user state.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SetBirthDate stores or replaces a user's birth date (YYYY-MM-DD).
func (d *DB) SetBirthDate(ctx context.Context, userID, birthDate string) error {
	query := `
		INSERT INTO profiles (user_id, birth_date)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET birth_date = excluded.birth_date
	`
	if _, err := d.db.ExecContext(ctx, query, userID, birthDate); err != nil {
		return fmt.Errorf("set birth date: %w", err)
	}
	return nil
}

// GetBirthDate retrieves a user's birth date, or "" when unset.
func (d *DB) GetBirthDate(ctx context.Context, userID string) (string, error) {
	var birthDate sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT birth_date FROM profiles WHERE user_id = ?`, userID,
	).Scan(&birthDate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get birth date: %w", err)
	}
	return birthDate.String, nil
}
