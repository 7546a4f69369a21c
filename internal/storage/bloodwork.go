// ABOUTME: Blood work panel operations for SQLite storage.
// ABOUTME: Append-only history; most recent test date is current.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// AddBloodWork appends a lab panel to a user's history.
func (d *DB) AddBloodWork(ctx context.Context, bw *models.BloodWork) error {
	markers, err := json.Marshal(bw.Markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}

	query := `
		INSERT INTO bloodwork (id, user_id, test_date, lab_name, markers, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, query,
		bw.ID.String(),
		bw.UserID,
		bw.TestDate,
		bw.LabName,
		string(markers),
		bw.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("add bloodwork: %w", err)
	}
	return nil
}

// LatestBloodWork retrieves the panel with the most recent test date.
func (d *DB) LatestBloodWork(ctx context.Context, userID string) (*models.BloodWork, error) {
	query := bloodworkSelect + `
		WHERE user_id = ?
		ORDER BY test_date DESC, created_at DESC
		LIMIT 1
	`
	bw, err := scanBloodWork(d.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return bw, err
}

// ListBloodWork retrieves a user's panels, most recent test first.
func (d *DB) ListBloodWork(ctx context.Context, userID string, limit int) ([]*models.BloodWork, error) {
	query := bloodworkSelect + `
		WHERE user_id = ?
		ORDER BY test_date DESC, created_at DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bloodwork: %w", err)
	}
	defer rows.Close()

	var panels []*models.BloodWork
	for rows.Next() {
		bw, err := scanBloodWork(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bloodwork: %w", err)
		}
		panels = append(panels, bw)
	}
	return panels, rows.Err()
}

const bloodworkSelect = `
	SELECT id, user_id, test_date, lab_name, markers, created_at
	FROM bloodwork`

func scanBloodWork(row rowScanner) (*models.BloodWork, error) {
	var bw models.BloodWork
	var id, markers, createdAt string
	var labName sql.NullString

	err := row.Scan(&id, &bw.UserID, &bw.TestDate, &labName, &markers, &createdAt)
	if err != nil {
		return nil, err
	}

	bw.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse bloodwork id: %w", err)
	}
	if labName.Valid {
		bw.LabName = &labName.String
	}
	if err := json.Unmarshal([]byte(markers), &bw.Markers); err != nil {
		return nil, fmt.Errorf("unmarshal markers: %w", err)
	}
	bw.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &bw, nil
}
