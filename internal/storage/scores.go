// ABOUTME: Daily score operations for SQLite storage.
// ABOUTME: Upsert by (user, date): recomputation replaces the earlier row.
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

// UpsertDailyScore stores a daily score, replacing any prior computation
// for the same (user, date). Idempotent by design.
func (d *DB) UpsertDailyScore(ctx context.Context, ds *models.DailyScore) error {
	components, err := json.Marshal(ds.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}

	query := `
		INSERT INTO daily_scores (
			id, user_id, score_date, sleep_score, recovery_score,
			strain_score, readiness_score, components, computed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, score_date) DO UPDATE SET
			sleep_score = excluded.sleep_score,
			recovery_score = excluded.recovery_score,
			strain_score = excluded.strain_score,
			readiness_score = excluded.readiness_score,
			components = excluded.components,
			computed_at = excluded.computed_at
	`
	_, err = d.db.ExecContext(ctx, query,
		ds.ID.String(),
		ds.UserID,
		ds.ScoreDate,
		ds.SleepScore,
		ds.RecoveryScore,
		ds.StrainScore,
		ds.ReadinessScore,
		string(components),
		ds.ComputedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert daily score: %w", err)
	}
	return nil
}

// GetDailyScore retrieves the score row for a user and day.
func (d *DB) GetDailyScore(ctx context.Context, userID, scoreDate string) (*models.DailyScore, error) {
	query := scoreSelect + ` WHERE user_id = ? AND score_date = ?`
	ds, err := scanDailyScore(d.db.QueryRowContext(ctx, query, userID, scoreDate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ds, err
}

// ListDailyScores retrieves a user's daily scores, most recent first.
func (d *DB) ListDailyScores(ctx context.Context, userID string, limit int) ([]*models.DailyScore, error) {
	query := scoreSelect + `
		WHERE user_id = ?
		ORDER BY score_date DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.DailyScore
	for rows.Next() {
		ds, err := scanDailyScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily score: %w", err)
		}
		scores = append(scores, ds)
	}
	return scores, rows.Err()
}

const scoreSelect = `
	SELECT id, user_id, score_date, sleep_score, recovery_score,
		strain_score, readiness_score, components, computed_at
	FROM daily_scores`

func scanDailyScore(row rowScanner) (*models.DailyScore, error) {
	var ds models.DailyScore
	var id, computedAt string
	var sleepScore, recoveryScore, readinessScore sql.NullInt64
	var strainScore sql.NullFloat64
	var components sql.NullString

	err := row.Scan(
		&id, &ds.UserID, &ds.ScoreDate, &sleepScore, &recoveryScore,
		&strainScore, &readinessScore, &components, &computedAt,
	)
	if err != nil {
		return nil, err
	}

	ds.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse daily score id: %w", err)
	}
	ds.ComputedAt, err = time.Parse(time.RFC3339, computedAt)
	if err != nil {
		return nil, fmt.Errorf("parse computed_at: %w", err)
	}

	if sleepScore.Valid {
		v := int(sleepScore.Int64)
		ds.SleepScore = &v
	}
	if recoveryScore.Valid {
		v := int(recoveryScore.Int64)
		ds.RecoveryScore = &v
	}
	if strainScore.Valid {
		ds.StrainScore = &strainScore.Float64
	}
	if readinessScore.Valid {
		v := int(readinessScore.Int64)
		ds.ReadinessScore = &v
	}

	ds.Components = make(map[string]float64)
	if components.Valid && components.String != "" {
		if err := json.Unmarshal([]byte(components.String), &ds.Components); err != nil {
			return nil, fmt.Errorf("unmarshal components: %w", err)
		}
	}
	return &ds, nil
}
