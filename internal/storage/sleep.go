// ABOUTME: Sleep session operations for SQLite storage.
// ABOUTME: Upsert by (user, sleep_date, source) replaces raw and derived fields.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// UpsertSleepSession stores a sleep session. Re-delivering the same bed
// period updates the existing row in place; derived fields (score,
// efficiency) are expected to be recomputed by the caller beforehand.
func (d *DB) UpsertSleepSession(ctx context.Context, s *models.SleepSession) error {
	query := `
		INSERT INTO sleep_sessions (
			id, user_id, sleep_date, bedtime, wake_time,
			total_minutes, in_bed_minutes, deep_sleep_minutes, rem_sleep_minutes,
			light_sleep_minutes, awake_minutes, sleep_latency_minutes,
			hrv_avg, resting_hr, respiratory_rate, sleep_score, efficiency,
			source, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, sleep_date, source) DO UPDATE SET
			bedtime = excluded.bedtime,
			wake_time = excluded.wake_time,
			total_minutes = excluded.total_minutes,
			in_bed_minutes = excluded.in_bed_minutes,
			deep_sleep_minutes = excluded.deep_sleep_minutes,
			rem_sleep_minutes = excluded.rem_sleep_minutes,
			light_sleep_minutes = excluded.light_sleep_minutes,
			awake_minutes = excluded.awake_minutes,
			sleep_latency_minutes = excluded.sleep_latency_minutes,
			hrv_avg = excluded.hrv_avg,
			resting_hr = excluded.resting_hr,
			respiratory_rate = excluded.respiratory_rate,
			sleep_score = excluded.sleep_score,
			efficiency = excluded.efficiency
	`
	_, err := d.db.ExecContext(ctx, query,
		s.ID.String(),
		s.UserID,
		s.SleepDate,
		s.Bedtime.UTC().Format(time.RFC3339),
		s.WakeTime.UTC().Format(time.RFC3339),
		s.TotalMinutes,
		s.InBedMinutes,
		s.DeepSleepMinutes,
		s.RemSleepMinutes,
		s.LightSleepMinutes,
		s.AwakeMinutes,
		s.SleepLatencyMinutes,
		s.HRVAvg,
		s.RestingHR,
		s.RespiratoryRate,
		s.SleepScore,
		s.Efficiency,
		s.Source,
		s.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert sleep session: %w", err)
	}
	return nil
}

// GetSleepSession retrieves one session by its natural key.
func (d *DB) GetSleepSession(ctx context.Context, userID, sleepDate, source string) (*models.SleepSession, error) {
	query := sleepSelect + ` WHERE user_id = ? AND sleep_date = ? AND source = ?`
	s, err := scanSleepSession(d.db.QueryRowContext(ctx, query, userID, sleepDate, source))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// SleepSessionForDate retrieves the session for a user's sleep date,
// regardless of source. With multiple sources the earliest-created row
// wins, matching the dedup layer's earliest-wins policy.
func (d *DB) SleepSessionForDate(ctx context.Context, userID, sleepDate string) (*models.SleepSession, error) {
	query := sleepSelect + `
		WHERE user_id = ? AND sleep_date = ?
		ORDER BY created_at ASC
		LIMIT 1
	`
	s, err := scanSleepSession(d.db.QueryRowContext(ctx, query, userID, sleepDate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// RecentSleepSessions retrieves up to limit sessions strictly before the
// given sleep date, most recent first. Used for baseline computation.
func (d *DB) RecentSleepSessions(ctx context.Context, userID, beforeDate string, limit int) ([]*models.SleepSession, error) {
	query := sleepSelect + `
		WHERE user_id = ? AND sleep_date < ?
		ORDER BY sleep_date DESC
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, query, userID, beforeDate, limit)
	if err != nil {
		return nil, fmt.Errorf("recent sleep sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.SleepSession
	for rows.Next() {
		s, err := scanSleepSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sleep session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const sleepSelect = `
	SELECT id, user_id, sleep_date, bedtime, wake_time,
		total_minutes, in_bed_minutes, deep_sleep_minutes, rem_sleep_minutes,
		light_sleep_minutes, awake_minutes, sleep_latency_minutes,
		hrv_avg, resting_hr, respiratory_rate, sleep_score, efficiency,
		source, created_at
	FROM sleep_sessions`

func scanSleepSession(row rowScanner) (*models.SleepSession, error) {
	var s models.SleepSession
	var id, bedtime, wakeTime, createdAt string
	var latency sql.NullInt64
	var hrv, restingHR, respRate, efficiency sql.NullFloat64
	var score sql.NullInt64

	err := row.Scan(
		&id, &s.UserID, &s.SleepDate, &bedtime, &wakeTime,
		&s.TotalMinutes, &s.InBedMinutes, &s.DeepSleepMinutes, &s.RemSleepMinutes,
		&s.LightSleepMinutes, &s.AwakeMinutes, &latency,
		&hrv, &restingHR, &respRate, &score, &efficiency,
		&s.Source, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	s.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse sleep session id: %w", err)
	}
	s.Bedtime, err = time.Parse(time.RFC3339, bedtime)
	if err != nil {
		return nil, fmt.Errorf("parse bedtime: %w", err)
	}
	s.WakeTime, err = time.Parse(time.RFC3339, wakeTime)
	if err != nil {
		return nil, fmt.Errorf("parse wake time: %w", err)
	}
	s.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	if latency.Valid {
		v := int(latency.Int64)
		s.SleepLatencyMinutes = &v
	}
	if hrv.Valid {
		s.HRVAvg = &hrv.Float64
	}
	if restingHR.Valid {
		s.RestingHR = &restingHR.Float64
	}
	if respRate.Valid {
		s.RespiratoryRate = &respRate.Float64
	}
	if score.Valid {
		v := int(score.Int64)
		s.SleepScore = &v
	}
	if efficiency.Valid {
		s.Efficiency = &efficiency.Float64
	}
	return &s, nil
}
