// ABOUTME: Workout operations for SQLite storage.
// ABOUTME: Natural-key upsert by (user, started_at, type) keeps the earliest row.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// UpsertWorkout stores a workout. A workout with an already-seen
// (user, started_at, type) key is a no-op; reports whether a row was
// inserted.
func (d *DB) UpsertWorkout(ctx context.Context, w *models.Workout) (bool, error) {
	query := `
		INSERT INTO workouts (
			id, user_id, workout_type, name, duration_minutes,
			calories_burned, heart_rate_avg, heart_rate_max,
			started_at, ended_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, started_at, workout_type) DO NOTHING
	`
	var endedAt interface{}
	if !w.EndedAt.IsZero() {
		endedAt = w.EndedAt.UTC().Format(time.RFC3339)
	}
	res, err := d.db.ExecContext(ctx, query,
		w.ID.String(),
		w.UserID,
		w.WorkoutType,
		w.Name,
		w.DurationMinutes,
		w.CaloriesBurned,
		w.HeartRateAvg,
		w.HeartRateMax,
		w.StartedAt.UTC().Format(time.RFC3339),
		endedAt,
		w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert workout: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert workout: %w", err)
	}
	return affected > 0, nil
}

// WorkoutsOnDay retrieves workouts started within the UTC calendar day,
// ordered by start time.
func (d *DB) WorkoutsOnDay(ctx context.Context, userID, day string) ([]*models.Workout, error) {
	dayStart, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", day, err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	query := workoutSelect + `
		WHERE user_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at ASC
	`
	rows, err := d.db.QueryContext(ctx, query,
		userID,
		dayStart.UTC().Format(time.RFC3339),
		dayEnd.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("workouts on day: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// ListWorkouts retrieves a user's workouts, most recent first.
func (d *DB) ListWorkouts(ctx context.Context, userID string, limit int) ([]*models.Workout, error) {
	query := workoutSelect + `
		WHERE user_id = ?
		ORDER BY started_at DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

const workoutSelect = `
	SELECT id, user_id, workout_type, name, duration_minutes,
		calories_burned, heart_rate_avg, heart_rate_max,
		started_at, ended_at, created_at
	FROM workouts`

func scanWorkout(row rowScanner) (*models.Workout, error) {
	var w models.Workout
	var id, startedAt, createdAt string
	var name, endedAt sql.NullString
	var calories, hrAvg, hrMax sql.NullFloat64

	err := row.Scan(
		&id, &w.UserID, &w.WorkoutType, &name, &w.DurationMinutes,
		&calories, &hrAvg, &hrMax,
		&startedAt, &endedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	w.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse workout id: %w", err)
	}
	w.Name = name.String
	w.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if endedAt.Valid {
		w.EndedAt, err = time.Parse(time.RFC3339, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
	}
	w.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	if calories.Valid {
		w.CaloriesBurned = &calories.Float64
	}
	if hrAvg.Valid {
		w.HeartRateAvg = &hrAvg.Float64
	}
	if hrMax.Valid {
		w.HeartRateMax = &hrMax.Float64
	}
	return &w, nil
}

func scanWorkouts(rows *sql.Rows) ([]*models.Workout, error) {
	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}
