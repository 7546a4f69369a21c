// ABOUTME: Workout model for exercise sessions from device exports.
// ABOUTME: Keyed by (user, started_at, type) for dedup across re-deliveries.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Workout represents an exercise session.
type Workout struct {
	ID              uuid.UUID
	UserID          string
	WorkoutType     string
	Name            string
	DurationMinutes int
	CaloriesBurned  *float64
	HeartRateAvg    *float64
	HeartRateMax    *float64
	StartedAt       time.Time
	EndedAt         time.Time
	CreatedAt       time.Time
}

// NewWorkout creates a new Workout with generated UUID and current timestamp.
func NewWorkout(userID, workoutType string, startedAt time.Time) *Workout {
	return &Workout{
		ID:          uuid.New(),
		UserID:      userID,
		WorkoutType: workoutType,
		StartedAt:   startedAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

// WithDuration sets duration and derives ended_at when unset.
func (w *Workout) WithDuration(minutes int) *Workout {
	w.DurationMinutes = minutes
	if w.EndedAt.IsZero() {
		w.EndedAt = w.StartedAt.Add(time.Duration(minutes) * time.Minute)
	}
	return w
}

// WithCalories sets calories burned.
func (w *Workout) WithCalories(kcal float64) *Workout {
	w.CaloriesBurned = &kcal
	return w
}

// WithHeartRate sets average and max heart rate.
func (w *Workout) WithHeartRate(avg, max float64) *Workout {
	w.HeartRateAvg = &avg
	w.HeartRateMax = &max
	return w
}

// NaturalKey returns the dedup key for this workout.
func (w *Workout) NaturalKey() string {
	return fmt.Sprintf("workout|%s|%s|%s", w.UserID, w.StartedAt.UTC().Format(time.RFC3339), w.WorkoutType)
}

// Validate checks required fields.
func (w *Workout) Validate() error {
	if w.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if w.WorkoutType == "" {
		return fmt.Errorf("workout type is required")
	}
	if w.StartedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	if w.DurationMinutes < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}
