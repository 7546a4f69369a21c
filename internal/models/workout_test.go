// ABOUTME: Tests for Workout model validation and derived end time.
package models

import (
	"testing"
	"time"
)

func TestWorkoutWithDuration(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	w := NewWorkout("alice", "run", start).WithDuration(45)

	if w.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", w.DurationMinutes)
	}
	want := start.Add(45 * time.Minute)
	if !w.EndedAt.Equal(want) {
		t.Errorf("EndedAt = %v, want %v", w.EndedAt, want)
	}

	// An explicit end time is not overwritten
	explicit := NewWorkout("alice", "run", start)
	explicit.EndedAt = start.Add(time.Hour)
	explicit.WithDuration(45)
	if !explicit.EndedAt.Equal(start.Add(time.Hour)) {
		t.Error("Expected explicit EndedAt to be kept")
	}
}

func TestWorkoutNaturalKey(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)
	w := NewWorkout("alice", "run", start)

	want := "workout|alice|2025-03-01T17:00:00Z|run"
	if got := w.NaturalKey(); got != want {
		t.Errorf("NaturalKey() = %q, want %q", got, want)
	}
}

func TestWorkoutValidate(t *testing.T) {
	start := time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		workout *Workout
		wantErr bool
	}{
		{
			name:    "valid",
			workout: NewWorkout("alice", "run", start).WithDuration(30),
		},
		{
			name:    "missing user",
			workout: NewWorkout("", "run", start),
			wantErr: true,
		},
		{
			name:    "missing type",
			workout: NewWorkout("alice", "", start),
			wantErr: true,
		},
		{
			name:    "zero start",
			workout: &Workout{UserID: "alice", WorkoutType: "run"},
			wantErr: true,
		},
		{
			name: "negative duration",
			workout: &Workout{
				UserID: "alice", WorkoutType: "run",
				StartedAt: start, DurationMinutes: -5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workout.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
