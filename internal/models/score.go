// ABOUTME: DailyScore model: derived per-day composite scores.
// ABOUTME: Upserted by (user, date); recomputation replaces the prior row.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyScore holds the derived composite scores for one calendar day.
// Score fields are nil when the underlying signal is absent — a missing
// sleep session yields no sleep score, never a fabricated one.
type DailyScore struct {
	ID             uuid.UUID
	UserID         string
	ScoreDate      string // YYYY-MM-DD
	SleepScore     *int
	RecoveryScore  *int
	StrainScore    *float64 // continuous load, one decimal place
	ReadinessScore *int
	Components     map[string]float64
	ComputedAt     time.Time
}

// NewDailyScore creates an empty score row for a user and day.
func NewDailyScore(userID, scoreDate string) *DailyScore {
	return &DailyScore{
		ID:         uuid.New(),
		UserID:     userID,
		ScoreDate:  scoreDate,
		Components: make(map[string]float64),
		ComputedAt: time.Now().UTC(),
	}
}
