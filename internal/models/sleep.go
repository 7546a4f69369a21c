// ABOUTME: SleepSession model for one bed period per user per source.
// ABOUTME: Keyed by the calendar date the user went to bed, not the wake date.
package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MinutesTolerance is how far total+awake may disagree with in-bed minutes
// before a session is rejected. Sources round stage minutes independently,
// so small disagreement is expected.
const MinutesTolerance = 10

// SleepSession represents one continuous bed period, reduced to a single
// row per (user, sleep date, source).
type SleepSession struct {
	ID                  uuid.UUID
	UserID              string
	SleepDate           string // YYYY-MM-DD, calendar date of bedtime
	Bedtime             time.Time
	WakeTime            time.Time
	TotalMinutes        int
	InBedMinutes        int
	DeepSleepMinutes    int
	RemSleepMinutes     int
	LightSleepMinutes   int
	AwakeMinutes        int
	SleepLatencyMinutes *int
	HRVAvg              *float64
	RestingHR           *float64
	RespiratoryRate     *float64
	SleepScore          *int
	Efficiency          *float64
	Source              string
	CreatedAt           time.Time
}

// NewSleepSession creates a session keyed by the bedtime's calendar date.
func NewSleepSession(userID string, bedtime, wakeTime time.Time, source string) *SleepSession {
	bt := bedtime.UTC()
	return &SleepSession{
		ID:        uuid.New(),
		UserID:    userID,
		SleepDate: bt.Format(time.DateOnly),
		Bedtime:   bt,
		WakeTime:  wakeTime.UTC(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
}

// NaturalKey returns the dedup key for this session.
func (s *SleepSession) NaturalKey() string {
	return fmt.Sprintf("sleep|%s|%s|%s", s.UserID, s.SleepDate, s.Source)
}

// ComputeEfficiency returns totalMinutes / inBedMinutes as a percentage,
// or 0 if in-bed minutes is not positive.
func (s *SleepSession) ComputeEfficiency() float64 {
	if s.InBedMinutes <= 0 {
		return 0
	}
	return float64(s.TotalMinutes) / float64(s.InBedMinutes) * 100
}

// Validate checks required fields and the minutes invariant
// (total + awake ≈ in-bed, within MinutesTolerance).
func (s *SleepSession) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if s.Bedtime.IsZero() || s.WakeTime.IsZero() {
		return fmt.Errorf("bedtime and wake time are required")
	}
	if !s.WakeTime.After(s.Bedtime) {
		return fmt.Errorf("wake time must be after bedtime")
	}
	if s.SleepDate == "" {
		return fmt.Errorf("sleep date is required")
	}
	if s.TotalMinutes <= 0 || s.InBedMinutes <= 0 {
		return fmt.Errorf("total and in-bed minutes must be positive")
	}
	if s.TotalMinutes > s.InBedMinutes {
		return fmt.Errorf("total minutes %d exceeds in-bed minutes %d", s.TotalMinutes, s.InBedMinutes)
	}
	if diff := math.Abs(float64(s.TotalMinutes + s.AwakeMinutes - s.InBedMinutes)); diff > MinutesTolerance {
		return fmt.Errorf("minutes do not add up: total %d + awake %d vs in-bed %d", s.TotalMinutes, s.AwakeMinutes, s.InBedMinutes)
	}
	return nil
}
