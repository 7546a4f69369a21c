// ABOUTME: Metric sample model and canonical MetricType enum.
// ABOUTME: Samples are keyed by (user, type, recorded_at) and never mutated.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MetricType is the canonical name for a health metric. External device
// names are mapped onto these by the ingest package.
type MetricType string

const (
	// Vitals
	MetricHeartRate       MetricType = "heart_rate"
	MetricRestingHR       MetricType = "resting_hr"
	MetricHRV             MetricType = "hrv"
	MetricRespiratoryRate MetricType = "respiratory_rate"
	MetricSpO2            MetricType = "spo2"
	MetricBodyTemp        MetricType = "body_temp"

	// Activity
	MetricSteps          MetricType = "steps"
	MetricActiveCalories MetricType = "active_calories"
	MetricDistance       MetricType = "distance"

	// Body
	MetricWeight  MetricType = "weight"
	MetricBodyFat MetricType = "body_fat"
)

// MetricUnits maps canonical metric types to their storage units.
var MetricUnits = map[MetricType]string{
	MetricHeartRate:       "bpm",
	MetricRestingHR:       "bpm",
	MetricHRV:             "ms",
	MetricRespiratoryRate: "breaths/min",
	MetricSpO2:            "%",
	MetricBodyTemp:        "°C",
	MetricSteps:           "steps",
	MetricActiveCalories:  "kcal",
	MetricDistance:        "km",
	MetricWeight:          "kg",
	MetricBodyFat:         "%",
}

// AllMetricTypes returns all valid canonical metric types.
var AllMetricTypes = []MetricType{
	MetricHeartRate, MetricRestingHR, MetricHRV, MetricRespiratoryRate,
	MetricSpO2, MetricBodyTemp,
	MetricSteps, MetricActiveCalories, MetricDistance,
	MetricWeight, MetricBodyFat,
}

// IsValidMetricType checks if a string is a valid canonical metric type.
func IsValidMetricType(s string) bool {
	for _, mt := range AllMetricTypes {
		if string(mt) == s {
			return true
		}
	}
	return false
}

// Metric represents a single canonical health metric sample.
type Metric struct {
	ID         uuid.UUID
	UserID     string
	MetricType MetricType
	Value      float64
	Unit       string
	Source     string
	RecordedAt time.Time
	CreatedAt  time.Time
}

// NewMetric creates a new Metric with generated UUID and current timestamp.
func NewMetric(userID string, metricType MetricType, value float64) *Metric {
	now := time.Now().UTC()
	return &Metric{
		ID:         uuid.New(),
		UserID:     userID,
		MetricType: metricType,
		Value:      value,
		Unit:       MetricUnits[metricType],
		RecordedAt: now,
		CreatedAt:  now,
	}
}

// WithRecordedAt sets a custom recorded_at timestamp.
func (m *Metric) WithRecordedAt(t time.Time) *Metric {
	m.RecordedAt = t.UTC()
	return m
}

// WithSource sets the originating device or app.
func (m *Metric) WithSource(source string) *Metric {
	m.Source = source
	return m
}

// NaturalKey returns the dedup key for this sample. A second sample with
// the same key is a re-delivery, not a new observation.
func (m *Metric) NaturalKey() string {
	return fmt.Sprintf("metric|%s|%s|%s", m.UserID, m.MetricType, m.RecordedAt.UTC().Format(time.RFC3339))
}

// DayAnchorHourUTC is the time-of-day sentinel for whole-day aggregate
// samples (e.g. daily step totals). Pinning aggregates to noon keeps them
// inside the half-open day interval [startOfDayUTC, startOfDayUTC+24h).
const DayAnchorHourUTC = 12

// DayAnchor returns the canonical recorded_at for an aggregate covering
// the given calendar day.
func DayAnchor(day time.Time) time.Time {
	d := day.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), DayAnchorHourUTC, 0, 0, 0, time.UTC)
}
