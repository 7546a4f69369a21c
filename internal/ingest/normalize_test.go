// ABOUTME: Tests for payload normalization.
// ABOUTME: Covers record shapes, alias mapping, day pinning, and error entries.
package ingest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

func payloadFromJSON(t *testing.T, raw string) *rawPayload {
	t.Helper()
	payload, err := parsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("parsePayload failed: %v", err)
	}
	return payload
}

func TestNormalizeInstantaneousMetric(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"heart_rate": [{"value": 62, "timestamp": "2025-03-01T08:00:00Z"}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Metrics) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(n.Metrics))
	}

	m := n.Metrics[0]
	if m.MetricType != models.MetricHeartRate {
		t.Errorf("MetricType = %q, want heart_rate", m.MetricType)
	}
	if m.Source != "oura" {
		t.Errorf("Source = %q, want oura", m.Source)
	}
	want := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	if !m.RecordedAt.Equal(want) {
		t.Errorf("RecordedAt = %v, want %v", m.RecordedAt, want)
	}
}

func TestNormalizeAggregatedMetricPinnedToAnchor(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "fitbit",
		"data": {
			"steps": [{"total": 9214, "date": "2025-03-01"}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Metrics) != 1 {
		t.Fatalf("Expected 1 metric, got %d (errors: %v)", len(n.Metrics), n.Errors)
	}

	m := n.Metrics[0]
	if m.Value != 9214 {
		t.Errorf("Value = %v, want 9214", m.Value)
	}
	anchor := models.DayAnchor(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if !m.RecordedAt.Equal(anchor) {
		t.Errorf("RecordedAt = %v, want day anchor %v", m.RecordedAt, anchor)
	}
}

func TestNormalizeNestedMetricsEnvelope(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"metrics": {
				"heart_rate": [{"value": 62, "timestamp": "2025-03-01T08:00:00Z"}],
				"steps": [{"value": 9214, "date": "2025-03-01"}]
			}
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Metrics) != 2 {
		t.Fatalf("Expected 2 metrics from nested envelope, got %d", len(n.Metrics))
	}

	types := map[models.MetricType]bool{}
	for _, m := range n.Metrics {
		types[m.MetricType] = true
	}
	if !types[models.MetricHeartRate] || !types[models.MetricSteps] {
		t.Errorf("Mapped types = %v, want heart_rate and steps", types)
	}
}

func TestNormalizeMalformedMetricsGroup(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"metrics": [{"value": 62}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Metrics) != 0 {
		t.Errorf("Expected no metrics, got %d", len(n.Metrics))
	}
	if len(n.Errors) != 1 || n.Errors[0].Collection != "metrics" || n.Errors[0].Index != -1 {
		t.Errorf("Errors = %v, want one collection-level metrics entry", n.Errors)
	}
}

func TestNormalizeAliasNames(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "apple_health",
		"data": {
			"restingHeartRate": [{"value": 48, "timestamp": "2025-03-01T07:00:00Z"}],
			"bodyMass": [{"value": 82.5, "time": "2025-03-01T07:05:00Z"}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Metrics) != 2 {
		t.Fatalf("Expected 2 metrics, got %d (errors: %v)", len(n.Metrics), n.Errors)
	}

	types := map[models.MetricType]bool{}
	for _, m := range n.Metrics {
		types[m.MetricType] = true
	}
	if !types[models.MetricRestingHR] || !types[models.MetricWeight] {
		t.Errorf("Mapped types = %v, want resting_hr and weight", types)
	}
}

func TestNormalizeUnrecognizedMetric(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"chakra_alignment": [{"value": 7, "timestamp": "2025-03-01T08:00:00Z"}],
			"hrv": [{"value": 55, "timestamp": "2025-03-01T06:30:00Z"}]
		}
	}`)

	n := Normalize("alice", payload)

	// The unknown collection becomes an error entry; the known one is kept.
	if len(n.Metrics) != 1 {
		t.Errorf("Expected 1 metric, got %d", len(n.Metrics))
	}
	if len(n.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", n.Errors)
	}
	if n.Errors[0].Collection != "chakra_alignment" || n.Errors[0].Index != -1 {
		t.Errorf("Error = %+v, want collection-level chakra_alignment entry", n.Errors[0])
	}
}

func TestNormalizeBadRecordDoesNotAbortSiblings(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"hrv": [
				{"value": 55, "timestamp": "2025-03-01T06:30:00Z"},
				{"value": 57},
				{"value": 58, "timestamp": "2025-03-02T06:30:00Z"}
			]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Metrics) != 2 {
		t.Errorf("Expected 2 metrics, got %d", len(n.Metrics))
	}
	if len(n.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", n.Errors)
	}
	if n.Errors[0].Index != 1 {
		t.Errorf("Error index = %d, want 1", n.Errors[0].Index)
	}
}

func TestNormalizeSleepBlock(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"sleep": [{
				"bedtime": "2025-03-01T23:30:00Z",
				"wake_time": "2025-03-02T07:15:00Z",
				"total_minutes": 420,
				"deep_sleep_minutes": 70,
				"rem_sleep_minutes": 95,
				"light_sleep_minutes": 255,
				"hrv_avg": 52
			}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Sleep) != 1 {
		t.Fatalf("Expected 1 sleep session, got %d", len(n.Sleep))
	}

	s := n.Sleep[0]
	// Cross-midnight session keyed by bedtime's date.
	if s.SleepDate != "2025-03-01" {
		t.Errorf("SleepDate = %q, want 2025-03-01", s.SleepDate)
	}
	// In-bed derived from the bed period, awake from the difference.
	if s.InBedMinutes != 465 {
		t.Errorf("InBedMinutes = %d, want 465", s.InBedMinutes)
	}
	if s.AwakeMinutes != 45 {
		t.Errorf("AwakeMinutes = %d, want 45", s.AwakeMinutes)
	}
	if s.HRVAvg == nil || *s.HRVAvg != 52 {
		t.Errorf("HRVAvg = %v, want 52", s.HRVAvg)
	}
}

func TestNormalizeSleepBlockBedtimeAliases(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"sleep": [{
				"bedtime_start": "2025-03-01T23:30:00Z",
				"bedtime_end": "2025-03-02T07:15:00Z",
				"total_minutes": 420
			}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Sleep) != 1 {
		t.Fatalf("Expected 1 sleep session, got %d", len(n.Sleep))
	}
	if n.Sleep[0].SleepDate != "2025-03-01" {
		t.Errorf("SleepDate = %q, want 2025-03-01", n.Sleep[0].SleepDate)
	}
}

func TestNormalizeWorkoutBlock(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "strava",
		"data": {
			"activities": [{
				"sport": "run",
				"start_time": "2025-03-01T17:00:00Z",
				"end_time": "2025-03-01T17:45:00Z",
				"calories": 480,
				"heart_rate_avg": 152
			}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Workouts) != 1 {
		t.Fatalf("Expected 1 workout, got %d", len(n.Workouts))
	}

	w := n.Workouts[0]
	if w.WorkoutType != "run" {
		t.Errorf("WorkoutType = %q, want run", w.WorkoutType)
	}
	// Duration derived from the start/end span.
	if w.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", w.DurationMinutes)
	}
	if w.CaloriesBurned == nil || *w.CaloriesBurned != 480 {
		t.Errorf("CaloriesBurned = %v, want 480", w.CaloriesBurned)
	}
}

func TestNormalizeWorkoutActivityAndSeconds(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"source": "oura",
		"data": {
			"workouts": [{
				"activity": "run",
				"started_at": "2025-03-01T17:00:00Z",
				"duration": 1800
			}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Errors) != 0 {
		t.Fatalf("Unexpected errors: %v", n.Errors)
	}
	if len(n.Workouts) != 1 {
		t.Fatalf("Expected 1 workout, got %d", len(n.Workouts))
	}

	w := n.Workouts[0]
	if w.WorkoutType != "run" {
		t.Errorf("WorkoutType = %q, want run", w.WorkoutType)
	}
	// Bare duration is seconds.
	if w.DurationMinutes != 30 {
		t.Errorf("DurationMinutes = %d, want 30", w.DurationMinutes)
	}
}

func TestNormalizeDefaultSource(t *testing.T) {
	payload := payloadFromJSON(t, `{
		"data": {
			"hrv": [{"value": 55, "timestamp": "2025-03-01T06:30:00Z"}]
		}
	}`)

	n := Normalize("alice", payload)

	if len(n.Metrics) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(n.Metrics))
	}
	if n.Metrics[0].Source != "webhook" {
		t.Errorf("Source = %q, want webhook", n.Metrics[0].Source)
	}
}

func TestParsePayloadStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "not JSON",
			raw:  "not json at all",
		},
		{
			name: "missing data object",
			raw:  `{"source": "oura"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePayload([]byte(tt.raw))
			if err == nil {
				t.Fatal("Expected structural error")
			}
		})
	}
}

func TestParseTimestampFormats(t *testing.T) {
	for _, input := range []string{
		"2025-03-01T08:00:00Z",
		"2025-03-01T08:00:00",
		"2025-03-01 08:00:00",
		"2025-03-01T08:00",
		"2025-03-01 08:00",
	} {
		if _, err := parseTimestamp(input); err != nil {
			t.Errorf("parseTimestamp(%q) error: %v", input, err)
		}
	}

	if _, err := parseTimestamp("March 1st"); err == nil {
		t.Error("Expected error for unparseable timestamp")
	}
}

func TestRecordErrorString(t *testing.T) {
	e := RecordError{Collection: "hrv", Index: 2, Reason: "missing value"}
	if got := e.String(); got != "hrv[2]: missing value" {
		t.Errorf("String() = %q", got)
	}
}

func TestResultFinalize(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   Status
	}{
		{
			name:   "all stored",
			result: Result{MetricsProcessed: 3},
			want:   StatusSuccess,
		},
		{
			name:   "some stored some failed",
			result: Result{MetricsProcessed: 2, Errors: []RecordError{{}}},
			want:   StatusPartial,
		},
		{
			name:   "nothing stored",
			result: Result{Errors: []RecordError{{}}},
			want:   StatusFailed,
		},
		{
			name:   "empty payload",
			result: Result{},
			want:   StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.finalize()
			if tt.result.Status != tt.want {
				t.Errorf("Status = %q, want %q", tt.result.Status, tt.want)
			}
		})
	}
}

func TestMetricRecordUnmarshalAliases(t *testing.T) {
	var rec metricRecord
	if err := json.Unmarshal([]byte(`{"sum": 12.5, "day": "2025-03-01", "unit": "km"}`), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	m, err := normalizeMetricRecord("alice", models.MetricDistance, "test", rec)
	if err != nil {
		t.Fatalf("normalizeMetricRecord failed: %v", err)
	}
	if m.Value != 12.5 || m.Unit != "km" {
		t.Errorf("Value/Unit = %v/%q", m.Value, m.Unit)
	}
}
