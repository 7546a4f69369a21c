// ABOUTME: Normalizer from heterogeneous device payloads to canonical records.
// ABOUTME: Shape-per-collection: instantaneous, aggregated, sleep-block, workout-block.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

// rawPayload is the envelope every supported app posts. Only the data
// object is required; source defaults to "webhook". Metric collections
// may sit directly under data or grouped under a "metrics" object.
type rawPayload struct {
	Source string                     `json:"source"`
	Data   map[string]json.RawMessage `json:"data"`
}

// Normalized is the canonical output of payload normalization, before
// any storage write.
type Normalized struct {
	Metrics  []*models.Metric
	Sleep    []*models.SleepSession
	Workouts []*models.Workout
	Errors   []RecordError
}

// metricRecord covers the two metric shapes devices send: instantaneous
// samples (value + timestamp) and pre-aggregated day totals
// (total/sum + date). Field aliases span the supported apps' conventions.
type metricRecord struct {
	Value *float64 `json:"value"`
	Total *float64 `json:"total"`
	Sum   *float64 `json:"sum"`

	Timestamp  string `json:"timestamp"`
	RecordedAt string `json:"recorded_at"`
	Time       string `json:"time"`

	Date string `json:"date"`
	Day  string `json:"day"`

	Unit string `json:"unit"`
}

// sleepBlock is one continuous bed period as exported by sleep trackers.
type sleepBlock struct {
	Bedtime      string `json:"bedtime"`
	BedtimeStart string `json:"bedtime_start"`
	StartTime    string `json:"start_time"`
	Start        string `json:"start"`
	WakeTime     string `json:"wake_time"`
	BedtimeEnd   string `json:"bedtime_end"`
	EndTime      string `json:"end_time"`
	End          string `json:"end"`

	TotalMinutes      int  `json:"total_minutes"`
	DurationMinutes   int  `json:"duration_minutes"`
	InBedMinutes      int  `json:"in_bed_minutes"`
	TimeInBedMinutes  int  `json:"time_in_bed_minutes"`
	DeepSleepMinutes  int  `json:"deep_sleep_minutes"`
	RemSleepMinutes   int  `json:"rem_sleep_minutes"`
	LightSleepMinutes int  `json:"light_sleep_minutes"`
	AwakeMinutes      int  `json:"awake_minutes"`
	LatencyMinutes    *int `json:"sleep_latency_minutes"`

	HRVAvg          *float64 `json:"hrv_avg"`
	RestingHR       *float64 `json:"resting_hr"`
	RespiratoryRate *float64 `json:"respiratory_rate"`
}

// workoutBlock is one exercise session as exported by fitness apps.
// Bare "duration" is in seconds (the Oura convention); "duration_minutes"
// wins when both are present.
type workoutBlock struct {
	Type         string `json:"type"`
	WorkoutType  string `json:"workout_type"`
	ActivityType string `json:"activity_type"`
	Activity     string `json:"activity"`
	Sport        string `json:"sport"`
	Name         string `json:"name"`

	StartedAt string `json:"started_at"`
	StartTime string `json:"start_time"`
	EndedAt   string `json:"ended_at"`
	EndTime   string `json:"end_time"`

	DurationMinutes int      `json:"duration_minutes"`
	DurationSeconds int      `json:"duration"`
	Calories        *float64 `json:"calories"`
	CaloriesBurned  *float64 `json:"calories_burned"`
	HeartRateAvg    *float64 `json:"heart_rate_avg"`
	HeartRateMax    *float64 `json:"heart_rate_max"`
}

// Normalize maps a raw payload into canonical records. Unrecognized
// collection names and malformed records become error entries; they never
// abort the rest of the payload.
func Normalize(userID string, payload *rawPayload) *Normalized {
	n := &Normalized{}
	source := payload.Source
	if source == "" {
		source = "webhook"
	}

	for name, raw := range payload.Data {
		switch {
		case name == "metrics":
			n.normalizeMetricGroup(userID, source, raw)
		case sleepCollections[name]:
			n.normalizeSleep(userID, name, source, raw)
		case workoutCollections[name]:
			n.normalizeWorkouts(userID, name, source, raw)
		default:
			n.normalizeMetrics(userID, name, source, raw)
		}
	}
	return n
}

// normalizeMetricGroup handles the nested envelope some apps send, with
// metric collections grouped under a "metrics" object.
func (n *Normalized) normalizeMetricGroup(userID, source string, raw json.RawMessage) {
	var group map[string]json.RawMessage
	if err := json.Unmarshal(raw, &group); err != nil {
		n.Errors = append(n.Errors, RecordError{Collection: "metrics", Index: -1, Reason: fmt.Sprintf("not a collection object: %v", err)})
		return
	}
	for name, sub := range group {
		n.normalizeMetrics(userID, name, source, sub)
	}
}

// normalizeMetrics handles a named metric collection of instantaneous or
// aggregated records.
func (n *Normalized) normalizeMetrics(userID, name, source string, raw json.RawMessage) {
	metricType, ok := canonicalMetricType(name)
	if !ok {
		n.Errors = append(n.Errors, RecordError{Collection: name, Index: -1, Reason: "unrecognized metric type"})
		return
	}

	var records []metricRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		n.Errors = append(n.Errors, RecordError{Collection: name, Index: -1, Reason: fmt.Sprintf("not a record array: %v", err)})
		return
	}

	for i, rec := range records {
		m, err := normalizeMetricRecord(userID, metricType, source, rec)
		if err != nil {
			n.Errors = append(n.Errors, RecordError{Collection: name, Index: i, Reason: err.Error()})
			continue
		}
		n.Metrics = append(n.Metrics, m)
	}
}

// normalizeMetricRecord converts one record, picking the shape from which
// known keys are present.
func normalizeMetricRecord(userID string, metricType models.MetricType, source string, rec metricRecord) (*models.Metric, error) {
	value := rec.Value
	if value == nil {
		value = rec.Total
	}
	if value == nil {
		value = rec.Sum
	}
	if value == nil {
		return nil, fmt.Errorf("missing value")
	}

	m := models.NewMetric(userID, metricType, *value).WithSource(source)
	if rec.Unit != "" {
		m.Unit = rec.Unit
	}

	// Instantaneous: a sample timestamp.
	if ts := firstNonEmpty(rec.Timestamp, rec.RecordedAt, rec.Time); ts != "" {
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q", ts)
		}
		return m.WithRecordedAt(t), nil
	}

	// Aggregated: a whole-day total, pinned to the day anchor.
	if day := firstNonEmpty(rec.Date, rec.Day); day != "" {
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", day)
		}
		return m.WithRecordedAt(models.DayAnchor(d)), nil
	}

	return nil, fmt.Errorf("missing timestamp or date")
}

// normalizeSleep reduces sleep blocks to one session per bed period,
// keyed by the calendar date the user went to bed.
func (n *Normalized) normalizeSleep(userID, name, source string, raw json.RawMessage) {
	var blocks []sleepBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		n.Errors = append(n.Errors, RecordError{Collection: name, Index: -1, Reason: fmt.Sprintf("not a record array: %v", err)})
		return
	}

	for i, block := range blocks {
		s, err := normalizeSleepBlock(userID, source, block)
		if err != nil {
			n.Errors = append(n.Errors, RecordError{Collection: name, Index: i, Reason: err.Error()})
			continue
		}
		n.Sleep = append(n.Sleep, s)
	}
}

func normalizeSleepBlock(userID, source string, block sleepBlock) (*models.SleepSession, error) {
	bedtimeStr := firstNonEmpty(block.Bedtime, block.BedtimeStart, block.StartTime, block.Start)
	wakeStr := firstNonEmpty(block.WakeTime, block.BedtimeEnd, block.EndTime, block.End)
	if bedtimeStr == "" || wakeStr == "" {
		return nil, fmt.Errorf("missing bedtime or wake time")
	}
	bedtime, err := parseTimestamp(bedtimeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid bedtime %q", bedtimeStr)
	}
	wakeTime, err := parseTimestamp(wakeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid wake time %q", wakeStr)
	}

	s := models.NewSleepSession(userID, bedtime, wakeTime, source)
	s.TotalMinutes = firstPositive(block.TotalMinutes, block.DurationMinutes)
	s.InBedMinutes = firstPositive(block.InBedMinutes, block.TimeInBedMinutes)
	if s.InBedMinutes == 0 {
		s.InBedMinutes = int(wakeTime.Sub(bedtime).Minutes())
	}
	s.DeepSleepMinutes = block.DeepSleepMinutes
	s.RemSleepMinutes = block.RemSleepMinutes
	s.LightSleepMinutes = block.LightSleepMinutes
	s.AwakeMinutes = block.AwakeMinutes
	if s.AwakeMinutes == 0 && s.InBedMinutes > s.TotalMinutes {
		s.AwakeMinutes = s.InBedMinutes - s.TotalMinutes
	}
	s.SleepLatencyMinutes = block.LatencyMinutes
	s.HRVAvg = block.HRVAvg
	s.RestingHR = block.RestingHR
	s.RespiratoryRate = block.RespiratoryRate

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// normalizeWorkouts converts workout blocks.
func (n *Normalized) normalizeWorkouts(userID, name, source string, raw json.RawMessage) {
	var blocks []workoutBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		n.Errors = append(n.Errors, RecordError{Collection: name, Index: -1, Reason: fmt.Sprintf("not a record array: %v", err)})
		return
	}

	for i, block := range blocks {
		w, err := normalizeWorkoutBlock(userID, block)
		if err != nil {
			n.Errors = append(n.Errors, RecordError{Collection: name, Index: i, Reason: err.Error()})
			continue
		}
		n.Workouts = append(n.Workouts, w)
	}
}

func normalizeWorkoutBlock(userID string, block workoutBlock) (*models.Workout, error) {
	workoutType := firstNonEmpty(block.Type, block.WorkoutType, block.ActivityType, block.Activity, block.Sport)
	if workoutType == "" {
		return nil, fmt.Errorf("missing workout type")
	}
	startStr := firstNonEmpty(block.StartedAt, block.StartTime)
	if startStr == "" {
		return nil, fmt.Errorf("missing start time")
	}
	startedAt, err := parseTimestamp(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q", startStr)
	}

	w := models.NewWorkout(userID, workoutType, startedAt)
	w.Name = block.Name

	if endStr := firstNonEmpty(block.EndedAt, block.EndTime); endStr != "" {
		endedAt, err := parseTimestamp(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid end time %q", endStr)
		}
		w.EndedAt = endedAt.UTC()
	}

	switch {
	case block.DurationMinutes > 0:
		w.WithDuration(block.DurationMinutes)
	case block.DurationSeconds > 0:
		w.WithDuration(block.DurationSeconds / 60)
	case !w.EndedAt.IsZero():
		w.DurationMinutes = int(w.EndedAt.Sub(w.StartedAt).Minutes())
	default:
		return nil, fmt.Errorf("missing duration and end time")
	}

	calories := block.Calories
	if calories == nil {
		calories = block.CaloriesBurned
	}
	w.CaloriesBurned = calories
	w.HeartRateAvg = block.HeartRateAvg
	w.HeartRateMax = block.HeartRateMax

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// parseTimestamp accepts RFC3339 and the common variants device exports use.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp: %q", s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
