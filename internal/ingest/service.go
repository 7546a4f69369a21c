// ABOUTME: Ingestion service: normalize, dedup, store, then rescore affected days.
// ABOUTME: Also hosts the sleep-log, blood-work, and biological-age entrypoints.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/vitals/internal/bioage"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/scoring"
	"github.com/harperreed/vitals/internal/storage"
)

// ErrValidation marks a request rejected before any write (the
// 4xx-equivalent class).
var ErrValidation = errors.New("validation failed")

// Service wires the normalizer, the dedup layer, and the scoring engines
// behind the external entrypoints.
type Service struct {
	repo   storage.Repository
	seen   *SeenCache
	daily  *scoring.Engine
	bio    *bioage.Engine
	logger *log.Logger

	// Serializes score recomputation per (user, date) against ingestion
	// touching the same day's records.
	dayMu    sync.Mutex
	dayLocks map[string]*dayLock
}

// dayLock is a refcounted per-(user, date) mutex. Entries are removed
// when the last holder releases, so the lock table never outlives the
// contention that created it.
type dayLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a Service with default engines and no seen-cache.
func NewService(repo storage.Repository, logger *log.Logger) *Service {
	return &Service{
		repo:     repo,
		daily:    scoring.NewEngine(nil),
		bio:      bioage.NewEngine(nil),
		logger:   logger,
		dayLocks: make(map[string]*dayLock),
	}
}

// WithSeenCache attaches a recently-seen key cache. Optional.
func (s *Service) WithSeenCache(cache *SeenCache) *Service {
	s.seen = cache
	return s
}

// WithRecoveryBase replaces the pluggable recovery-base function.
func (s *Service) WithRecoveryBase(fn scoring.RecoveryBaseFunc) *Service {
	s.daily = scoring.NewEngine(fn)
	return s
}

// Ingest is the webhook entrypoint: it normalizes a raw payload for a
// resolved user, stores canonical records idempotently, and synchronously
// recomputes daily scores for every affected day. Per-record failures are
// collected into the result; only a structurally unusable payload returns
// an error.
func (s *Service) Ingest(ctx context.Context, userID string, raw []byte) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	payload, err := parsePayload(raw)
	if err != nil {
		return &Result{Status: StatusFailed}, err
	}

	normalized := Normalize(userID, payload)
	result := &Result{Errors: normalized.Errors}
	affectedDays := make(map[string]bool)

	for _, m := range normalized.Metrics {
		if s.seen.Seen(m.NaturalKey()) {
			result.Duplicates++
			result.MetricsProcessed++
			continue
		}
		inserted, err := s.repo.UpsertMetric(ctx, m)
		if err != nil {
			result.addError(string(m.MetricType), -1, err.Error())
			continue
		}
		if !inserted {
			result.Duplicates++
		}
		result.MetricsProcessed++
		s.seen.Mark(m.NaturalKey())
	}

	for _, session := range normalized.Sleep {
		if err := s.scoreAndStoreSleep(ctx, session); err != nil {
			result.addError("sleep", -1, err.Error())
			continue
		}
		result.SleepSessionsProcessed++
		affectedDays[session.SleepDate] = true
	}

	for _, w := range normalized.Workouts {
		inserted, err := s.repo.UpsertWorkout(ctx, w)
		if err != nil {
			result.addError("workouts", -1, err.Error())
			continue
		}
		if !inserted {
			result.Duplicates++
		}
		result.WorkoutsProcessed++
		affectedDays[w.StartedAt.UTC().Format(time.DateOnly)] = true
	}

	for _, day := range sortedDays(affectedDays) {
		if _, err := s.RecomputeDay(ctx, userID, day); err != nil {
			result.addError("daily_scores", -1, fmt.Sprintf("recompute %s: %v", day, err))
		}
	}

	result.finalize()
	s.logger.Info("ingested payload",
		"user", userID,
		"status", result.Status,
		"metrics", result.MetricsProcessed,
		"sleep", result.SleepSessionsProcessed,
		"workouts", result.WorkoutsProcessed,
		"duplicates", result.Duplicates,
		"errors", len(result.Errors),
	)
	return result, nil
}

// parsePayload validates the envelope. A missing data object is a
// structural failure, not a per-record one.
func parsePayload(raw []byte) (*rawPayload, error) {
	var payload rawPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingData, err)
	}
	if payload.Data == nil {
		return nil, ErrMissingData
	}
	return &payload, nil
}

// LogSleep is the manual sleep-logging entrypoint. Derived fields are
// computed and persisted when not supplied.
func (s *Service) LogSleep(ctx context.Context, session *models.SleepSession) (*models.SleepSession, error) {
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.scoreAndStoreSleep(ctx, session); err != nil {
		return nil, err
	}
	if _, err := s.RecomputeDay(ctx, session.UserID, session.SleepDate); err != nil {
		return nil, err
	}
	return session, nil
}

// scoreAndStoreSleep recomputes the session's derived fields and upserts
// it by natural key.
func (s *Service) scoreAndStoreSleep(ctx context.Context, session *models.SleepSession) error {
	if err := session.Validate(); err != nil {
		return err
	}
	score, _ := scoring.ScoreSleep(session)
	efficiency := session.ComputeEfficiency()
	session.SleepScore = &score
	session.Efficiency = &efficiency
	return s.repo.UpsertSleepSession(ctx, session)
}

// AddBloodWork is the blood-work upload entrypoint. Markers are
// categorized through the biomarker reference table before storage.
func (s *Service) AddBloodWork(ctx context.Context, bw *models.BloodWork) (*models.BloodWork, error) {
	if err := bw.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	table := bioage.DefaultReferenceTable()
	for i := range bw.Markers {
		if bw.Markers[i].Category == "" {
			bw.Markers[i].Category = table.CategoryFor(bw.Markers[i].Name)
		}
	}
	if err := s.repo.AddBloodWork(ctx, bw); err != nil {
		return nil, err
	}
	s.logger.Info("added bloodwork", "user", bw.UserID, "test_date", bw.TestDate, "markers", len(bw.Markers))
	return bw, nil
}

// BiologicalAge computes the biological age from the user's most recent
// panel and stored birth date. Missing data yields a structured
// cannot-calculate result, never an error.
func (s *Service) BiologicalAge(ctx context.Context, userID string) (*bioage.Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	var markers []models.Marker
	asOf := time.Now().UTC()
	panel, err := s.repo.LatestBloodWork(ctx, userID)
	switch {
	case err == nil:
		markers = panel.Markers
		if t, perr := time.Parse(time.DateOnly, panel.TestDate); perr == nil {
			asOf = t
		}
	case errors.Is(err, storage.ErrNotFound):
		// No panel yet: the engine reports the full missing set.
	default:
		return nil, err
	}

	age, err := s.chronologicalAge(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	result := s.bio.Compute(age, markers)
	return &result, nil
}

// chronologicalAge returns the user's age in years at the given time, or
// 0 when the birth date is unknown.
func (s *Service) chronologicalAge(ctx context.Context, userID string, asOf time.Time) (float64, error) {
	birthDate, err := s.repo.GetBirthDate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if birthDate == "" {
		return 0, nil
	}
	born, err := time.Parse(time.DateOnly, birthDate)
	if err != nil {
		return 0, fmt.Errorf("stored birth date %q: %w", birthDate, err)
	}
	if asOf.Before(born) {
		return 0, nil
	}
	return asOf.Sub(born).Hours() / 24 / 365.25, nil
}

// RecomputeDay recomputes and upserts the daily composite score for one
// user and day. Serialized per (user, date) so a score is never computed
// from a partially written session.
func (s *Service) RecomputeDay(ctx context.Context, userID, day string) (*models.DailyScore, error) {
	unlock := s.lockDay(userID, day)
	defer unlock()

	session, err := s.repo.SleepSessionForDate(ctx, userID, day)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	workouts, err := s.repo.WorkoutsOnDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	steps, err := s.daySteps(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.RecentSleepSessions(ctx, userID, day, scoring.BaselineWindow)
	if err != nil {
		return nil, err
	}

	score := s.daily.Compute(scoring.DayInputs{
		UserID:   userID,
		Date:     day,
		Session:  session,
		Workouts: workouts,
		Steps:    steps,
		Baseline: scoring.ComputeBaseline(history),
	})
	if err := s.repo.UpsertDailyScore(ctx, score); err != nil {
		return nil, err
	}
	return score, nil
}

// daySteps returns the day's step total: the whole-day aggregate when one
// was ingested, otherwise the sum of instantaneous samples.
func (s *Service) daySteps(ctx context.Context, userID, day string) (float64, error) {
	dayStart, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", day, err)
	}
	samples, err := s.repo.MetricsInRange(ctx, userID, models.MetricSteps, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return 0, err
	}

	anchor := models.DayAnchor(dayStart)
	var sum float64
	for _, m := range samples {
		if m.RecordedAt.Equal(anchor) {
			return m.Value, nil
		}
		sum += m.Value
	}
	return sum, nil
}

// DedupScan runs the administrative duplicate cleanup.
func (s *Service) DedupScan(ctx context.Context) (*storage.DedupSummary, error) {
	summary, err := s.repo.DedupScan(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dedup scan complete",
		"metrics_removed", summary.Metrics,
		"sleep_removed", summary.SleepSessions,
		"workouts_removed", summary.Workouts,
	)
	return summary, nil
}

// lockDay takes the per-(user, date) mutex and returns its unlock. The
// table entry is dropped once the last holder releases.
func (s *Service) lockDay(userID, day string) func() {
	key := userID + "|" + day
	s.dayMu.Lock()
	l, ok := s.dayLocks[key]
	if !ok {
		l = &dayLock{}
		s.dayLocks[key] = l
	}
	l.refs++
	s.dayMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.dayMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.dayLocks, key)
		}
		s.dayMu.Unlock()
	}
}

func sortedDays(days map[string]bool) []string {
	out := make([]string, 0, len(days))
	for day := range days {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}
