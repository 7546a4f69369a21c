// ABOUTME: Repository interface for the ingestion and scoring core.
// ABOUTME: Keyed upserts, ordered range queries, and maintenance operations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrScanInProgress is returned when a dedup scan is already running.
var ErrScanInProgress = errors.New("dedup scan already in progress")

// Repository defines the storage contract for canonical health records.
// All natural-key writes are atomic upserts: re-delivering a payload is a
// no-op for already-seen keys.
type Repository interface {
	// Metric operations. UpsertMetric reports whether a new row was
	// inserted; a duplicate natural key keeps the earlier row.
	UpsertMetric(ctx context.Context, m *models.Metric) (bool, error)
	ListMetrics(ctx context.Context, userID string, metricType *models.MetricType, limit int) ([]*models.Metric, error)
	LatestMetric(ctx context.Context, userID string, metricType models.MetricType) (*models.Metric, error)
	MetricsInRange(ctx context.Context, userID string, metricType models.MetricType, start, end time.Time) ([]*models.Metric, error)

	// Sleep session operations. Upsert replaces raw and derived fields
	// for an existing (user, date, source) row.
	UpsertSleepSession(ctx context.Context, s *models.SleepSession) error
	GetSleepSession(ctx context.Context, userID, sleepDate, source string) (*models.SleepSession, error)
	SleepSessionForDate(ctx context.Context, userID, sleepDate string) (*models.SleepSession, error)
	RecentSleepSessions(ctx context.Context, userID, beforeDate string, limit int) ([]*models.SleepSession, error)

	// Workout operations.
	UpsertWorkout(ctx context.Context, w *models.Workout) (bool, error)
	WorkoutsOnDay(ctx context.Context, userID, day string) ([]*models.Workout, error)
	ListWorkouts(ctx context.Context, userID string, limit int) ([]*models.Workout, error)

	// Daily score operations. Upsert by (user, date): a later
	// computation replaces the earlier one.
	UpsertDailyScore(ctx context.Context, ds *models.DailyScore) error
	GetDailyScore(ctx context.Context, userID, scoreDate string) (*models.DailyScore, error)
	ListDailyScores(ctx context.Context, userID string, limit int) ([]*models.DailyScore, error)

	// Blood work operations. Panels are append-only history.
	AddBloodWork(ctx context.Context, bw *models.BloodWork) error
	LatestBloodWork(ctx context.Context, userID string) (*models.BloodWork, error)
	ListBloodWork(ctx context.Context, userID string, limit int) ([]*models.BloodWork, error)

	// Profile operations.
	SetBirthDate(ctx context.Context, userID, birthDate string) error
	GetBirthDate(ctx context.Context, userID string) (string, error)

	// Maintenance: full-table dedup scan keeping the earliest row per
	// natural key. Single-flight; administrative, not the hot path.
	DedupScan(ctx context.Context) (*DedupSummary, error)

	// Export
	GetAllData(ctx context.Context) (*ExportData, error)

	// Lifecycle
	Close() error
}
