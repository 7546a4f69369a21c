// ABOUTME: Metric sample operations for SQLite storage.
// ABOUTME: Natural-key upsert keeps the earliest row on conflict.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
)

// UpsertMetric stores a metric sample. A sample with an already-seen
// (user, type, recorded_at) key is a no-op; the earliest insert wins.
func (d *DB) UpsertMetric(ctx context.Context, m *models.Metric) (bool, error) {
	query := `
		INSERT INTO metrics (id, user_id, metric_type, value, unit, source, recorded_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, metric_type, recorded_at) DO NOTHING
	`
	res, err := d.db.ExecContext(ctx, query,
		m.ID.String(),
		m.UserID,
		string(m.MetricType),
		m.Value,
		m.Unit,
		m.Source,
		m.RecordedAt.UTC().Format(time.RFC3339),
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert metric: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert metric: %w", err)
	}
	return affected > 0, nil
}

// ListMetrics retrieves a user's metrics with optional type filtering.
// Results are sorted by recorded_at descending (most recent first).
func (d *DB) ListMetrics(ctx context.Context, userID string, metricType *models.MetricType, limit int) ([]*models.Metric, error) {
	query := `
		SELECT id, user_id, metric_type, value, unit, source, recorded_at, created_at
		FROM metrics
		WHERE user_id = ?
	`
	args := []interface{}{userID}

	if metricType != nil {
		query += " AND metric_type = ?"
		args = append(args, string(*metricType))
	}
	query += " ORDER BY recorded_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// LatestMetric retrieves the most recent sample of a type for a user.
func (d *DB) LatestMetric(ctx context.Context, userID string, metricType models.MetricType) (*models.Metric, error) {
	query := `
		SELECT id, user_id, metric_type, value, unit, source, recorded_at, created_at
		FROM metrics
		WHERE user_id = ? AND metric_type = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	m, err := scanMetric(d.db.QueryRowContext(ctx, query, userID, string(metricType)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// MetricsInRange retrieves samples in the half-open interval [start, end),
// ordered by recorded_at ascending. Whole-day aggregates are pinned inside
// their day, so day queries always see them.
func (d *DB) MetricsInRange(ctx context.Context, userID string, metricType models.MetricType, start, end time.Time) ([]*models.Metric, error) {
	query := `
		SELECT id, user_id, metric_type, value, unit, source, recorded_at, created_at
		FROM metrics
		WHERE user_id = ? AND metric_type = ? AND recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at ASC
	`
	rows, err := d.db.QueryContext(ctx, query,
		userID, string(metricType),
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics in range: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMetric(row rowScanner) (*models.Metric, error) {
	var m models.Metric
	var id, recordedAt, createdAt string
	var source sql.NullString

	err := row.Scan(&id, &m.UserID, (*string)(&m.MetricType), &m.Value, &m.Unit, &source, &recordedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	m.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse metric id: %w", err)
	}
	m.Source = source.String
	m.RecordedAt, err = time.Parse(time.RFC3339, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}
	m.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &m, nil
}

func scanMetrics(rows *sql.Rows) ([]*models.Metric, error) {
	var metrics []*models.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
