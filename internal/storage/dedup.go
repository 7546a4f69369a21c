// ABOUTME: Administrative dedup scan: one row per natural key, earliest wins.
// ABOUTME: Single-flight, one transaction per table; not part of the hot path.
package storage

import (
	"context"
	"fmt"
)

// DedupSummary reports rows removed per table by a dedup scan.
type DedupSummary struct {
	Metrics       int
	SleepSessions int
	Workouts      int
}

// Total returns the total number of rows removed.
func (s *DedupSummary) Total() int {
	return s.Metrics + s.SleepSessions + s.Workouts
}

// dedupTargets describes each table's natural key. Live inserts already
// go through ON CONFLICT upserts; the scan cleans up rows that predate
// the unique indexes (e.g. imported from older exports).
var dedupTargets = []struct {
	table      string
	naturalKey string
}{
	{"metrics", "user_id, metric_type, recorded_at"},
	{"sleep_sessions", "user_id, sleep_date, source"},
	{"workouts", "user_id, started_at, workout_type"},
}

// DedupScan groups rows by natural key and removes every row except the
// earliest-created per group. Each table is cleaned in its own
// transaction so the scan is safe to run alongside live ingestion.
// A concurrent scan returns ErrScanInProgress.
func (d *DB) DedupScan(ctx context.Context) (*DedupSummary, error) {
	if !d.scanMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer d.scanMu.Unlock()

	summary := &DedupSummary{}
	for _, target := range dedupTargets {
		removed, err := d.dedupTable(ctx, target.table, target.naturalKey)
		if err != nil {
			return nil, fmt.Errorf("dedup %s: %w", target.table, err)
		}
		switch target.table {
		case "metrics":
			summary.Metrics = removed
		case "sleep_sessions":
			summary.SleepSessions = removed
		case "workouts":
			summary.Workouts = removed
		}
	}
	return summary, nil
}

// dedupTable removes duplicate rows from one table inside a transaction.
// Rows are ranked per natural-key group by original insertion order
// (created_at, then rowid as the tiebreaker) and all but the first are
// deleted.
func (d *DB) dedupTable(ctx context.Context, table, naturalKey string) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		DELETE FROM %s WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY %s
					ORDER BY created_at ASC, rowid ASC
				) AS rn
				FROM %s
			)
			WHERE rn > 1
		)
	`, table, naturalKey, table)

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete duplicates: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(removed), nil
}
