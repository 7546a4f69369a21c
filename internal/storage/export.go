// ABOUTME: Export functionality for canonical health data.
// ABOUTME: Supports JSON and YAML export formats for backup.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/vitals/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format.
type ExportData struct {
	Version       string                 `json:"version" yaml:"version"`
	ExportedAt    time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool          string                 `json:"tool" yaml:"tool"`
	Metrics       []*models.Metric       `json:"metrics" yaml:"metrics"`
	SleepSessions []*models.SleepSession `json:"sleep_sessions" yaml:"sleep_sessions"`
	Workouts      []*models.Workout      `json:"workouts" yaml:"workouts"`
	DailyScores   []*models.DailyScore   `json:"daily_scores" yaml:"daily_scores"`
	BloodWork     []*models.BloodWork    `json:"bloodwork" yaml:"bloodwork"`
}

// GetAllData retrieves all rows across users for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "vitals",
	}

	users, err := d.allUsers(ctx)
	if err != nil {
		return nil, err
	}

	for _, userID := range users {
		metrics, err := d.ListMetrics(ctx, userID, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("list metrics: %w", err)
		}
		data.Metrics = append(data.Metrics, metrics...)

		sessions, err := d.RecentSleepSessions(ctx, userID, "9999-12-31", 0x7fffffff)
		if err != nil {
			return nil, fmt.Errorf("list sleep sessions: %w", err)
		}
		data.SleepSessions = append(data.SleepSessions, sessions...)

		workouts, err := d.ListWorkouts(ctx, userID, 0)
		if err != nil {
			return nil, fmt.Errorf("list workouts: %w", err)
		}
		data.Workouts = append(data.Workouts, workouts...)

		scores, err := d.ListDailyScores(ctx, userID, 0)
		if err != nil {
			return nil, fmt.Errorf("list daily scores: %w", err)
		}
		data.DailyScores = append(data.DailyScores, scores...)

		panels, err := d.ListBloodWork(ctx, userID, 0)
		if err != nil {
			return nil, fmt.Errorf("list bloodwork: %w", err)
		}
		data.BloodWork = append(data.BloodWork, panels...)
	}
	return data, nil
}

// allUsers returns the distinct user IDs present in any table.
func (d *DB) allUsers(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_id FROM metrics
		UNION SELECT user_id FROM sleep_sessions
		UNION SELECT user_id FROM workouts
		UNION SELECT user_id FROM daily_scores
		UNION SELECT user_id FROM bloodwork
		ORDER BY user_id
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// MarshalExport serializes export data in the requested format
// ("json" or "yaml").
func MarshalExport(data *ExportData, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(data, "", "  ")
	case "yaml":
		return yaml.Marshal(data)
	default:
		return nil, fmt.Errorf("unknown export format: %q", format)
	}
}
