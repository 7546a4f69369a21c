// ABOUTME: MCP tool implementations for the vitals core.
// ABOUTME: Ingestion, sleep logging, blood work, scores, and maintenance.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/vitals/internal/bioage"
	"github.com/harperreed/vitals/internal/ingest"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// ingest_payload
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ingest_payload",
		Description: "Ingest a raw device payload (metrics, sleep, workouts) for a user",
	}, s.handleIngestPayload)

	// log_sleep
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_sleep",
		Description: "Manually log a sleep session",
	}, s.handleLogSleep)

	// add_bloodwork
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_bloodwork",
		Description: "Upload a blood work panel of lab markers",
	}, s.handleAddBloodWork)

	// get_biological_age
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_biological_age",
		Description: "Compute biological age from the most recent blood panel",
	}, s.handleGetBiologicalAge)

	// get_daily_scores
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_daily_scores",
		Description: "List recent daily sleep/recovery/strain/readiness scores",
	}, s.handleGetDailyScores)

	// list_metrics
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_metrics",
		Description: "List recent health metrics, optionally filtered by type",
	}, s.handleListMetrics)

	// set_birth_date
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_birth_date",
		Description: "Set a user's birth date for biological age calculation",
	}, s.handleSetBirthDate)

	// run_dedup_scan
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_dedup_scan",
		Description: "Scan all record tables and remove natural-key duplicates",
	}, s.handleRunDedupScan)
}

// Tool input/output types

type ingestPayloadInput struct {
	UserID  string `json:"user_id" jsonschema:"user the payload belongs to"`
	Payload string `json:"payload" jsonschema:"raw JSON payload with source and data fields"`
}

type logSleepInput struct {
	UserID            string  `json:"user_id" jsonschema:"user the session belongs to"`
	Bedtime           string  `json:"bedtime" jsonschema:"bedtime (ISO 8601)"`
	WakeTime          string  `json:"wake_time" jsonschema:"wake time (ISO 8601)"`
	TotalMinutes      int     `json:"total_minutes" jsonschema:"minutes asleep"`
	InBedMinutes      int     `json:"in_bed_minutes,omitempty" jsonschema:"minutes in bed (defaults to wake - bedtime)"`
	DeepSleepMinutes  int     `json:"deep_sleep_minutes,omitempty" jsonschema:"minutes of deep sleep"`
	RemSleepMinutes   int     `json:"rem_sleep_minutes,omitempty" jsonschema:"minutes of REM sleep"`
	LightSleepMinutes int     `json:"light_sleep_minutes,omitempty" jsonschema:"minutes of light sleep"`
	AwakeMinutes      int     `json:"awake_minutes,omitempty" jsonschema:"minutes awake in bed (defaults to in-bed - total)"`
	HRVAvg            float64 `json:"hrv_avg,omitempty" jsonschema:"average overnight HRV in ms"`
	RestingHR         float64 `json:"resting_hr,omitempty" jsonschema:"overnight resting heart rate in bpm"`
	Source            string  `json:"source,omitempty" jsonschema:"data source (defaults to manual)"`
}

type sleepOutput struct {
	SleepDate  string  `json:"sleep_date"`
	SleepScore int     `json:"sleep_score"`
	Efficiency float64 `json:"efficiency"`
	Message    string  `json:"message"`
}

type addBloodWorkInput struct {
	UserID   string          `json:"user_id" jsonschema:"user the panel belongs to"`
	TestDate string          `json:"test_date" jsonschema:"panel test date (YYYY-MM-DD)"`
	LabName  string          `json:"lab_name,omitempty" jsonschema:"lab that produced the panel"`
	Markers  []models.Marker `json:"markers" jsonschema:"named markers with value and unit"`
}

type bloodWorkOutput struct {
	ID       string `json:"id"`
	TestDate string `json:"test_date"`
	Markers  int    `json:"markers"`
	Message  string `json:"message"`
}

type userInput struct {
	UserID string `json:"user_id" jsonschema:"user to query"`
}

type getDailyScoresInput struct {
	UserID string `json:"user_id" jsonschema:"user to query"`
	Limit  int    `json:"limit,omitempty" jsonschema:"max results (default 14)"`
}

type listMetricsInput struct {
	UserID     string `json:"user_id" jsonschema:"user to query"`
	MetricType string `json:"metric_type,omitempty" jsonschema:"filter by metric type such as heart_rate or hrv or steps"`
	Limit      int    `json:"limit,omitempty" jsonschema:"max results (default 20)"`
}

type setBirthDateInput struct {
	UserID    string `json:"user_id" jsonschema:"user to update"`
	BirthDate string `json:"birth_date" jsonschema:"birth date (YYYY-MM-DD)"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type dedupOutput struct {
	MetricsRemoved  int    `json:"metrics_removed"`
	SleepRemoved    int    `json:"sleep_removed"`
	WorkoutsRemoved int    `json:"workouts_removed"`
	Message         string `json:"message"`
}

// Tool handlers

func (s *Server) handleIngestPayload(ctx context.Context, req *mcp.CallToolRequest, input ingestPayloadInput) (*mcp.CallToolResult, *ingest.Result, error) {
	result, err := s.service.Ingest(ctx, input.UserID, []byte(input.Payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to ingest payload: %w", err)
	}
	return nil, result, nil
}

func (s *Server) handleLogSleep(ctx context.Context, req *mcp.CallToolRequest, input logSleepInput) (*mcp.CallToolResult, sleepOutput, error) {
	bedtime, err := parseTimestamp(input.Bedtime)
	if err != nil {
		return nil, sleepOutput{}, fmt.Errorf("invalid bedtime: %w", err)
	}
	wakeTime, err := parseTimestamp(input.WakeTime)
	if err != nil {
		return nil, sleepOutput{}, fmt.Errorf("invalid wake time: %w", err)
	}

	source := input.Source
	if source == "" {
		source = "manual"
	}

	session := models.NewSleepSession(input.UserID, bedtime, wakeTime, source)
	session.TotalMinutes = input.TotalMinutes
	session.InBedMinutes = input.InBedMinutes
	if session.InBedMinutes == 0 {
		session.InBedMinutes = int(wakeTime.Sub(bedtime).Minutes())
	}
	session.DeepSleepMinutes = input.DeepSleepMinutes
	session.RemSleepMinutes = input.RemSleepMinutes
	session.LightSleepMinutes = input.LightSleepMinutes
	session.AwakeMinutes = input.AwakeMinutes
	if session.AwakeMinutes == 0 && session.InBedMinutes > session.TotalMinutes {
		session.AwakeMinutes = session.InBedMinutes - session.TotalMinutes
	}
	if input.HRVAvg > 0 {
		session.HRVAvg = &input.HRVAvg
	}
	if input.RestingHR > 0 {
		session.RestingHR = &input.RestingHR
	}

	stored, err := s.service.LogSleep(ctx, session)
	if err != nil {
		return nil, sleepOutput{}, fmt.Errorf("failed to log sleep: %w", err)
	}

	return nil, sleepOutput{
		SleepDate:  stored.SleepDate,
		SleepScore: *stored.SleepScore,
		Efficiency: *stored.Efficiency,
		Message:    fmt.Sprintf("Logged sleep for %s: score %d", stored.SleepDate, *stored.SleepScore),
	}, nil
}

func (s *Server) handleAddBloodWork(ctx context.Context, req *mcp.CallToolRequest, input addBloodWorkInput) (*mcp.CallToolResult, bloodWorkOutput, error) {
	bw := models.NewBloodWork(input.UserID, input.TestDate, input.Markers)
	if input.LabName != "" {
		bw.WithLabName(input.LabName)
	}

	stored, err := s.service.AddBloodWork(ctx, bw)
	if err != nil {
		return nil, bloodWorkOutput{}, fmt.Errorf("failed to add blood work: %w", err)
	}

	return nil, bloodWorkOutput{
		ID:       stored.ID.String()[:8],
		TestDate: stored.TestDate,
		Markers:  len(stored.Markers),
		Message:  fmt.Sprintf("Added panel for %s with %d markers (ID: %s)", stored.TestDate, len(stored.Markers), stored.ID.String()[:8]),
	}, nil
}

func (s *Server) handleGetBiologicalAge(ctx context.Context, req *mcp.CallToolRequest, input userInput) (*mcp.CallToolResult, *bioage.Result, error) {
	result, err := s.service.BiologicalAge(ctx, input.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute biological age: %w", err)
	}
	return nil, result, nil
}

func (s *Server) handleGetDailyScores(ctx context.Context, req *mcp.CallToolRequest, input getDailyScoresInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 14
	}

	scores, err := s.repo.ListDailyScores(ctx, input.UserID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list daily scores: %w", err)
	}

	if len(scores) == 0 {
		return nil, map[string]interface{}{"message": "No daily scores found."}, nil
	}

	return nil, scores, nil
}

func (s *Server) handleListMetrics(ctx context.Context, req *mcp.CallToolRequest, input listMetricsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var metricType *models.MetricType
	if input.MetricType != "" {
		if !models.IsValidMetricType(input.MetricType) {
			return nil, nil, fmt.Errorf("unknown metric type: %s", input.MetricType)
		}
		mt := models.MetricType(input.MetricType)
		metricType = &mt
	}

	metrics, err := s.repo.ListMetrics(ctx, input.UserID, metricType, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	if len(metrics) == 0 {
		return nil, map[string]interface{}{"message": "No metrics found."}, nil
	}

	return nil, metrics, nil
}

func (s *Server) handleSetBirthDate(ctx context.Context, req *mcp.CallToolRequest, input setBirthDateInput) (*mcp.CallToolResult, simpleOutput, error) {
	if _, err := time.Parse(time.DateOnly, input.BirthDate); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("invalid birth date %q: expected YYYY-MM-DD", input.BirthDate)
	}

	if err := s.repo.SetBirthDate(ctx, input.UserID, input.BirthDate); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to set birth date: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Set birth date for %s to %s", input.UserID, input.BirthDate),
	}, nil
}

func (s *Server) handleRunDedupScan(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, dedupOutput, error) {
	summary, err := s.service.DedupScan(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrScanInProgress) {
			return nil, dedupOutput{Message: "A dedup scan is already running."}, nil
		}
		return nil, dedupOutput{}, fmt.Errorf("failed to run dedup scan: %w", err)
	}

	return nil, dedupOutput{
		MetricsRemoved:  summary.Metrics,
		SleepRemoved:    summary.SleepSessions,
		WorkoutsRemoved: summary.Workouts,
		Message:         fmt.Sprintf("Removed %d duplicate rows", summary.Total()),
	}, nil
}

// parseTimestamp accepts RFC 3339 or a local "YYYY-MM-DD HH:MM" form.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04", value)
}
