// ABOUTME: MCP resource implementations for the vitals core.
// ABOUTME: Provides vitals://overview and vitals://export resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// vitals://overview - Record counts and latest score per user
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "vitals://overview",
		Name:        "Vitals Overview",
		Description: "Record counts and the most recent daily score per user",
		MIMEType:    "application/json",
	}, s.handleOverviewResource)

	// vitals://export - Full data export
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "vitals://export",
		Name:        "Full Data Export",
		Description: "All stored metrics, sleep sessions, workouts, scores, and blood work",
		MIMEType:    "application/json",
	}, s.handleExportResource)
}

// Resource handlers

func (s *Server) handleOverviewResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	export, err := s.repo.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	latestScores := make(map[string]interface{})
	for _, ds := range export.DailyScores {
		prev, ok := latestScores[ds.UserID].(map[string]interface{})
		if ok && prev["date"].(string) >= ds.ScoreDate {
			continue
		}
		latestScores[ds.UserID] = map[string]interface{}{
			"date":      ds.ScoreDate,
			"sleep":     ds.SleepScore,
			"recovery":  ds.RecoveryScore,
			"strain":    ds.StrainScore,
			"readiness": ds.ReadinessScore,
		}
	}

	result := map[string]interface{}{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"counts": map[string]int{
			"metrics":        len(export.Metrics),
			"sleep_sessions": len(export.SleepSessions),
			"workouts":       len(export.Workouts),
			"daily_scores":   len(export.DailyScores),
			"bloodwork":      len(export.BloodWork),
		},
		"latest_scores": latestScores,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "vitals://overview",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleExportResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	export, err := s.repo.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "vitals://export",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
