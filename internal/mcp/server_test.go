// ABOUTME: Tests for MCP server construction and handler plumbing.
package mcp

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/vitals/internal/ingest"
	"github.com/harperreed/vitals/internal/storage"
)

func setupMCP(t *testing.T) *Server {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "vitals.db"))
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	server, err := NewServer(ingest.NewService(db, log.New(io.Discard)), db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	server := setupMCP(t)

	if server.mcpServer == nil {
		t.Fatal("Expected underlying MCP server to be initialized")
	}
	if server.service == nil || server.repo == nil {
		t.Error("Expected service and repository to be wired")
	}
}

func TestHandleIngestPayload(t *testing.T) {
	server := setupMCP(t)

	payload := `{"source": "oura", "data": {"hrv": [{"value": 55, "timestamp": "2025-03-01T06:30:00Z"}]}}`
	_, out, err := server.handleIngestPayload(t.Context(), nil, ingestPayloadInput{
		UserID:  "alice",
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("handleIngestPayload failed: %v", err)
	}
	if out.Status != ingest.StatusSuccess {
		t.Errorf("Status = %q, want success", out.Status)
	}
	if out.MetricsProcessed != 1 {
		t.Errorf("MetricsProcessed = %d, want 1", out.MetricsProcessed)
	}
}

func TestHandleLogSleepDerivesMinutes(t *testing.T) {
	server := setupMCP(t)

	_, out, err := server.handleLogSleep(t.Context(), nil, logSleepInput{
		UserID:       "alice",
		Bedtime:      "2025-03-01T23:00:00Z",
		WakeTime:     "2025-03-02T07:00:00Z",
		TotalMinutes: 450,
		Source:       "manual",
	})
	if err != nil {
		t.Fatalf("handleLogSleep failed: %v", err)
	}
	if out.SleepDate != "2025-03-01" {
		t.Errorf("SleepDate = %q, want 2025-03-01", out.SleepDate)
	}
	if out.SleepScore == 0 {
		t.Error("Expected a computed sleep score")
	}
}

func TestHandleGetBiologicalAgeNoData(t *testing.T) {
	server := setupMCP(t)

	_, res, err := server.handleGetBiologicalAge(t.Context(), nil, userInput{UserID: "alice"})
	if err != nil {
		t.Fatalf("handleGetBiologicalAge failed: %v", err)
	}
	if res.CanCalculate {
		t.Error("Expected CanCalculate=false with no stored data")
	}
	if len(res.MissingMarkers) == 0 {
		t.Error("Expected missing markers to be reported")
	}
}

func TestHandleRunDedupScan(t *testing.T) {
	server := setupMCP(t)

	_, out, err := server.handleRunDedupScan(t.Context(), nil, struct{}{})
	if err != nil {
		t.Fatalf("handleRunDedupScan failed: %v", err)
	}
	if out.MetricsRemoved != 0 || out.SleepRemoved != 0 || out.WorkoutsRemoved != 0 {
		t.Errorf("Removed counts = %d/%d/%d, want all zero on a clean database",
			out.MetricsRemoved, out.SleepRemoved, out.WorkoutsRemoved)
	}
}
