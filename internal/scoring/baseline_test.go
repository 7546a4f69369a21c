// ABOUTME: Tests for the personal baseline calculator.
// ABOUTME: Covers population fallbacks, averaging, and window truncation.
package scoring

import (
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

func historySession(total, inBed int, hrv *float64) *models.SleepSession {
	bedtime := time.Date(2025, 2, 1, 23, 0, 0, 0, time.UTC)
	s := models.NewSleepSession("alice", bedtime, bedtime.Add(8*time.Hour), "test")
	s.TotalMinutes = total
	s.InBedMinutes = inBed
	s.HRVAvg = hrv
	return s
}

func TestComputeBaselineEmptyHistory(t *testing.T) {
	b := ComputeBaseline(nil)

	if b.AvgTotalMinutes != FallbackTotalMinutes {
		t.Errorf("AvgTotalMinutes = %v, want %v", b.AvgTotalMinutes, FallbackTotalMinutes)
	}
	if b.AvgEfficiency != FallbackEfficiency {
		t.Errorf("AvgEfficiency = %v, want %v", b.AvgEfficiency, FallbackEfficiency)
	}
	if b.AvgHRV != FallbackHRV {
		t.Errorf("AvgHRV = %v, want %v", b.AvgHRV, FallbackHRV)
	}
	if b.SampleSize != 0 {
		t.Errorf("SampleSize = %d, want 0", b.SampleSize)
	}
}

func TestComputeBaselineAverages(t *testing.T) {
	hrv1, hrv2 := 48.0, 56.0
	history := []*models.SleepSession{
		historySession(420, 480, &hrv1),
		historySession(460, 480, &hrv2),
	}

	b := ComputeBaseline(history)

	if b.AvgTotalMinutes != 440 {
		t.Errorf("AvgTotalMinutes = %v, want 440", b.AvgTotalMinutes)
	}
	if b.AvgHRV != 52 {
		t.Errorf("AvgHRV = %v, want 52", b.AvgHRV)
	}
	if b.SampleSize != 2 {
		t.Errorf("SampleSize = %d, want 2", b.SampleSize)
	}
}

func TestComputeBaselinePerFieldFallback(t *testing.T) {
	// No session carries HRV: that field alone falls back.
	history := []*models.SleepSession{
		historySession(420, 480, nil),
		historySession(440, 480, nil),
	}

	b := ComputeBaseline(history)

	if b.AvgHRV != FallbackHRV {
		t.Errorf("AvgHRV = %v, want fallback %v", b.AvgHRV, FallbackHRV)
	}
	if b.AvgTotalMinutes != 430 {
		t.Errorf("AvgTotalMinutes = %v, want 430", b.AvgTotalMinutes)
	}
}

func TestComputeBaselineWindowTruncation(t *testing.T) {
	// 20 sessions, the first BaselineWindow of which have total 400;
	// the rest have total 480 and must be ignored.
	var history []*models.SleepSession
	for i := 0; i < 20; i++ {
		total := 400
		if i >= BaselineWindow {
			total = 480
		}
		history = append(history, historySession(total, 500, nil))
	}

	b := ComputeBaseline(history)

	if b.SampleSize != BaselineWindow {
		t.Errorf("SampleSize = %d, want %d", b.SampleSize, BaselineWindow)
	}
	if b.AvgTotalMinutes != 400 {
		t.Errorf("AvgTotalMinutes = %v, want 400", b.AvgTotalMinutes)
	}
}
