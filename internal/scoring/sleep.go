// ABOUTME: Sleep score engine: weighted duration/efficiency/stage formula.
// ABOUTME: Baseline deviation is a separate refinement, never folded into the score.
package scoring

import (
	"math"

	"github.com/harperreed/vitals/internal/models"
)

// Weights for the sleep score components. They must sum to 1.0.
const (
	WeightDuration   = 0.35
	WeightEfficiency = 0.35
	WeightStages     = 0.30
)

// ReferenceSleepMinutes is the 100-point duration reference (8 hours).
const ReferenceSleepMinutes = 480.0

// Stage-composition thresholds as fractions of total sleep.
const (
	deepSleepTarget = 0.15
	remSleepTarget  = 0.20
)

// SleepBreakdown reports the per-component values behind a sleep score.
type SleepBreakdown struct {
	Duration   float64 `json:"duration"`
	Efficiency float64 `json:"efficiency"`
	Stages     float64 `json:"stages"`

	EfficiencyPct float64 `json:"efficiency_pct"`
	DeepFraction  float64 `json:"deep_fraction"`
	RemFraction   float64 `json:"rem_fraction"`
}

// ScoreSleep scores a single session against absolute targets.
// The result is the weighted sum of the three components, rounded to the
// nearest integer and clamped to [0, 100].
func ScoreSleep(s *models.SleepSession) (int, SleepBreakdown) {
	bd := SleepBreakdown{}

	// Duration: linear up to the 8-hour reference, then saturated.
	bd.Duration = math.Min(100, float64(s.TotalMinutes)/ReferenceSleepMinutes*100)

	// Efficiency: tiered.
	bd.EfficiencyPct = s.ComputeEfficiency()
	switch {
	case bd.EfficiencyPct >= 85:
		bd.Efficiency = 95
	case bd.EfficiencyPct >= 75:
		bd.Efficiency = 80
	default:
		bd.Efficiency = 65
	}

	// Stage composition: deep and REM fractions both at target or not.
	if s.TotalMinutes > 0 {
		bd.DeepFraction = float64(s.DeepSleepMinutes) / float64(s.TotalMinutes)
		bd.RemFraction = float64(s.RemSleepMinutes) / float64(s.TotalMinutes)
	}
	if bd.DeepFraction >= deepSleepTarget && bd.RemFraction >= remSleepTarget {
		bd.Stages = 90
	} else {
		bd.Stages = 75
	}

	total := bd.Duration*WeightDuration + bd.Efficiency*WeightEfficiency + bd.Stages*WeightStages
	return clampInt(int(math.Round(total)), 0, 100), bd
}

// BaselineDeviation holds supplementary indicators of a session relative
// to the user's personal baseline. Display-only: it does not alter the
// persisted score.
type BaselineDeviation struct {
	TotalMinutesDelta float64  `json:"total_minutes_delta"`
	EfficiencyDelta   float64  `json:"efficiency_delta"`
	HRVDelta          *float64 `json:"hrv_delta,omitempty"`
	SampleSize        int      `json:"sample_size"`
}

// DeviationFromBaseline compares a session with a baseline.
func DeviationFromBaseline(s *models.SleepSession, b Baseline) BaselineDeviation {
	d := BaselineDeviation{
		TotalMinutesDelta: float64(s.TotalMinutes) - b.AvgTotalMinutes,
		EfficiencyDelta:   s.ComputeEfficiency() - b.AvgEfficiency,
		SampleSize:        b.SampleSize,
	}
	if s.HRVAvg != nil {
		delta := *s.HRVAvg - b.AvgHRV
		d.HRVDelta = &delta
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
