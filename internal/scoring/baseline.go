// ABOUTME: Personal baseline calculator over trailing sleep history.
// ABOUTME: Ephemeral; recomputed per scoring call, never persisted.
package scoring

import "github.com/harperreed/vitals/internal/models"

// BaselineWindow is the maximum number of trailing sessions considered.
const BaselineWindow = 14

// Population-average fallbacks used when a user has no history yet, so
// first-time users still get scored.
const (
	FallbackTotalMinutes = 420.0
	FallbackEfficiency   = 85.0
	FallbackHRV          = 50.0
)

// Baseline is a user's rolling physiological baseline.
type Baseline struct {
	AvgTotalMinutes float64
	AvgEfficiency   float64
	AvgHRV          float64
	SampleSize      int
}

// PopulationBaseline returns the documented fallback for users with no
// sleep history.
func PopulationBaseline() Baseline {
	return Baseline{
		AvgTotalMinutes: FallbackTotalMinutes,
		AvgEfficiency:   FallbackEfficiency,
		AvgHRV:          FallbackHRV,
		SampleSize:      0,
	}
}

// ComputeBaseline derives a baseline from recent sleep history, most
// recent first. At most BaselineWindow sessions are used. A field with no
// non-null values across the history falls back to its population default.
func ComputeBaseline(history []*models.SleepSession) Baseline {
	if len(history) == 0 {
		return PopulationBaseline()
	}
	if len(history) > BaselineWindow {
		history = history[:BaselineWindow]
	}

	b := Baseline{SampleSize: len(history)}

	var totalSum, effSum float64
	var effCount int
	var hrvSum float64
	var hrvCount int
	for _, s := range history {
		totalSum += float64(s.TotalMinutes)
		if s.Efficiency != nil {
			effSum += *s.Efficiency
			effCount++
		} else if s.InBedMinutes > 0 {
			effSum += s.ComputeEfficiency()
			effCount++
		}
		if s.HRVAvg != nil {
			hrvSum += *s.HRVAvg
			hrvCount++
		}
	}

	b.AvgTotalMinutes = totalSum / float64(len(history))
	if effCount > 0 {
		b.AvgEfficiency = effSum / float64(effCount)
	} else {
		b.AvgEfficiency = FallbackEfficiency
	}
	if hrvCount > 0 {
		b.AvgHRV = hrvSum / float64(hrvCount)
	} else {
		b.AvgHRV = FallbackHRV
	}
	return b
}
