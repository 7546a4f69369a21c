// ABOUTME: Daily composite score engine: sleep, recovery, strain, readiness.
// ABOUTME: Pure and deterministic; recomputation on unchanged inputs is identical.
package scoring

import (
	"math"

	"github.com/harperreed/vitals/internal/models"
)

// Strain bounds. Strain is a continuous load measure, not a percentage.
const (
	workoutStrainMin = 10.0
	workoutStrainMax = 18.0
	restStrainMin    = 3.0
	restStrainMax    = 8.0
)

// RecoveryBaseFunc models accumulated non-sleep recovery signal (HRV and
// resting-HR trend). It is a pluggable input: the engine's contract is the
// clamp-and-blend step, not the trend computation.
type RecoveryBaseFunc func(session *models.SleepSession, baseline Baseline) float64

// DefaultRecoveryBase derives the recovery base from the session's HRV
// against the personal baseline: 25 points at baseline, ±10 for deviation.
func DefaultRecoveryBase(session *models.SleepSession, baseline Baseline) float64 {
	base := 25.0
	if session != nil && session.HRVAvg != nil && baseline.AvgHRV > 0 {
		adj := (*session.HRVAvg - baseline.AvgHRV) * 0.5
		base += math.Max(-10, math.Min(10, adj))
	}
	return base
}

// DayInputs are the signals for one calendar day of one user.
type DayInputs struct {
	UserID   string
	Date     string               // YYYY-MM-DD
	Session  *models.SleepSession // nil when no sleep was recorded
	Workouts []*models.Workout
	Steps    float64 // whole-day step total, 0 when unknown
	Baseline Baseline
}

// Engine computes daily composite scores. The recovery-base function is
// injected at construction so the blend stays independently testable.
type Engine struct {
	recoveryBase RecoveryBaseFunc
}

// NewEngine creates an Engine with the given recovery-base function,
// defaulting to DefaultRecoveryBase when nil.
func NewEngine(fn RecoveryBaseFunc) *Engine {
	if fn == nil {
		fn = DefaultRecoveryBase
	}
	return &Engine{recoveryBase: fn}
}

// Compute derives the DailyScore for one day. A missing sleep session
// yields nil sleep, recovery, and readiness scores; strain is always
// computed since it has a rest-day branch.
func (e *Engine) Compute(in DayInputs) *models.DailyScore {
	score := models.NewDailyScore(in.UserID, in.Date)

	if in.Session != nil {
		sleepScore, bd := ScoreSleep(in.Session)
		score.SleepScore = &sleepScore
		score.Components["duration"] = bd.Duration
		score.Components["efficiency"] = bd.Efficiency
		score.Components["stages"] = bd.Stages
		score.Components["efficiency_pct"] = round1(bd.EfficiencyPct)

		base := e.recoveryBase(in.Session, in.Baseline)
		score.Components["recovery_base"] = round1(base)
		recovery := clampInt(int(math.Round(float64(sleepScore)*0.6+base)), 0, 100)
		score.RecoveryScore = &recovery

		readiness := clampInt(int(math.Round(float64(recovery)*0.5+float64(sleepScore)*0.5)), 0, 100)
		score.ReadinessScore = &readiness

		dev := DeviationFromBaseline(in.Session, in.Baseline)
		if dev.HRVDelta != nil {
			score.Components["hrv_delta"] = round1(*dev.HRVDelta)
		}
	}

	strain := e.strain(in)
	score.StrainScore = &strain
	return score
}

// strain computes the continuous day-load measure, one decimal place.
// Workout days land in [10.0, 18.0], rest days in [3.0, 8.0].
func (e *Engine) strain(in DayInputs) float64 {
	if len(in.Workouts) == 0 {
		v := restStrainMin + math.Min(restStrainMax-restStrainMin, in.Steps/2400.0)
		return round1(v)
	}

	var duration, calories, hrAvg float64
	for _, w := range in.Workouts {
		duration += float64(w.DurationMinutes)
		if w.CaloriesBurned != nil {
			calories += *w.CaloriesBurned
		}
		if w.HeartRateAvg != nil && *w.HeartRateAvg > hrAvg {
			hrAvg = *w.HeartRateAvg
		}
	}

	load := math.Min(4.0, duration/30.0) + math.Min(2.5, calories/400.0)
	if hrAvg > 100 {
		load += math.Min(1.5, (hrAvg-100)/40.0*1.5)
	}
	v := workoutStrainMin + math.Min(workoutStrainMax-workoutStrainMin, load)
	return round1(v)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
