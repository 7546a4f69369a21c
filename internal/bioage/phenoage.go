// ABOUTME: PhenoAge-style biological age engine over a blood marker panel.
// ABOUTME: Levine (2018) linear/log-linear combination plus component sub-scores.
package bioage

import (
	"fmt"
	"math"
	"strings"

	"github.com/harperreed/vitals/internal/models"
)

// Levine PhenoAge coefficients. The combination operates on albumin g/L,
// creatinine umol/L, glucose mmol/L, ln(CRP mg/dL), lymphocyte %, MCV fL,
// RDW %, ALP U/L, WBC 10^3 cells/uL, and chronological age in years.
const (
	coefIntercept  = -19.907
	coefAlbumin    = -0.0336
	coefCreatinine = 0.0095
	coefGlucose    = 0.1953
	coefLnCRP      = 0.0954
	coefLymphocyte = -0.0120
	coefMCV        = 0.0268
	coefRDW        = 0.3306
	coefALP        = 0.00188
	coefWBC        = 0.0554
	coefAge        = 0.0804

	gompertzLambda = 0.0076927
	gompertzTime   = -1.51714

	phenoAgeOffset = 141.50225
	phenoAgeSlope  = 0.09165
	phenoAgeLogFac = -0.00553
)

// minCRP avoids ln(0) for undetectable CRP results.
const minCRP = 0.01

// Result is the outcome of a biological age computation.
type Result struct {
	BiologicalAge   *float64       `json:"biological_age,omitempty"`
	AgeDifference   *float64       `json:"age_difference,omitempty"`
	CanCalculate    bool           `json:"can_calculate"`
	ComponentScores map[string]int `json:"component_scores"`
	ExcludedMarkers []string       `json:"excluded_markers,omitempty"`
	MissingMarkers  []string       `json:"missing_markers,omitempty"`
	Recommendations []string       `json:"recommendations"`
}

// Engine computes biological age against an injected reference table.
type Engine struct {
	table ReferenceTable
}

// NewEngine creates an Engine, defaulting to the built-in catalog when
// table is nil.
func NewEngine(table ReferenceTable) *Engine {
	if table == nil {
		table = DefaultReferenceTable()
	}
	return &Engine{table: table}
}

// requiredMarkers is the minimum marker set for a PhenoAge computation.
var requiredMarkers = []string{
	MarkerAlbumin, MarkerCreatinine, MarkerGlucose, MarkerCRP,
	MarkerLymphocyte, MarkerMCV, MarkerRDW, MarkerALP, MarkerWBC,
}

// Compute derives a biological age from chronological age and a marker
// panel. CanCalculate is false when the age is unknown (<= 0) or the
// required marker set is incomplete after excluding out-of-range values;
// in that case BiologicalAge is absent, not a guess.
func (e *Engine) Compute(chronologicalAge float64, markers []models.Marker) Result {
	res := Result{ComponentScores: make(map[string]int)}

	values, excluded := e.normalize(markers)
	res.ExcludedMarkers = excluded
	res.ComponentScores = e.componentScores(values)
	res.Recommendations = Recommendations(res.ComponentScores)

	if chronologicalAge <= 0 {
		return res
	}
	for _, name := range requiredMarkers {
		if _, ok := values[name]; !ok {
			res.MissingMarkers = append(res.MissingMarkers, name)
		}
	}
	if len(res.MissingMarkers) > 0 {
		return res
	}

	crp := math.Max(values[MarkerCRP], minCRP)
	xb := coefIntercept +
		coefAlbumin*values[MarkerAlbumin] +
		coefCreatinine*values[MarkerCreatinine] +
		coefGlucose*values[MarkerGlucose] +
		coefLnCRP*math.Log(crp) +
		coefLymphocyte*values[MarkerLymphocyte] +
		coefMCV*values[MarkerMCV] +
		coefRDW*values[MarkerRDW] +
		coefALP*values[MarkerALP] +
		coefWBC*values[MarkerWBC] +
		coefAge*chronologicalAge

	// Ten-year mortality risk, then mapped back onto an age scale.
	mortality := 1 - math.Exp(gompertzTime*math.Exp(xb)/gompertzLambda)
	if mortality <= 0 || mortality >= 1 {
		return res
	}
	phenoAge := phenoAgeOffset + math.Log(phenoAgeLogFac*math.Log(1-mortality))/phenoAgeSlope

	bioAge := math.Round(phenoAge*10) / 10
	diff := math.Round((bioAge-chronologicalAge)*10) / 10
	res.BiologicalAge = &bioAge
	res.AgeDifference = &diff
	res.CanCalculate = true
	return res
}

// normalize resolves names, converts units, and drops values outside the
// plausible physiological range, flagging them instead of including them.
func (e *Engine) normalize(markers []models.Marker) (map[string]float64, []string) {
	values := make(map[string]float64)
	var excluded []string

	for _, m := range markers {
		name := CanonicalMarkerName(m.Name)
		ref, ok := e.table[name]
		if !ok {
			continue // category "other"; no part in the formula
		}
		value, err := convertUnit(name, m.Value, m.Unit)
		if err != nil {
			excluded = append(excluded, fmt.Sprintf("%s (%v)", name, err))
			continue
		}
		if value < ref.PlausibleMin || value > ref.PlausibleMax {
			excluded = append(excluded, fmt.Sprintf("%s (%.4g %s outside %.4g–%.4g)", name, value, ref.Unit, ref.PlausibleMin, ref.PlausibleMax))
			continue
		}
		if _, seen := values[name]; !seen {
			values[name] = value
		}
	}
	return values, excluded
}

// componentScores scores each category 0-100 from how far its markers sit
// outside their optimal bands.
func (e *Engine) componentScores(values map[string]float64) map[string]int {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for name, value := range values {
		ref := e.table[name]
		sums[ref.Category] += markerScore(value, ref)
		counts[ref.Category]++
	}

	scores := make(map[string]int)
	for category, sum := range sums {
		scores[category] = int(math.Round(sum / float64(counts[category])))
	}
	return scores
}

// markerScore is 100 inside the optimal band and decays linearly with
// relative distance outside it, bottoming out at 0.
func markerScore(value float64, ref MarkerRef) float64 {
	if value >= ref.OptimalMin && value <= ref.OptimalMax {
		return 100
	}
	span := ref.OptimalMax - ref.OptimalMin
	if span <= 0 {
		span = 1
	}
	var dist float64
	if value < ref.OptimalMin {
		dist = (ref.OptimalMin - value) / span
	} else {
		dist = (value - ref.OptimalMax) / span
	}
	return math.Max(0, 100-dist*50)
}

// convertUnit converts a reported value into the unit the formula uses.
func convertUnit(name string, value float64, unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch name {
	case MarkerAlbumin:
		switch u {
		case "g/l":
			return value, nil
		case "g/dl":
			return value * 10, nil
		}
	case MarkerCreatinine:
		switch u {
		case "umol/l", "µmol/l":
			return value, nil
		case "mg/dl":
			return value * 88.4, nil
		}
	case MarkerGlucose:
		switch u {
		case "mmol/l":
			return value, nil
		case "mg/dl":
			return value / 18.016, nil
		}
	case MarkerCRP:
		switch u {
		case "mg/dl":
			return value, nil
		case "mg/l":
			return value / 10, nil
		}
	case MarkerLymphocyte, MarkerRDW:
		if u == "%" {
			return value, nil
		}
	case MarkerMCV:
		if u == "fl" {
			return value, nil
		}
	case MarkerALP:
		switch u {
		case "u/l", "iu/l":
			return value, nil
		}
	case MarkerWBC:
		switch u {
		case "10^3/ul", "k/ul", "x10^3/ul", "10^9/l", "x10^9/l":
			return value, nil
		}
	}
	return 0, fmt.Errorf("unsupported unit %q", unit)
}
