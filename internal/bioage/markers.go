// ABOUTME: Biomarker reference table: categories, plausible ranges, units.
// ABOUTME: Immutable lookup injected into the engine; unknown names map to "other".
package bioage

import "strings"

// Marker categories used for component sub-scores.
const (
	CategoryInflammation = "inflammation"
	CategoryMetabolic    = "metabolic"
	CategoryOrgan        = "organ"
	CategoryHematologic  = "hematologic"
	CategoryOther        = "other"
)

// Canonical marker names for the PhenoAge panel.
const (
	MarkerAlbumin    = "albumin"
	MarkerCreatinine = "creatinine"
	MarkerGlucose    = "glucose"
	MarkerCRP        = "crp"
	MarkerLymphocyte = "lymphocyte_percent"
	MarkerMCV        = "mcv"
	MarkerRDW        = "rdw"
	MarkerALP        = "alkaline_phosphatase"
	MarkerWBC        = "wbc"
)

// MarkerRef describes a marker: its category, the unit the engine
// computes in, and the plausible physiological range (in that unit)
// outside which a value is excluded and flagged.
type MarkerRef struct {
	Category     string
	Unit         string
	PlausibleMin float64
	PlausibleMax float64
	// Optimal band for component sub-scoring.
	OptimalMin float64
	OptimalMax float64
}

// ReferenceTable maps canonical marker names to their reference data.
type ReferenceTable map[string]MarkerRef

// DefaultReferenceTable returns the built-in biomarker catalog.
// Units are the ones the PhenoAge combination is defined over.
func DefaultReferenceTable() ReferenceTable {
	return ReferenceTable{
		MarkerAlbumin:    {Category: CategoryOrgan, Unit: "g/L", PlausibleMin: 20, PlausibleMax: 60, OptimalMin: 40, OptimalMax: 50},
		MarkerCreatinine: {Category: CategoryOrgan, Unit: "umol/L", PlausibleMin: 20, PlausibleMax: 400, OptimalMin: 60, OptimalMax: 110},
		MarkerGlucose:    {Category: CategoryMetabolic, Unit: "mmol/L", PlausibleMin: 2, PlausibleMax: 30, OptimalMin: 3.9, OptimalMax: 5.6},
		MarkerCRP:        {Category: CategoryInflammation, Unit: "mg/dL", PlausibleMin: 0, PlausibleMax: 30, OptimalMin: 0, OptimalMax: 0.1},
		MarkerLymphocyte: {Category: CategoryHematologic, Unit: "%", PlausibleMin: 1, PlausibleMax: 80, OptimalMin: 20, OptimalMax: 45},
		MarkerMCV:        {Category: CategoryHematologic, Unit: "fL", PlausibleMin: 50, PlausibleMax: 130, OptimalMin: 80, OptimalMax: 96},
		MarkerRDW:        {Category: CategoryHematologic, Unit: "%", PlausibleMin: 8, PlausibleMax: 30, OptimalMin: 11.5, OptimalMax: 14.5},
		MarkerALP:        {Category: CategoryOrgan, Unit: "U/L", PlausibleMin: 10, PlausibleMax: 500, OptimalMin: 40, OptimalMax: 120},
		MarkerWBC:        {Category: CategoryInflammation, Unit: "10^3/uL", PlausibleMin: 0.5, PlausibleMax: 50, OptimalMin: 4, OptimalMax: 10},
	}
}

// markerAliases maps common lab report names to canonical marker names.
var markerAliases = map[string]string{
	"albumin":                        MarkerAlbumin,
	"serum albumin":                  MarkerAlbumin,
	"creatinine":                     MarkerCreatinine,
	"serum creatinine":               MarkerCreatinine,
	"glucose":                        MarkerGlucose,
	"fasting glucose":                MarkerGlucose,
	"blood glucose":                  MarkerGlucose,
	"crp":                            MarkerCRP,
	"c-reactive protein":             MarkerCRP,
	"hs-crp":                         MarkerCRP,
	"lymphocyte_percent":             MarkerLymphocyte,
	"lymphocytes":                    MarkerLymphocyte,
	"lymphocyte %":                   MarkerLymphocyte,
	"lymph %":                        MarkerLymphocyte,
	"mcv":                            MarkerMCV,
	"mean corpuscular volume":        MarkerMCV,
	"rdw":                            MarkerRDW,
	"red cell distribution width":    MarkerRDW,
	"alkaline_phosphatase":           MarkerALP,
	"alkaline phosphatase":           MarkerALP,
	"alp":                            MarkerALP,
	"wbc":                            MarkerWBC,
	"white blood cells":              MarkerWBC,
	"white blood cell count":         MarkerWBC,
	"leukocytes":                     MarkerWBC,
}

// CanonicalMarkerName normalizes a lab report marker name. Unknown names
// are returned lowercased so callers can categorize them as "other".
func CanonicalMarkerName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := markerAliases[key]; ok {
		return canonical
	}
	return key
}

// CategoryFor returns the category for a marker name, defaulting to
// "other" for names outside the catalog.
func (t ReferenceTable) CategoryFor(name string) string {
	if ref, ok := t[CanonicalMarkerName(name)]; ok {
		return ref.Category
	}
	return CategoryOther
}
