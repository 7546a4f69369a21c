// ABOUTME: Recommendation catalog keyed by component sub-score.
// ABOUTME: One fixed string per component below threshold; never duplicated.
package bioage

import "sort"

// RecommendationThreshold is the component score below which its
// recommendation fires.
const RecommendationThreshold = 70

// recommendationCatalog maps each component to its fixed recommendation.
var recommendationCatalog = map[string]string{
	CategoryInflammation: "Inflammation markers are elevated. Prioritize sleep, reduce processed foods, and consider discussing anti-inflammatory strategies with your physician.",
	CategoryMetabolic:    "Metabolic markers are off target. Review carbohydrate intake, add regular aerobic exercise, and retest fasting glucose.",
	CategoryOrgan:        "Organ-function markers are outside the optimal band. Stay hydrated, moderate alcohol, and have kidney and liver panels reviewed.",
	CategoryHematologic:  "Blood-cell markers deviate from optimal. Check iron, B12, and folate status with your physician.",
}

// Recommendations returns one catalog entry per component whose score is
// below the threshold, in stable (sorted) order with no duplicates.
func Recommendations(componentScores map[string]int) []string {
	var components []string
	for component, score := range componentScores {
		if score < RecommendationThreshold {
			if _, ok := recommendationCatalog[component]; ok {
				components = append(components, component)
			}
		}
	}
	sort.Strings(components)

	recs := make([]string, 0, len(components))
	for _, c := range components {
		recs = append(recs, recommendationCatalog[c])
	}
	return recs
}
