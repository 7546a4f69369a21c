// ABOUTME: Tests for the recommendation catalog.
package bioage

import (
	"sort"
	"testing"
)

func TestRecommendationsThreshold(t *testing.T) {
	recs := Recommendations(map[string]int{
		CategoryInflammation: 65,
		CategoryMetabolic:    70,
		CategoryOrgan:        100,
	})

	// Only the score strictly below the threshold fires.
	if len(recs) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d: %v", len(recs), recs)
	}
	if recs[0] != recommendationCatalog[CategoryInflammation] {
		t.Errorf("Unexpected recommendation: %q", recs[0])
	}
}

func TestRecommendationsSortedAndDeduped(t *testing.T) {
	recs := Recommendations(map[string]int{
		CategoryHematologic:  10,
		CategoryInflammation: 20,
		CategoryMetabolic:    30,
		CategoryOrgan:        40,
	})

	if len(recs) != 4 {
		t.Fatalf("Expected 4 recommendations, got %d", len(recs))
	}
	if !sort.StringsAreSorted([]string{
		CategoryHematologic, CategoryInflammation, CategoryMetabolic, CategoryOrgan,
	}) {
		t.Fatal("test assumption broken: categories not sorted")
	}
	// Order follows the sorted category names.
	if recs[0] != recommendationCatalog[CategoryHematologic] {
		t.Errorf("First recommendation = %q, want hematologic entry", recs[0])
	}

	seen := make(map[string]bool)
	for _, r := range recs {
		if seen[r] {
			t.Errorf("Duplicate recommendation: %q", r)
		}
		seen[r] = true
	}
}

func TestRecommendationsUnknownComponentIgnored(t *testing.T) {
	recs := Recommendations(map[string]int{"other": 10})
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations for unknown component, got %v", recs)
	}
}
