// ABOUTME: CLI command for biological age calculation.
// ABOUTME: Prints PhenoAge result, component scores, and recommendations.
package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var bioageUser string

var bioageCmd = &cobra.Command{
	Use:   "bioage",
	Short: "Compute biological age from blood work",
	Long: `Compute biological age from the most recent blood work panel.

Requires a stored birth date ('vitals profile birthdate') and a panel
with the full marker set: albumin, creatinine, glucose, CRP, lymphocyte
percentage, MCV, RDW, alkaline phosphatase, and WBC. When markers are
missing or outside plausible physiological ranges, the calculation is
withheld and the gaps are listed instead of guessed around.

Component scores (inflammation, metabolic, organ, hematologic) and
recommendations are reported from whatever markers are present.

EXAMPLES:

  vitals bioage --user alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := svc.BiologicalAge(cmd.Context(), bioageUser)
		if err != nil {
			return fmt.Errorf("failed to compute biological age: %w", err)
		}

		faint := color.New(color.Faint)
		if result.CanCalculate {
			color.Green("✓ Biological age: %.1f years", *result.BiologicalAge)
			diff := *result.AgeDifference
			switch {
			case diff < 0:
				fmt.Printf("  %.1f years younger than chronological age\n", -diff)
			case diff > 0:
				fmt.Printf("  %.1f years older than chronological age\n", diff)
			default:
				fmt.Println("  matches chronological age")
			}
		} else {
			color.Yellow("⚠ Not enough data to calculate biological age")
			for _, m := range result.MissingMarkers {
				fmt.Printf("  missing: %s\n", m)
			}
		}

		for _, m := range result.ExcludedMarkers {
			fmt.Printf("  excluded: %s\n", faint.Sprint(m))
		}

		if len(result.ComponentScores) > 0 {
			fmt.Println("\nComponent scores:")
			categories := make([]string, 0, len(result.ComponentScores))
			for c := range result.ComponentScores {
				categories = append(categories, c)
			}
			sort.Strings(categories)
			for _, c := range categories {
				fmt.Printf("  %s %d\n", padRight(c, 14), result.ComponentScores[c])
			}
		}

		if len(result.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range result.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}
		return nil
	},
}

func init() {
	bioageCmd.Flags().StringVarP(&bioageUser, "user", "u", "", "user to compute for (required)")
	_ = bioageCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(bioageCmd)
}
