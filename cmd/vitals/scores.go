// ABOUTME: CLI commands for daily composite scores.
// ABOUTME: Lists recent scores and recomputes a single day on demand.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	scoresUser  string
	scoresLimit int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "List daily composite scores",
	Long: `List recent daily sleep, recovery, strain, and readiness scores.

Sleep, recovery, and readiness are 0-100 and absent (shown as "-") on
days with no recorded sleep session. Strain is a continuous load
measure: 10.0-18.0 on workout days, 3.0-8.0 on rest days.

EXAMPLES:

  vitals scores --user alice
  vitals scores --user alice -n 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scores, err := repo.ListDailyScores(cmd.Context(), scoresUser, scoresLimit)
		if err != nil {
			return fmt.Errorf("failed to list scores: %w", err)
		}

		if len(scores) == 0 {
			fmt.Println("No daily scores found.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s  sleep  recovery  strain  readiness\n", padRight("date", 10))
		for _, ds := range scores {
			fmt.Printf("%s  %s  %s  %s  %s\n",
				faint.Sprint(ds.ScoreDate),
				padRight(fmtIntPtr(ds.SleepScore), 5),
				padRight(fmtIntPtr(ds.RecoveryScore), 8),
				padRight(fmtFloatPtr(ds.StrainScore), 6),
				fmtIntPtr(ds.ReadinessScore))
		}
		return nil
	},
}

var scoresRecomputeCmd = &cobra.Command{
	Use:   "recompute <date>",
	Short: "Recompute scores for one day",
	Long: `Recompute the daily composite scores for a single day from the
currently stored records. Recomputation on unchanged inputs is
deterministic and replaces the stored row with identical values.

EXAMPLES:

  vitals scores recompute 2025-03-01 --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := svc.RecomputeDay(cmd.Context(), scoresUser, args[0])
		if err != nil {
			return fmt.Errorf("failed to recompute: %w", err)
		}

		color.Green("✓ Recomputed %s", score.ScoreDate)
		fmt.Printf("  sleep %s  recovery %s  strain %s  readiness %s\n",
			fmtIntPtr(score.SleepScore), fmtIntPtr(score.RecoveryScore),
			fmtFloatPtr(score.StrainScore), fmtIntPtr(score.ReadinessScore))
		return nil
	},
}

func fmtIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func fmtFloatPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func init() {
	scoresCmd.PersistentFlags().StringVarP(&scoresUser, "user", "u", "", "user to query (required)")
	_ = scoresCmd.MarkPersistentFlagRequired("user")
	scoresCmd.Flags().IntVarP(&scoresLimit, "limit", "n", 14, "max number of results")
	scoresCmd.AddCommand(scoresRecomputeCmd)
	rootCmd.AddCommand(scoresCmd)
}
