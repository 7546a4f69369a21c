// ABOUTME: CLI command for the administrative duplicate cleanup scan.
// ABOUTME: Removes natural-key duplicate rows, keeping the earliest.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/spf13/cobra"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Remove natural-key duplicate rows",
	Long: `Scan all record tables and remove rows that share a natural key,
keeping the earliest-created row.

Normal ingestion already stores nothing twice, so a scan usually removes
zero rows. It exists to clean up data written before deduplication or
imported from other tools. Only one scan runs at a time.

EXAMPLES:

  vitals dedup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := svc.DedupScan(cmd.Context())
		if err != nil {
			if errors.Is(err, storage.ErrScanInProgress) {
				return fmt.Errorf("a dedup scan is already running")
			}
			return fmt.Errorf("dedup scan failed: %w", err)
		}

		color.Green("✓ Dedup scan complete")
		fmt.Printf("  removed %d rows (metrics %d, sleep %d, workouts %d)\n",
			summary.Total(), summary.Metrics, summary.SleepSessions, summary.Workouts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dedupCmd)
}
