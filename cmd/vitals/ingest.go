// ABOUTME: CLI command for ingesting raw device payloads.
// ABOUTME: Reads JSON from a file or stdin and reports the ingest result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/ingest"
	"github.com/spf13/cobra"
)

var ingestUser string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a raw device payload",
	Long: `Ingest a raw JSON payload from a health device or aggregator.

The payload carries a source name and a data object with metric, sleep,
and workout collections:

  {
    "source": "oura",
    "data": {
      "metrics": {
        "heart_rate": [{"value": 62, "timestamp": "2025-03-01T08:00:00Z"}],
        "steps": [{"value": 9214, "date": "2025-03-01"}]
      },
      "sleep": [{"bedtime_start": "...", "bedtime_end": "...", ...}],
      "workouts": [{"activity": "run", "duration": 1800, ...}]
    }
  }

Ingestion is idempotent: re-running the same file stores nothing twice.
Per-record failures are reported but do not abort the rest of the payload.
Daily scores for every affected day are recomputed before the command
returns.

EXAMPLES:

  vitals ingest export.json --user alice
  cat export.json | vitals ingest - --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			raw []byte
			err error
		)
		if args[0] == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		result, err := svc.Ingest(cmd.Context(), ingestUser, raw)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}

		switch result.Status {
		case ingest.StatusSuccess:
			color.Green("✓ Ingested payload (%s)", result.Status)
		case ingest.StatusPartial:
			color.Yellow("⚠ Ingested payload (%s)", result.Status)
		default:
			color.Red("✗ Ingest %s", result.Status)
		}

		fmt.Printf("  metrics %d  sleep %d  workouts %d  duplicates %d\n",
			result.MetricsProcessed, result.SleepSessionsProcessed,
			result.WorkoutsProcessed, result.Duplicates)

		for _, e := range result.Errors {
			fmt.Printf("  %s\n", color.New(color.Faint).Sprint(e.String()))
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestUser, "user", "u", "", "user the payload belongs to (required)")
	_ = ingestCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(ingestCmd)
}
