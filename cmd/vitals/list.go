// ABOUTME: CLI command for listing stored health metrics.
// ABOUTME: Supports filtering by type and limiting results.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/spf13/cobra"
)

var (
	listUser  string
	listType  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List health metrics",
	Long: `List recent canonical health metrics for a user.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  TYPE  VALUE  UNIT  SOURCE

FILTERING:

  Use --type to filter by metric type:
    heart_rate, resting_hr, hrv, respiratory_rate, spo2, body_temp,
    steps, active_calories, distance, weight, body_fat

  Whole-day aggregates (like a daily step total) are anchored at 12:00
  UTC on their day.

EXAMPLES:

  vitals list --user alice                # Show last 20 metrics
  vitals list --user alice --type hrv     # Show only HRV entries
  vitals list --user alice -t steps -n 50 # Show last 50 step entries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var metricType *models.MetricType
		if listType != "" {
			if !models.IsValidMetricType(listType) {
				return fmt.Errorf("unknown metric type: %s", listType)
			}
			mt := models.MetricType(listType)
			metricType = &mt
		}

		metrics, err := repo.ListMetrics(cmd.Context(), listUser, metricType, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list metrics: %w", err)
		}

		if len(metrics) == 0 {
			fmt.Println("No metrics found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, m := range metrics {
			fmt.Printf("%s %s %s %.2f %s %s\n",
				faint.Sprint(m.ID.String()[:8]),
				faint.Sprint(m.RecordedAt.Format("2006-01-02 15:04")),
				padRight(string(m.MetricType), 16),
				m.Value,
				m.Unit,
				faint.Sprint(m.Source))
		}

		return nil
	},
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "user to query (required)")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by metric type")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	_ = listCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(listCmd)
}
