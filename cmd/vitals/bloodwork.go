// ABOUTME: CLI commands for blood work panels.
// ABOUTME: Uploads panels from JSON files and lists stored history.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/spf13/cobra"
)

var (
	bloodworkUser  string
	bloodworkLimit int
)

var bloodworkCmd = &cobra.Command{
	Use:     "bloodwork",
	Aliases: []string{"bw"},
	Short:   "Manage blood work panels",
	Long: `Upload and list blood work panels.

Panels are append-only history; the most recent panel by test date is
used for biological age calculation.`,
}

// panelFile is the JSON shape accepted by 'bloodwork add'.
type panelFile struct {
	TestDate string          `json:"test_date"`
	LabName  string          `json:"lab_name,omitempty"`
	Markers  []models.Marker `json:"markers"`
}

var bloodworkAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Upload a blood work panel from JSON",
	Long: `Upload a blood work panel from a JSON file:

  {
    "test_date": "2025-02-10",
    "lab_name": "Quest",
    "markers": [
      {"name": "albumin", "value": 4.5, "unit": "g/dL"},
      {"name": "crp", "value": 0.8, "unit": "mg/L"},
      {"name": "glucose", "value": 92, "unit": "mg/dL"}
    ]
  }

Marker names are matched case-insensitively against common lab report
aliases; unknown markers are stored with category "other".

EXAMPLES:

  vitals bloodwork add panel.json --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var panel panelFile
		if err := json.Unmarshal(data, &panel); err != nil {
			return fmt.Errorf("invalid panel JSON: %w", err)
		}

		bw := models.NewBloodWork(bloodworkUser, panel.TestDate, panel.Markers)
		if panel.LabName != "" {
			bw.WithLabName(panel.LabName)
		}

		stored, err := svc.AddBloodWork(cmd.Context(), bw)
		if err != nil {
			return fmt.Errorf("failed to add blood work: %w", err)
		}

		color.Green("✓ Added panel for %s", stored.TestDate)
		fmt.Printf("  %s %d markers\n",
			color.New(color.Faint).Sprint(stored.ID.String()[:8]),
			len(stored.Markers))
		return nil
	},
}

var bloodworkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored blood work panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		panels, err := repo.ListBloodWork(cmd.Context(), bloodworkUser, bloodworkLimit)
		if err != nil {
			return fmt.Errorf("failed to list blood work: %w", err)
		}

		if len(panels) == 0 {
			fmt.Println("No blood work found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, bw := range panels {
			lab := ""
			if bw.LabName != nil && *bw.LabName != "" {
				lab = faint.Sprintf(" (%s)", truncate(*bw.LabName, 30))
			}
			fmt.Printf("%s %s %d markers%s\n",
				faint.Sprint(bw.ID.String()[:8]),
				bw.TestDate, len(bw.Markers), lab)
		}
		return nil
	},
}

func init() {
	bloodworkCmd.PersistentFlags().StringVarP(&bloodworkUser, "user", "u", "", "user the panel belongs to (required)")
	_ = bloodworkCmd.MarkPersistentFlagRequired("user")
	bloodworkListCmd.Flags().IntVarP(&bloodworkLimit, "limit", "n", 20, "max number of results")
	bloodworkCmd.AddCommand(bloodworkAddCmd)
	bloodworkCmd.AddCommand(bloodworkListCmd)
	rootCmd.AddCommand(bloodworkCmd)
}
