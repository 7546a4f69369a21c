// ABOUTME: CLI commands for user profile data.
// ABOUTME: Currently just the birth date used for biological age.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profile data",
}

var profileBirthdateCmd = &cobra.Command{
	Use:   "birthdate <user> <date>",
	Short: "Set a user's birth date",
	Long: `Set a user's birth date, used to compute chronological age for the
biological age calculation.

EXAMPLES:

  vitals profile birthdate alice 1985-06-15`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, birthDate := args[0], args[1]
		if _, err := time.Parse(time.DateOnly, birthDate); err != nil {
			return fmt.Errorf("invalid birth date %q (use YYYY-MM-DD)", birthDate)
		}

		if err := repo.SetBirthDate(cmd.Context(), userID, birthDate); err != nil {
			return fmt.Errorf("failed to set birth date: %w", err)
		}

		color.Green("✓ Set birth date for %s", userID)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileBirthdateCmd)
	rootCmd.AddCommand(profileCmd)
}
