// ABOUTME: Root Cobra command for vitals CLI.
// ABOUTME: Handles config, storage, and service lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/vitals/internal/config"
	"github.com/harperreed/vitals/internal/ingest"
	"github.com/harperreed/vitals/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	repo      storage.Repository
	seenCache *ingest.SeenCache
	svc       *ingest.Service
)

var rootCmd = &cobra.Command{
	Use:   "vitals",
	Short: "Health device ingestion and scoring core",
	Long: `Vitals ingests raw health device payloads and turns them into
canonical records and derived scores.

WHAT IT STORES:

  Metrics        heart_rate, resting_hr, hrv, respiratory_rate, spo2, body_temp,
                 steps, active_calories, distance, weight, body_fat
  Sleep          one session per user, sleep date, and source, with stage minutes
  Workouts       duration, calories, heart rate
  Daily scores   sleep, recovery, strain, and readiness per calendar day
  Blood work     lab panels for biological age calculation

QUICK START:

  $ vitals ingest payload.json --user alice    # Ingest a device payload
  $ vitals sleep --user alice \
      --bedtime "2025-03-01 23:10" --wake "2025-03-02 07:20" \
      --total 440 --in-bed 490                 # Log sleep manually
  $ vitals scores --user alice                 # See recent daily scores
  $ vitals list --user alice --type hrv        # List stored metrics

BIOLOGICAL AGE:

  $ vitals profile birthdate alice 1985-06-15  # Set birth date
  $ vitals bloodwork add panel.json --user alice
  $ vitals bioage --user alice                 # PhenoAge from latest panel

MAINTENANCE:

  $ vitals dedup          # Remove natural-key duplicate rows
  $ vitals export json    # Full data export (json or yaml)

MCP INTEGRATION:

  Run 'vitals mcp' to start the Model Context Protocol server for use with
  MCP-compatible AI assistants:

  {
    "mcpServers": {
      "vitals": { "command": "vitals", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Records are stored in SQLite at ~/.local/share/vitals/vitals.db.
  Re-delivered payloads are deduplicated by natural key; re-ingesting
  the same file is always safe.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		// ParseLevel falls back to info for unknown level names.
		logger := log.NewWithOptions(os.Stderr, log.Options{
			Level: log.ParseLevel(cfg.GetLogLevel()),
		})

		svc = ingest.NewService(repo, logger)
		if !cfg.DisableSeenCache {
			// Cache failure is not fatal: upserts alone keep dedup correct.
			if seenCache, err = ingest.OpenSeenCache(cfg.SeenCachePath()); err == nil {
				svc.WithSeenCache(seenCache)
			} else {
				logger.Warn("seen cache unavailable", "err", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if seenCache != nil {
			seenCache.Close()
			seenCache = nil
		}
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
