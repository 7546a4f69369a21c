// ABOUTME: CLI command for manually logging sleep sessions.
// ABOUTME: Derives in-bed and awake minutes when not supplied.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/vitals/internal/models"
	"github.com/spf13/cobra"
)

var (
	sleepUser      string
	sleepBedtime   string
	sleepWake      string
	sleepTotal     int
	sleepInBed     int
	sleepDeep      int
	sleepRem       int
	sleepLight     int
	sleepAwake     int
	sleepHRV       float64
	sleepRestingHR float64
	sleepSource    string
)

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Log a sleep session",
	Long: `Log a sleep session manually.

The session is keyed by the calendar date you went to bed, so a
23:30 - 07:15 night belongs to the earlier date. In-bed minutes default
to the bedtime/wake span; awake minutes default to in-bed minus total.
The sleep score and efficiency are computed on write, and the day's
composite scores are recomputed.

EXAMPLES:

  vitals sleep --user alice \
    --bedtime "2025-03-01 23:10" --wake "2025-03-02 07:20" \
    --total 440 --deep 80 --rem 100 --light 260

  vitals sleep --user alice \
    --bedtime 2025-03-01T23:10:00Z --wake 2025-03-02T07:20:00Z \
    --total 440 --in-bed 490 --hrv 52 --resting-hr 47`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bedtime, err := parseTime(sleepBedtime)
		if err != nil {
			return fmt.Errorf("invalid bedtime: %s", sleepBedtime)
		}
		wake, err := parseTime(sleepWake)
		if err != nil {
			return fmt.Errorf("invalid wake time: %s", sleepWake)
		}

		session := models.NewSleepSession(sleepUser, bedtime, wake, sleepSource)
		session.TotalMinutes = sleepTotal
		session.InBedMinutes = sleepInBed
		if session.InBedMinutes == 0 {
			session.InBedMinutes = int(wake.Sub(bedtime).Minutes())
		}
		session.DeepSleepMinutes = sleepDeep
		session.RemSleepMinutes = sleepRem
		session.LightSleepMinutes = sleepLight
		session.AwakeMinutes = sleepAwake
		if session.AwakeMinutes == 0 && session.InBedMinutes > session.TotalMinutes {
			session.AwakeMinutes = session.InBedMinutes - session.TotalMinutes
		}
		if sleepHRV > 0 {
			session.HRVAvg = &sleepHRV
		}
		if sleepRestingHR > 0 {
			session.RestingHR = &sleepRestingHR
		}

		stored, err := svc.LogSleep(cmd.Context(), session)
		if err != nil {
			return fmt.Errorf("failed to log sleep: %w", err)
		}

		color.Green("✓ Logged sleep for %s", stored.SleepDate)
		fmt.Printf("  score %d  efficiency %.1f%%  %d min asleep / %d in bed\n",
			*stored.SleepScore, *stored.Efficiency,
			stored.TotalMinutes, stored.InBedMinutes)
		return nil
	},
}

func init() {
	sleepCmd.Flags().StringVarP(&sleepUser, "user", "u", "", "user the session belongs to (required)")
	sleepCmd.Flags().StringVar(&sleepBedtime, "bedtime", "", "bedtime (YYYY-MM-DD HH:MM or RFC 3339)")
	sleepCmd.Flags().StringVar(&sleepWake, "wake", "", "wake time")
	sleepCmd.Flags().IntVar(&sleepTotal, "total", 0, "minutes asleep")
	sleepCmd.Flags().IntVar(&sleepInBed, "in-bed", 0, "minutes in bed (default: wake - bedtime)")
	sleepCmd.Flags().IntVar(&sleepDeep, "deep", 0, "deep sleep minutes")
	sleepCmd.Flags().IntVar(&sleepRem, "rem", 0, "REM sleep minutes")
	sleepCmd.Flags().IntVar(&sleepLight, "light", 0, "light sleep minutes")
	sleepCmd.Flags().IntVar(&sleepAwake, "awake", 0, "awake minutes (default: in-bed - total)")
	sleepCmd.Flags().Float64Var(&sleepHRV, "hrv", 0, "average overnight HRV in ms")
	sleepCmd.Flags().Float64Var(&sleepRestingHR, "resting-hr", 0, "overnight resting heart rate in bpm")
	sleepCmd.Flags().StringVar(&sleepSource, "source", "manual", "data source")
	_ = sleepCmd.MarkFlagRequired("user")
	_ = sleepCmd.MarkFlagRequired("bedtime")
	_ = sleepCmd.MarkFlagRequired("wake")
	_ = sleepCmd.MarkFlagRequired("total")
	rootCmd.AddCommand(sleepCmd)
}
