// ABOUTME: CLI command for backfilling historical Oura data.
// ABOUTME: Bootstraps daily records and rebuilds baselines from scratch.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/pipeline"
)

var backfillDays int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill historical Oura data",
	Long: fmt.Sprintf(`Fetch a trailing window of Oura history, write daily metric files for the
most recent %d days, and rebuild baselines from every day that produced
metrics. Existing baselines are replaced.

Run this once when setting up, or again after a long gap in syncing.

Examples:
  morning backfill             # Default 90 days
  morning backfill --days 30   # Shorter window`, config.RawWindowDays),
	RunE: func(cmd *cobra.Command, args []string) error {
		ouraClient, err := newOuraClient()
		if err != nil {
			return err
		}

		fmt.Printf("Backfilling %d days of history...\n", backfillDays)
		runner := pipeline.NewRunner(ouraClient, store, nil, nil)
		result, err := runner.Backfill(cmd.Context(), backfillDays)
		if err != nil {
			return fmt.Errorf("backfill failed: %w", err)
		}

		color.Green("✓ Backfill complete")
		fmt.Printf("  Days with metrics: %d\n", result.DaysProcessed)
		fmt.Printf("  Daily files saved: %d\n", result.FilesSaved)
		fmt.Printf("  Baseline data points: %d\n", result.BaselinePoints)
		return nil
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillDays, "days", 90, "days of history to fetch")
	rootCmd.AddCommand(backfillCmd)
}
