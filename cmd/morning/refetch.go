// ABOUTME: CLI command for re-pulling one day's data from Oura.
// ABOUTME: Merges over the stored record and corrects its baseline entry.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/pipeline"
)

var refetchCmd = &cobra.Command{
	Use:   "refetch <date>",
	Short: "Refetch one date from Oura",
	Long: `Re-pull a single date from the Oura API and merge it over the stored
record. The date's baseline contribution is corrected in place, so a day
that synced late or incompletely can be fixed without a full backfill.

Example:
  morning refetch 2026-08-20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ouraClient, err := newOuraClient()
		if err != nil {
			return err
		}

		runner := pipeline.NewRunner(ouraClient, store, nil, nil)
		rec, err := runner.Refetch(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("refetch failed: %w", err)
		}

		color.Green("✓ Refetched %s", rec.Date)
		fmt.Printf("  %s\n", summaryLine(rec.Summary))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refetchCmd)
}
