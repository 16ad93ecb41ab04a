// ABOUTME: CLI command for running the morning brief pipeline on demand.
// ABOUTME: Fetches, extracts, briefs, and optionally delivers over Telegram.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/pipeline"
	"github.com/harperreed/morning/internal/telegram"
)

var briefNoSend bool

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Run the morning brief pipeline",
	Long: `Run the full morning pipeline once: fetch today's sleep and yesterday's
activity from Oura, save the daily records, generate the brief with Claude,
fold today into the baselines, and send the brief over Telegram.

If Oura has not synced yet, the run reports a delay instead of briefing;
rerun after syncing your ring.

Examples:
  morning brief            # Generate and send
  morning brief --no-send  # Generate and print, skip Telegram`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ouraClient, err := newOuraClient()
		if err != nil {
			return err
		}
		gen, err := newGenerator()
		if err != nil {
			return err
		}

		var tg *telegram.Client
		if !briefNoSend {
			tg, err = newTelegramClient()
			if err != nil {
				return err
			}
		}

		runner := pipeline.NewRunner(ouraClient, store, gen, tg)
		outcome, err := runner.MorningRun(cmd.Context())
		if err != nil {
			return fmt.Errorf("morning brief failed: %w", err)
		}

		if outcome.Status == pipeline.StatusDelayed {
			color.Yellow("⏳ Brief delayed for %s", outcome.Date)
			fmt.Println("Sleep data not yet available. Sync your Oura ring and rerun.")
			return nil
		}

		color.Green("✓ Morning brief generated for %s", outcome.Date)
		fmt.Println()
		fmt.Println(outcome.Brief)
		return nil
	},
}

func init() {
	briefCmd.Flags().BoolVar(&briefNoSend, "no-send", false, "print the brief instead of sending it")
	rootCmd.AddCommand(briefCmd)
}
