// ABOUTME: CLI command for resetting baselines to population priors.
// ABOUTME: Destructive, so it confirms before discarding history.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetBaselinesCmd = &cobra.Command{
	Use:   "reset-baselines",
	Short: "Reset baselines to population priors",
	Long: `Discard all accumulated baseline history and start over from the
population priors. Daily records are untouched; use 'morning backfill'
afterwards to rebuild baselines from them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DISCARD all accumulated baseline history.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		set, err := store.ResetBaselines()
		if err != nil {
			return fmt.Errorf("failed to reset baselines: %w", err)
		}
		color.Green("✓ Baselines reset to population priors")
		fmt.Printf("  Tracked metrics: %d\n", len(set.Metrics))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetBaselinesCmd)
}
