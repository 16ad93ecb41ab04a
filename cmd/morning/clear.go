// ABOUTME: CLI command for clearing today's logged interventions.
// ABOUTME: Handles the "logged the wrong thing" case without file surgery.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/config"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear today's logged interventions",
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := store.ClearInterventions(config.Today())
		if err != nil {
			return fmt.Errorf("failed to clear interventions: %w", err)
		}
		if !removed {
			fmt.Println("No interventions logged today.")
			return nil
		}
		color.Green("✓ Cleared today's interventions")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
