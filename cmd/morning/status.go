// ABOUTME: CLI command showing the data directory, baseline state, and today's log.
// ABOUTME: The quick end-to-end health check for the local store.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show data store and baseline status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Data directory: %s\n", store.Dir())

		baselines, err := store.LoadBaselines()
		if err != nil {
			return fmt.Errorf("failed to load baselines: %w", err)
		}
		faint := color.New(color.Faint)
		if baselines.DataPoints == 0 {
			color.Yellow("Baselines: empty (population priors)")
			fmt.Println(faint.Sprint("  Run 'morning backfill' to bootstrap from Oura history."))
		} else {
			color.Green("Baselines: %d data points over a %d-day window", baselines.DataPoints, baselines.WindowDays)
			if baselines.LastUpdated != nil {
				fmt.Printf("  Last updated: %s\n", *baselines.LastUpdated)
			}
		}

		if date := latestBriefDate(); date != "" {
			fmt.Printf("Latest brief: %s\n", date)
		} else {
			fmt.Println("Latest brief: none")
		}

		interventions, err := store.TodayInterventions()
		if err != nil {
			return fmt.Errorf("failed to load interventions: %w", err)
		}
		fmt.Printf("Interventions today: %d\n", len(interventions))
		for _, iv := range interventions {
			fmt.Printf("  %s  %s\n", iv.Time, iv.Cleaned)
		}
		return nil
	},
}

func latestBriefDate() string {
	today := config.Today()
	if _, err := store.LoadBrief(today); err == nil {
		return today
	}
	briefs, err := store.LoadRecentBriefs(config.RawWindowDays)
	if err != nil || len(briefs) == 0 {
		return ""
	}
	return briefs[0].Date
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
