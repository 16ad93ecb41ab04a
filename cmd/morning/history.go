// ABOUTME: CLI command for listing recent daily metrics.
// ABOUTME: Also holds the shared one-line summary formatter.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/models"
)

var historyDays int

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Show recent daily metrics",
	Long: `Show a one-line summary for each recent day, newest first.

Examples:
  morning history
  morning history --days 14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := store.LoadHistoricalMetrics(historyDays)
		if err != nil {
			return fmt.Errorf("failed to load metrics: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No metrics found. Run 'morning backfill' to load history from Oura.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, rec := range records {
			fmt.Printf("%s  %s\n", faint.Sprint(rec.Date), summaryLine(rec.Summary))
		}
		return nil
	},
}

// summaryLine renders the handful of metrics worth scanning in a terminal.
func summaryLine(s models.Summary) string {
	var parts []string
	if v, ok := s.Number("sleep_score"); ok {
		parts = append(parts, fmt.Sprintf("sleep %.0f", v))
	}
	if v, ok := s.Number("readiness"); ok {
		parts = append(parts, fmt.Sprintf("ready %.0f", v))
	}
	if v, ok := s.Number("total_sleep_minutes"); ok {
		parts = append(parts, "slept "+formatMinutes(v))
	}
	if v, ok := s.Number("hrv"); ok {
		parts = append(parts, fmt.Sprintf("hrv %.0f", v))
	}
	if v, ok := s.Number("resting_hr"); ok {
		parts = append(parts, fmt.Sprintf("rhr %.0f", v))
	}
	if v, ok := s.Number("steps"); ok {
		parts = append(parts, fmt.Sprintf("steps %.0f", v))
	}
	if v, ok := s.Number("workout_minutes"); ok && v > 0 {
		parts = append(parts, "workout "+formatMinutes(v))
	}
	if len(parts) == 0 {
		return "no numeric metrics"
	}
	return strings.Join(parts, "  ")
}

func formatMinutes(v float64) string {
	m := int(v)
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
	rootCmd.AddCommand(historyCmd)
}
