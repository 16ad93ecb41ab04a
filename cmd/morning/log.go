// ABOUTME: CLI command for logging health interventions.
// ABOUTME: Normalizes the text with Claude when an API key is available.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/agent"
)

var logCmd = &cobra.Command{
	Use:   "log <intervention...>",
	Short: "Log a health intervention",
	Long: `Log a supplement, workout, sauna session, drink, or anything else that
might move your metrics. Entries are timestamped and folded into the next
morning brief.

With ANTHROPIC_API_KEY set the entry is cleaned up first (typos fixed,
filler dropped); without it the raw text is stored as-is.

Examples:
  morning log magnesium 400mg
  morning log 20 min sauna
  morning log 2 glasses of wine with dinner`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")

		cleaned := raw
		if creds.AnthropicAPIKey != "" {
			a := agent.New(creds.AnthropicAPIKey, cfg.GetModel(), store, nil)
			cleaned = a.CleanIntervention(cmd.Context(), raw)
		}

		entry, err := store.SaveIntervention(raw, cleaned)
		if err != nil {
			return fmt.Errorf("failed to save intervention: %w", err)
		}

		color.Green("✓ Logged at %s", entry.Time)
		fmt.Printf("  %s\n", entry.Cleaned)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
