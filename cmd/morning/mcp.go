// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to query your health data and log
interventions through a standardized protocol. The server communicates
via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "morning": {
        "command": "morning",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  get_metrics              Daily metrics for a date or recent window
  get_detailed_sleep       Full sleep session detail for a date
  get_interventions        Logged interventions over recent days
  get_today_interventions  Today's logged interventions
  log_intervention         Record a new intervention
  get_baselines            Rolling baselines with means and stds
  get_recent_briefs        Recent morning briefs

AVAILABLE RESOURCES:

  morning://brief/latest    Most recent morning brief
  morning://baselines       Rolling baseline snapshot
  morning://metrics/today   Today's metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
