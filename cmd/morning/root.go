// ABOUTME: Root Cobra command for the morning CLI.
// ABOUTME: Opens config, credentials, and the file store for subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/brief"
	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/oura"
	"github.com/harperreed/morning/internal/storage"
	"github.com/harperreed/morning/internal/telegram"
)

var (
	cfg   *config.Config
	creds *config.Env
	store *storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "morning",
	Short: "Personal health assistant for your Oura ring",
	Long: `Morning pulls sleep, readiness, activity, stress, workout, and heart-rate
data from the Oura API, compares it against your rolling personal baselines,
and writes a short daily brief with Claude, delivered over Telegram.

DAILY PIPELINE:

  $ morning brief                # Fetch today's data, generate and send the brief
  $ morning brief --no-send      # Same, but print locally instead of sending
  $ morning backfill --days 90   # Bootstrap daily records and baselines
  $ morning refetch 2026-08-20   # Re-pull one day and correct its baseline entry

TRACKING:

  $ morning log magnesium 400mg  # Log an intervention
  $ morning status               # Baselines, latest brief, today's log
  $ morning history --days 7     # Recent daily summaries
  $ morning clear                # Drop today's interventions

TELEGRAM BOT:

  Run 'morning serve' to host the webhook for the chat bot. Set
  TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID, and TELEGRAM_WEBHOOK_SECRET, then
  point your bot's webhook at https://<host>/webhook.

MCP INTEGRATION:

  Run 'morning mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants.

CLOUD BACKUP:

  $ morning sync push    # Back up records and baselines to Charm Cloud
  $ morning sync pull    # Restore local records from the cloud copy
  $ morning sync status  # Show what the cloud holds

DATA STORAGE:

  Everything lives under ~/.local/share/morning as plain JSON and markdown.
  Use 'morning export json' for backups and 'morning import' to restore.
  Credentials come from the environment or a .env file in the working
  directory: OURA_ACCESS_TOKEN, ANTHROPIC_API_KEY, TELEGRAM_BOT_TOKEN,
  TELEGRAM_CHAT_ID, TELEGRAM_WEBHOOK_SECRET.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		creds, err = config.LoadEnv()
		if err != nil {
			return err
		}
		store, err = storage.Open(cfg.GetDataDir())
		if err != nil {
			return fmt.Errorf("opening data store: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newOuraClient() (*oura.Client, error) {
	if err := creds.RequireOura(); err != nil {
		return nil, err
	}
	return oura.New(creds.OuraToken), nil
}

func newGenerator() (*brief.Generator, error) {
	if err := creds.RequireAnthropic(); err != nil {
		return nil, err
	}
	return brief.NewGenerator(creds.AnthropicAPIKey, cfg.GetModel()), nil
}

func newTelegramClient() (*telegram.Client, error) {
	if err := creds.RequireTelegram(); err != nil {
		return nil, err
	}
	return telegram.NewClient(creds.TelegramBotToken, creds.TelegramChatID), nil
}
