// ABOUTME: CLI command running the Telegram webhook server.
// ABOUTME: Wires the bot client, chat agent, and brief regeneration together.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/morning/internal/agent"
	"github.com/harperreed/morning/internal/brief"
	"github.com/harperreed/morning/internal/convo"
	"github.com/harperreed/morning/internal/pipeline"
	"github.com/harperreed/morning/internal/telegram"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram webhook server",
	Long: `Run an HTTP server that receives Telegram webhook updates and answers
them with the health assistant. Requires OURA_ACCESS_TOKEN,
ANTHROPIC_API_KEY, TELEGRAM_BOT_TOKEN, and TELEGRAM_CHAT_ID.

ENDPOINTS

  /webhook   Telegram update receiver (protected by the secret token)
  /healthz   liveness probe

Set TELEGRAM_WEBHOOK_SECRET and register it with Telegram's setWebhook;
updates without the matching X-Telegram-Bot-Api-Secret-Token header are
rejected.

Examples:
  morning serve
  morning serve --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := creds.RequireAnthropic(); err != nil {
			return err
		}
		tg, err := newTelegramClient()
		if err != nil {
			return err
		}
		ouraClient, err := newOuraClient()
		if err != nil {
			return err
		}

		history, err := convo.Open(filepath.Join(cfg.GetDataDir(), "conversations"))
		if err != nil {
			return fmt.Errorf("opening conversation store: %w", err)
		}
		defer history.Close()

		assistant := agent.New(creds.AnthropicAPIKey, cfg.GetModel(), store, history)
		gen := brief.NewGenerator(creds.AnthropicAPIKey, cfg.GetModel())
		runner := pipeline.NewRunner(ouraClient, store, gen, tg)
		regen := func(ctx context.Context) {
			if _, err := runner.MorningRun(ctx); err != nil {
				slog.Error("regenerating brief", "error", err)
			}
		}

		webhook := telegram.NewWebhook(creds.TelegramWebhookSecret, tg, store, assistant, regen)
		mux := http.NewServeMux()
		mux.Handle("/webhook", webhook)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "ok")
		})

		server := &http.Server{
			Addr:              serveAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if creds.TelegramWebhookSecret == "" {
			color.Yellow("⚠ TELEGRAM_WEBHOOK_SECRET is not set; webhook requests will be rejected")
		}
		fmt.Printf("Listening on %s\n", serveAddr)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
		case <-sigChan:
			fmt.Println("\nShutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}
