// ABOUTME: Environment-variable credentials for external services.
// ABOUTME: All fields optional at parse time; commands demand what they need.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the secrets and identifiers read from the environment. A .env
// file, when present, is loaded into the process environment before parsing.
type Env struct {
	OuraToken             string `env:"OURA_ACCESS_TOKEN"`
	AnthropicAPIKey       string `env:"ANTHROPIC_API_KEY"`
	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID        string `env:"TELEGRAM_CHAT_ID"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"`
}

// LoadEnv parses credentials from the environment.
func LoadEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &e, nil
}

// RequireOura errors unless an Oura API token is configured.
func (e *Env) RequireOura() error {
	if e.OuraToken == "" {
		return fmt.Errorf("OURA_ACCESS_TOKEN not set")
	}
	return nil
}

// RequireAnthropic errors unless an Anthropic API key is configured.
func (e *Env) RequireAnthropic() error {
	if e.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	return nil
}

// RequireTelegram errors unless bot credentials are configured. The webhook
// secret is not checked here: serve warns about a missing secret and the
// webhook handler rejects updates until one is set.
func (e *Env) RequireTelegram() error {
	if e.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if e.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID not set")
	}
	return nil
}
