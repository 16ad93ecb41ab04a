// ABOUTME: Telegram Bot API client: chunked sends with Markdown fallback,
// ABOUTME: photo downloads, and image MIME sniffing.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// maxChunkLen stays under Telegram's 4096-char message limit.
	maxChunkLen = 4000

	maxSendAttempts = 3
)

// NotAnIntervention is the photo analyzer's reply when neither the image
// nor its caption shows anything loggable.
const NotAnIntervention = "NOT_AN_INTERVENTION"

// Client talks to the Telegram Bot API for a single bot and chat.
type Client struct {
	token        string
	chatID       string
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

type clientConfig struct {
	baseURL      string
	timeout      time.Duration
	logger       *slog.Logger
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// Option adjusts client construction.
type Option func(*clientConfig)

// WithBaseURL points the client at a different API host. Tests use this.
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithLogger routes client logs somewhere specific.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithRetryWait overrides the send retry backoff bounds.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *clientConfig) {
		c.retryWaitMin = min
		c.retryWaitMax = max
	}
}

// NewClient builds a client for one bot token and destination chat.
func NewClient(token, chatID string, opts ...Option) *Client {
	cfg := clientConfig{
		baseURL:      defaultBaseURL,
		timeout:      30 * time.Second,
		logger:       slog.Default(),
		retryWaitMin: 2 * time.Second,
		retryWaitMax: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		token:        token,
		chatID:       chatID,
		baseURL:      cfg.baseURL,
		httpClient:   &http.Client{Timeout: cfg.timeout},
		logger:       cfg.logger,
		retryWaitMin: cfg.retryWaitMin,
		retryWaitMax: cfg.retryWaitMax,
	}
}

// ChatID returns the configured destination chat.
func (c *Client) ChatID() string {
	return c.chatID
}

// SendMessage delivers a message to the configured chat, splitting it into
// chunks on line boundaries when it exceeds Telegram's length limit. Each
// chunk goes out as Markdown first, then as plain text if Telegram rejects
// the formatting.
func (c *Client) SendMessage(ctx context.Context, message string) error {
	if message == "" {
		return nil
	}

	for _, chunk := range splitMessage(message, maxChunkLen) {
		status, body, err := c.sendChunk(ctx, chunk, "Markdown")
		if err != nil {
			return err
		}
		if status >= 400 && strings.Contains(body, "can't parse entities") {
			c.logger.Info("markdown parsing failed, sending as plain text")
			status, body, err = c.sendChunk(ctx, chunk, "")
			if err != nil {
				return err
			}
		}
		if status >= 400 {
			c.logger.Error("telegram api error", "status", status, "body", body)
			return fmt.Errorf("telegram api error (status %d): %s", status, body)
		}
	}
	return nil
}

// sendChunk posts one sendMessage call, retrying transport failures with
// exponential backoff. HTTP error statuses are returned, not retried, so
// the caller can react to Telegram's response body.
func (c *Client) sendChunk(ctx context.Context, text, parseMode string) (int, string, error) {
	payload := map[string]any{
		"chat_id":                  c.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("encode sendMessage payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if attempt > 1 {
			wait := c.retryWaitMin << uint(attempt-2)
			if wait > c.retryWaitMax {
				wait = c.retryWaitMax
			}
			select {
			case <-ctx.Done():
				return 0, "", ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bot"+c.token+"/sendMessage", bytes.NewReader(data))
		if err != nil {
			return 0, "", fmt.Errorf("build sendMessage request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("telegram send attempt failed", "attempt", attempt, "error", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			c.logger.Warn("telegram send attempt failed", "attempt", attempt, "error", err)
			continue
		}
		return resp.StatusCode, string(body), nil
	}
	return 0, "", fmt.Errorf("telegram send failed after %d attempts: %w", maxSendAttempts, lastErr)
}

// DownloadPhoto fetches a photo's bytes by its Telegram file id.
func (c *Client) DownloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	query := url.Values{}
	query.Set("file_id", fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bot"+c.token+"/getFile?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build getFile request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getFile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("getFile: status %d", resp.StatusCode)
	}

	var meta struct {
		Result struct {
			FilePath string `json:"file_path"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode getFile response: %w", err)
	}
	if meta.Result.FilePath == "" {
		return nil, fmt.Errorf("getFile: no file_path for %s", fileID)
	}

	fileReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/file/bot"+c.token+"/"+meta.Result.FilePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build file download request: %w", err)
	}
	fileResp, err := c.httpClient.Do(fileReq)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer fileResp.Body.Close()
	if fileResp.StatusCode >= 400 {
		return nil, fmt.Errorf("download file: status %d", fileResp.StatusCode)
	}
	return io.ReadAll(fileResp.Body)
}

// splitMessage breaks a message into chunks of at most limit bytes,
// preferring line boundaries. A single line longer than the limit is
// hard-split.
func splitMessage(s string, limit int) []string {
	if len(s) <= limit {
		return []string{s}
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := strings.Join(current, "\n")
		current = nil
		currentLen = 0
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, line := range strings.Split(s, "\n") {
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		addLen := len(line)
		if len(current) > 0 {
			addLen++
		}
		if currentLen+addLen > limit {
			flush()
			addLen = len(line)
		}
		current = append(current, line)
		currentLen += addLen
	}
	flush()
	return chunks
}

// DetectImageMIME sniffs an image's MIME type from its magic bytes.
// Unrecognized data is treated as JPEG, the common case for Telegram
// photos.
func DetectImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WEBP":
		return "image/webp"
	}
	return "image/jpeg"
}
