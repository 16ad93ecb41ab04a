// ABOUTME: Webhook handler for incoming Telegram messages.
// ABOUTME: Routes commands, photos, and free-form chat to the right flow.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/storage"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const (
	photoNoInterventionReply = "I couldn't identify a health intervention in that photo. Try adding a caption describing what it is."
	photoErrorReply          = "Sorry, I couldn't process that photo. Try sending a text description instead."
	saveErrorReply           = "Sorry, I couldn't save that. Please try again."
	logUsageReply            = "Usage: /log <intervention>\nExamples:\n  /log magnesium 400mg\n  /log sauna 20min\n  /log 2 drinks of wine"
	noInterventionsReply     = "No interventions logged today."
	regenWaitReply           = "⏳ Regenerating morning brief... This may take a minute."
	unknownCommandReply      = "Unknown command. Try /help"
)

const helpReply = `Commands:
/status - Today's interventions
/brief - Latest morning brief
/regen-brief - Regenerate today's brief
/clear - Clear today's interventions
/help - Show this

Log interventions:
  "took 2 magnesium"
  "20 min sauna"
  [send a photo]

Ask questions:
  "How did I sleep last week?"
  "What's my HRV trend?"
  "Compare today to my baseline"`

// Assistant is the Claude-backed side of the bot: free-form chat plus the
// helpers around intervention logging.
type Assistant interface {
	HandleMessage(ctx context.Context, userMessage string, progress func(string)) (string, error)
	CleanIntervention(ctx context.Context, raw string) string
	FormatInterventionResponse(ctx context.Context, justLogged string) string
	AnalyzePhoto(ctx context.Context, image []byte, caption string) (string, error)
}

// Webhook receives Telegram updates and replies through the bot client.
// Only messages from the configured chat are processed.
type Webhook struct {
	secret    string
	client    *Client
	store     *storage.Store
	assistant Assistant
	regen     func(context.Context)
	logger    *slog.Logger
}

// NewWebhook wires up the update handler. regen, when non-nil, is started
// in the background for /regen-brief and is expected to deliver its own
// result message.
func NewWebhook(secret string, client *Client, store *storage.Store, assistant Assistant, regen func(context.Context)) *Webhook {
	return &Webhook{
		secret:    secret,
		client:    client,
		store:     store,
		assistant: assistant,
		regen:     regen,
		logger:    slog.Default(),
	}
}

type update struct {
	Message struct {
		Text    string `json:"text"`
		Caption string `json:"caption"`
		Chat    struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Photo []struct {
			FileID string `json:"file_id"`
		} `json:"photo"`
	} `json:"message"`
}

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		h.logger.Error("webhook secret not configured, rejecting request")
		respondJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "server misconfigured"})
		return
	}
	if r.Header.Get(secretTokenHeader) != h.secret {
		h.logger.Warn("webhook auth failed: invalid secret token")
		respondJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	var u update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		h.logger.Warn("undecodable webhook update", "error", err)
		respondOK(w)
		return
	}

	// Single-user bot: updates from any other chat are acknowledged and
	// dropped so Telegram stops redelivering them.
	if strconv.FormatInt(u.Message.Chat.ID, 10) != h.client.ChatID() {
		respondOK(w)
		return
	}

	ctx := r.Context()

	if len(u.Message.Photo) > 0 {
		h.reply(ctx, h.handlePhoto(ctx, u))
		respondOK(w)
		return
	}

	text := u.Message.Text
	if strings.TrimSpace(text) == "" {
		respondOK(w)
		return
	}

	h.reply(ctx, h.handleText(ctx, text))
	respondOK(w)
}

// handlePhoto downloads the largest size of an incoming photo and logs
// whatever intervention the analyzer sees in it.
func (h *Webhook) handlePhoto(ctx context.Context, u update) string {
	fileID := u.Message.Photo[len(u.Message.Photo)-1].FileID
	caption := u.Message.Caption

	image, err := h.client.DownloadPhoto(ctx, fileID)
	if err != nil {
		h.logger.Error("photo processing error", "error", err)
		return photoErrorReply
	}
	intervention, err := h.assistant.AnalyzePhoto(ctx, image, caption)
	if err != nil {
		h.logger.Error("photo processing error", "error", err)
		return photoErrorReply
	}
	if intervention == NotAnIntervention {
		return photoNoInterventionReply
	}
	if _, err := h.store.SaveIntervention(intervention, intervention); err != nil {
		h.logger.Error("photo processing error", "error", err)
		return photoErrorReply
	}
	return h.assistant.FormatInterventionResponse(ctx, intervention)
}

func (h *Webhook) handleText(ctx context.Context, text string) string {
	switch {
	case strings.HasPrefix(text, "/log"):
		raw := strings.TrimSpace(text[len("/log"):])
		if raw == "" {
			return logUsageReply
		}
		cleaned := h.assistant.CleanIntervention(ctx, raw)
		if _, err := h.store.SaveIntervention(raw, cleaned); err != nil {
			h.logger.Error("failed to save intervention", "error", err)
			return saveErrorReply
		}
		return h.assistant.FormatInterventionResponse(ctx, cleaned)

	case strings.HasPrefix(text, "/status"):
		entries, err := h.store.TodayInterventions()
		if err != nil {
			h.logger.Error("failed to load today's interventions", "error", err)
		}
		if len(entries) == 0 {
			return noInterventionsReply
		}
		lines := []string{"Today's interventions:"}
		for _, e := range entries {
			display := e.Cleaned
			if display == "" {
				display = e.Raw
			}
			if display == "" {
				display = "unknown"
			}
			lines = append(lines, "  • "+display)
		}
		return strings.Join(lines, "\n")

	case strings.HasPrefix(text, "/brief"):
		return h.store.LatestBrief()

	case strings.HasPrefix(text, "/regen-brief"):
		if err := h.client.SendMessage(ctx, regenWaitReply); err != nil {
			h.logger.Error("failed to send regen notice", "error", err)
		}
		if h.regen != nil {
			// Detached so the run outlives this webhook request; the run
			// sends the brief itself when done.
			go h.regen(context.Background())
		}
		return ""

	case strings.HasPrefix(text, "/clear"):
		today := config.Today()
		cleared, err := h.store.ClearInterventions(today)
		if err != nil {
			h.logger.Error("failed to clear interventions", "error", err)
		}
		if cleared {
			return fmt.Sprintf("Cleared interventions for %s", today)
		}
		return fmt.Sprintf("No interventions to clear for %s", today)

	case strings.HasPrefix(text, "/help"):
		return helpReply

	case strings.HasPrefix(text, "/"):
		return unknownCommandReply

	default:
		reply, err := h.assistant.HandleMessage(ctx, text, func(progress string) {
			if err := h.client.SendMessage(ctx, progress); err != nil {
				h.logger.Warn("failed to send progress update", "error", err)
			}
		})
		if err != nil {
			h.logger.Error("message handling error", "error", err)
		}
		return reply
	}
}

func (h *Webhook) reply(ctx context.Context, response string) {
	if response == "" {
		return
	}
	if err := h.client.SendMessage(ctx, response); err != nil {
		h.logger.Error("failed to send reply", "error", err)
	}
}

func respondOK(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func respondJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Warn("failed to encode webhook response", "error", err)
	}
}
