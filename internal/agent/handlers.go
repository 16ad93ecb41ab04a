// ABOUTME: Small single-shot Claude helpers around intervention logging.
// ABOUTME: Text cleanup, logged-entry acknowledgments, and photo analysis.
package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/harperreed/morning/internal/telegram"
)

const cleanPromptFmt = `Clean and normalize this health intervention log entry. Fix typos, remove filler words, standardize format. Keep it brief (under 10 words ideally).

Input: "%s"

Output only the cleaned text, nothing else.`

// CleanIntervention normalizes a raw log entry. Any failure falls back to
// the raw text so logging never blocks on the API.
func (a *Agent) CleanIntervention(ctx context.Context, raw string) string {
	response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 50,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(cleanPromptFmt, raw))),
		},
	})
	if err != nil {
		a.logger.Error("error cleaning intervention", "error", err)
		return raw
	}

	cleaned := strings.Trim(strings.TrimSpace(firstText(response.Content)), `"`)
	if cleaned == "" {
		return raw
	}
	return cleaned
}

// FormatInterventionResponse acknowledges a just-logged entry with a short
// natural summary of today's log.
func (a *Agent) FormatInterventionResponse(ctx context.Context, justLogged string) string {
	entries, err := a.store.TodayInterventions()
	if err != nil {
		a.logger.Warn("failed to load today's interventions", "error", err)
	}
	if len(entries) == 0 {
		return "Logged."
	}

	var lines []string
	for _, e := range entries {
		raw := e.Raw
		if raw == "" {
			raw = "unknown"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", e.Time, raw))
	}

	prompt := fmt.Sprintf(`Acknowledge this intervention was logged. Then summarize today's interventions naturally in 1-2 sentences.

Just logged: "%s"

Today's entries:
%s

Keep response under 3 lines. No emojis. Be concise.`, justLogged, strings.Join(lines, "\n"))

	response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 100,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		a.logger.Error("error formatting intervention response", "error", err)
		return fmt.Sprintf("Logged. (%d today)", len(entries))
	}
	return strings.TrimSpace(firstText(response.Content))
}

// AnalyzePhoto extracts an intervention description from an image and its
// caption. Returns telegram.NotAnIntervention when there is nothing to log.
func (a *Agent) AnalyzePhoto(ctx context.Context, image []byte, caption string) (string, error) {
	mediaType := telegram.DetectImageMIME(image)
	encoded := base64.StdEncoding.EncodeToString(image)

	captionContext := ""
	if caption != "" {
		captionContext = fmt.Sprintf("\nUser caption: \"%s\"\n\nIMPORTANT: Include EVERYTHING mentioned in the caption, even if not visible in the image.", caption)
	}

	prompt := fmt.Sprintf(`Extract health interventions from BOTH the image AND the user's caption.

From the image, look for:
- Supplements/vitamins (name, dosage, quantity)
- Food/drinks (what it is, portion if visible)
- Exercise equipment or activity
- Wellness products (sauna, ice bath, etc.)
%s

Respond with a normalized intervention log entry listing ALL items.
If the caption mentions items not in the image, include them too.
Keep under 30 words. Use comma-separated format for multiple items.
If neither image nor caption shows a health intervention, respond with "NOT_AN_INTERVENTION".
Examples: "Creatine 2 capsules, Neuro-Mag 1 capsule", "Post-workout protein shake", "20 min sauna session"
`, captionContext)

	response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 100,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, encoded),
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("analyzing photo: %w", err)
	}
	return strings.TrimSpace(firstText(response.Content)), nil
}
