// ABOUTME: Tool-using chat agent over the local health store.
// ABOUTME: One code path decides between logging, lookups, and analysis.
package agent

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/harperreed/morning/internal/config"
	"github.com/harperreed/morning/internal/convo"
	"github.com/harperreed/morning/internal/storage"
)

//go:embed prompts/agent.md
var agentPrompt string

const (
	// maxIterations bounds the tool loop so a confused model cannot spin.
	maxIterations = 5

	maxAgentTokens = 4000

	// historyTurns is how many prior conversation messages ride along.
	historyTurns = 10
)

const (
	apiErrorReply  = "Sorry, I encountered an error. Please try again."
	exhaustedReply = "I wasn't able to complete the analysis. Please try rephrasing your question."
)

// Agent answers free-form messages with tool access to stored health data.
type Agent struct {
	client  *anthropic.Client
	model   string
	store   *storage.Store
	history *convo.Store
	logger  *slog.Logger
}

// New builds an agent over the given store. history may be nil, in which
// case turns are neither loaded nor saved. Extra request options are passed
// through to the API client, which lets tests point it at a fake server.
func New(apiKey, model string, store *storage.Store, history *convo.Store, opts ...option.RequestOption) *Agent {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(clientOpts...)
	return &Agent{
		client:  &client,
		model:   model,
		store:   store,
		history: history,
		logger:  slog.Default(),
	}
}

// HandleMessage runs the tool loop for one user message and returns the
// reply text. The returned string is always sendable: on failure it carries
// an apology and the error explains what went wrong. progress, when
// non-nil, receives at most one interim status line before tools run.
func (a *Agent) HandleMessage(ctx context.Context, userMessage string, progress func(string)) (string, error) {
	messages := a.historyMessages()
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)))

	tools := agentTools()
	progressSent := false

	for iteration := 0; iteration < maxIterations; iteration++ {
		response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: maxAgentTokens,
			System:    []anthropic.TextBlockParam{{Text: a.systemPrompt()}},
			Tools:     tools,
			Messages:  messages,
		})
		if err != nil {
			a.logger.Error("anthropic api error", "error", err)
			return apiErrorReply, fmt.Errorf("agent message: %w", err)
		}

		var toolUses []anthropic.ToolUseBlock
		for _, block := range response.Content {
			if toolUse, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
				toolUses = append(toolUses, toolUse)
			}
		}

		if len(toolUses) == 0 {
			text := firstText(response.Content)
			a.saveTurn(userMessage, text)
			return text, nil
		}

		// The prompt asks for a one-line status before tool calls; relay
		// the first one so the user sees something while tools run.
		if progress != nil && !progressSent {
			if text := firstText(response.Content); strings.TrimSpace(text) != "" {
				progress(text)
				progressSent = true
			}
		}

		toolResults := make([]anthropic.ContentBlockParamUnion, 0, len(toolUses))
		for _, toolUse := range toolUses {
			a.logger.Info("executing tool", "tool", toolUse.Name)
			result, err := a.executeTool(toolUse.Name, toolUse.Input)
			isError := err != nil
			if isError {
				a.logger.Error("tool execution failed", "tool", toolUse.Name, "error", err)
				result = errorPayload(err.Error())
			}
			toolResults = append(toolResults, anthropic.NewToolResultBlock(toolUse.ID, result, isError))
		}

		messages = append(messages, response.ToParam())
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	a.logger.Warn("agent exhausted tool iterations", "max", maxIterations)
	return exhaustedReply, nil
}

func (a *Agent) systemPrompt() string {
	return strings.ReplaceAll(agentPrompt, "{current_date}", config.Today())
}

func (a *Agent) historyMessages() []anthropic.MessageParam {
	if a.history == nil {
		return nil
	}
	past, err := a.history.Recent(historyTurns)
	if err != nil {
		a.logger.Warn("failed to load conversation history", "error", err)
		return nil
	}

	messages := make([]anthropic.MessageParam, 0, len(past)+1)
	for _, msg := range past {
		switch msg.Role {
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return messages
}

// saveTurn records a completed exchange. Failed exchanges are not saved so
// a retry starts from the same history.
func (a *Agent) saveTurn(userMessage, reply string) {
	if a.history == nil {
		return
	}
	if err := a.history.Append("user", userMessage); err != nil {
		a.logger.Warn("failed to save conversation turn", "role", "user", "error", err)
	}
	if err := a.history.Append("assistant", reply); err != nil {
		a.logger.Warn("failed to save conversation turn", "role", "assistant", "error", err)
	}
}

func firstText(blocks []anthropic.ContentBlockUnion) string {
	for _, block := range blocks {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
