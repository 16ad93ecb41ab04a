// ABOUTME: Morning brief generation through the Anthropic API.
// ABOUTME: One call per morning; the prompt carries the full day context.
package brief

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

//go:embed prompts/morning_brief.md
var systemPrompt string

const maxBriefTokens = 1500

// Generator produces morning briefs from assembled day context.
type Generator struct {
	client *anthropic.Client
	model  string
}

// NewGenerator builds a Generator. Extra request options are passed through
// to the API client.
func NewGenerator(apiKey, model string, opts ...option.RequestOption) *Generator {
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(clientOpts...)
	return &Generator{client: &client, model: model}
}

// Generate asks the model for the morning brief text.
func (g *Generator) Generate(ctx context.Context, in Input) (string, error) {
	response, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: maxBriefTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(in))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("generating brief: %w", err)
	}

	for _, block := range response.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("no text content in brief response")
}
