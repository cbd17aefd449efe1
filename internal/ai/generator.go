package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Generator produces free text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error)
}

// Claude is a Generator backed by the Anthropic Messages API.
type Claude struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaude creates a Claude generator. An empty apiKey leaves the SDK to
// read ANTHROPIC_API_KEY itself.
func NewClaude(apiKey, model string) *Claude {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}
}

func (c *Claude) Generate(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}
	return sb.String(), nil
}

// Offline is a Generator for when no API key is configured. Analyze serves
// the built-in tips; DraftArticle fails with ErrUnavailable.
type Offline struct{}

func (Offline) Generate(context.Context, string, string, int64) (string, error) {
	return "", ErrUnavailable
}
