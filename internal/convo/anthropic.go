package convo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 1024

// AnthropicBackend answers questions through the Anthropic Messages
// API. This is the preferred backend when a key is configured.
type AnthropicBackend struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicBackend(apiKey, model string, httpc *http.Client) *AnthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpc != nil {
		opts = append(opts, option.WithHTTPClient(httpc))
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, 2*len(p.Turns)+1)
	for _, t := range p.Turns {
		msgs = append(msgs,
			anthropic.NewUserMessage(anthropic.NewTextBlock(t.User)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Assistant)),
		)
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(p.Question)))

	system := []anthropic.TextBlockParam{{Text: p.System}}
	if p.Context != "" {
		system = append(system, anthropic.TextBlockParam{Text: p.Context})
	}

	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  msgs,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	for _, block := range resp.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic: empty completion")
}
