package convo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIBackend answers questions through the Chat Completions API.
type OpenAIBackend struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIBackend(apiKey, model string, httpc *http.Client) *OpenAIBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpc != nil {
		opts = append(opts, option.WithHTTPClient(httpc))
	}
	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  openai.ChatModel(model),
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2*len(p.Turns)+3)
	msgs = append(msgs, openai.SystemMessage(p.System))
	if p.Context != "" {
		msgs = append(msgs, openai.SystemMessage(p.Context))
	}
	for _, t := range p.Turns {
		msgs = append(msgs,
			openai.UserMessage(t.User),
			openai.AssistantMessage(t.Assistant),
		)
	}
	msgs = append(msgs, openai.UserMessage(p.Question))

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    b.model,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
