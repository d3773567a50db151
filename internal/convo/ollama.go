package convo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaBackend talks to a local Ollama server over its /api/chat
// endpoint. No key is required; availability is opted in by setting
// the host.
type OllamaBackend struct {
	host   string
	model  string
	client *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func NewOllamaBackend(host, model string, httpc *http.Client) *OllamaBackend {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &OllamaBackend{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: httpc,
	}
}

func (b *OllamaBackend) Name() string { return "ollama" }

func (b *OllamaBackend) Generate(ctx context.Context, p Prompt) (string, error) {
	msgs := make([]ollamaMessage, 0, 2*len(p.Turns)+3)
	msgs = append(msgs, ollamaMessage{Role: "system", Content: p.System})
	if p.Context != "" {
		msgs = append(msgs, ollamaMessage{Role: "system", Content: p.Context})
	}
	for _, t := range p.Turns {
		msgs = append(msgs,
			ollamaMessage{Role: "user", Content: t.User},
			ollamaMessage{Role: "assistant", Content: t.Assistant},
		)
	}
	msgs = append(msgs, ollamaMessage{Role: "user", Content: p.Question})

	body, err := json.Marshal(ollamaChatRequest{
		Model:    b.model,
		Messages: msgs,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if out.Message.Content == "" {
		return "", fmt.Errorf("ollama: empty completion")
	}
	return out.Message.Content, nil
}
