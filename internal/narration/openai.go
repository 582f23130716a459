package narration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"raisingsim/internal/game"
)

const DefaultModel = openai.GPT4oMini

var (
	ErrNoEndpoint = errors.New("narration endpoint is not configured")
	ErrNoChoices  = errors.New("completion returned no choices")
)

// ChatClient asks an OpenAI-compatible chat endpoint for a JSON card. The
// request endpoint is used as the API base URL.
type ChatClient struct {
	apiKey string
	model  string
	http   *http.Client
}

func NewChatClient(apiKey, model string, timeout time.Duration) *ChatClient {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = game.DefaultNarrationTimeout
	}
	return &ChatClient{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: timeout},
	}
}

func (c *ChatClient) Narrate(ctx context.Context, in game.NarrationRequest) (game.NarratedCard, error) {
	var out game.NarratedCard
	baseURL := strings.TrimRight(strings.TrimSpace(in.Endpoint), "/")
	if baseURL == "" {
		return out, ErrNoEndpoint
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return out, err
	}

	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = c.http
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.9,
		MaxTokens:      700,
	})
	if err != nil {
		return out, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return out, ErrNoChoices
	}
	return DecodeCard(resp.Choices[0].Message.Content)
}

// DecodeCard parses a model reply, tolerating a surrounding markdown code fence.
func DecodeCard(content string) (game.NarratedCard, error) {
	var out game.NarratedCard
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return out, fmt.Errorf("decode narration: %w", err)
	}
	return out, nil
}
