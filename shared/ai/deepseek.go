package ai

import (
	"context"
	"fmt"

	openrouter "github.com/revrost/go-openrouter"
)

// DeepSeekCompleter talks to DeepSeek's OpenAI compatible chat endpoint
type DeepSeekCompleter struct {
	client *openrouter.Client
}

func NewDeepSeekCompleter(apiKey, baseURL string) *DeepSeekCompleter {
	cfg := openrouter.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &DeepSeekCompleter{
		client: openrouter.NewClientWithConfig(*cfg),
	}
}

func (d *DeepSeekCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openrouter.ChatCompletionMessage{
			openrouter.SystemMessage(req.System),
			openrouter.UserMessage(req.Prompt),
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content.Text, nil
}
