package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiCompleter struct {
	client *genai.Client
}

// NewGeminiCompleter talks to the Gemini API; baseURL overrides the endpoint
// when set.
func NewGeminiCompleter(ctx context.Context, apiKey, baseURL string) (*GeminiCompleter, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	return &GeminiCompleter{client: client}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := float32(req.Temperature)

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   int32(req.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	return result.Text(), nil
}
