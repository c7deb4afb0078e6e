// Package llm wraps the hosted generative model behind a narrow interface so
// the resolver can be constructed with a fake in tests.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Model identifiers for the answer pipeline. The final retry attempt drops
// down to the fallback model.
const (
	PrimaryModel  = "gemini-2.5-flash"
	FallbackModel = "gemini-pro"
)

// Generator produces a text completion for a prompt with the given model.
type Generator interface {
	Generate(ctx context.Context, modelID, prompt string) (string, error)
}

// GeminiClient implements Generator over the Google Generative AI API.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	model := g.client.GenerativeModel(modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content (%s): %w", modelID, err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("empty response from %s", modelID)
	}
	return out, nil
}

// Close releases the underlying API client.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}
