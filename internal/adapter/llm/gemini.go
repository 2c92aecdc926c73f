package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"docgen/internal/domain"
)

// GeminiClient generates doc comments with Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiClient creates a Gemini backend.
// baseURL may be empty to use the public endpoint.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, opts Options) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	temperature := float32(opts.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	return &GeminiClient{client: client, model: model, config: config}, nil
}

func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}

// Invoke sends one generation request.
func (c *GeminiClient) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error) {
	prompt, err := BuildPrompt(StyleFullMethod, req)
	if err != nil {
		return domain.RawResponse{}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return domain.RawResponse{}, fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return domain.RawResponse{}, fmt.Errorf("gemini returned no text")
	}
	return domain.Single(text), nil
}
