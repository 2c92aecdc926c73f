package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docgen/internal/domain"
)

// provider holds the defaults for an OpenAI-compatible endpoint.
type provider struct {
	baseURL   string
	keyEnvVar string
	model     string
}

var providers = map[string]provider{
	"openai":   {baseURL: "https://api.openai.com/v1", keyEnvVar: "OPENAI_API_KEY", model: "gpt-3.5-turbo"},
	"deepseek": {baseURL: "https://api.deepseek.com/v1", keyEnvVar: "DEEPSEEK_API_KEY", model: "deepseek-chat"},
	"ollama":   {baseURL: "http://localhost:11434/v1", model: "codellama"},
	"llamacpp": {baseURL: "http://localhost:8080/v1", model: "local"},
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint and
// returns the whole reply as a single payload.
type ChatClient struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	style       PromptStyle
	client      *http.Client

	// endpoint replaces baseURL+"/chat/completions" when set.
	endpoint string
	azure    bool
}

// NewChatClient creates a client for baseURL.
func NewChatClient(name, baseURL, apiKey, model string, opts Options) *ChatClient {
	return &ChatClient{
		name:        name,
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		style:       StyleFullMethod,
		client:      &http.Client{Timeout: opts.timeout()},
	}
}

// NewAzureClient creates a client for an Azure OpenAI deployment. Azure
// routes by deployment name and authenticates with an api-key header.
func NewAzureClient(baseURL, apiKey, deployment, apiVersion string, opts Options) *ChatClient {
	c := NewChatClient("azure", baseURL, apiKey, deployment, opts)
	c.endpoint = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(baseURL, "/"), url.PathEscape(deployment), url.QueryEscape(apiVersion))
	c.azure = true
	return c
}

func (c *ChatClient) Name() string {
	return c.name + ":" + c.model
}

// Invoke sends one generation request.
func (c *ChatClient) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error) {
	prompt, err := BuildPrompt(c.style, req)
	if err != nil {
		return domain.RawResponse{}, err
	}

	body, err := c.post(ctx, prompt, false)
	if err != nil {
		return domain.RawResponse{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return domain.RawResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		bodyPreview := string(data)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return domain.RawResponse{}, fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	if chatResp.Error != nil {
		return domain.RawResponse{}, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return domain.RawResponse{}, fmt.Errorf("no choices in response")
	}

	return domain.Single(chatResp.Choices[0].Message.Content), nil
}

// post sends the chat request and returns the body of a 200 response.
func (c *ChatClient) post(ctx context.Context, prompt string, stream bool) (io.ReadCloser, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      stream,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = c.baseURL + "/chat/completions"
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	switch {
	case c.apiKey == "":
	case c.azure:
		httpReq.Header.Set("api-key", c.apiKey)
	default:
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

// Options are the generation settings shared by every backend.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 120 * time.Second
	}
	return o.Timeout
}
