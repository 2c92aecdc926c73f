package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"docgen/config"
	"docgen/internal/port"
)

const defaultAzureAPIVersion = "2024-02-01"

// DefaultModel returns the model used when none is configured.
func DefaultModel(providerName string) string {
	switch providerName {
	case "gemini":
		return "gemini-2.5-flash"
	case "mock":
		return "mock"
	}
	if p, ok := providers[providerName]; ok {
		return p.model
	}
	return ""
}

// NewBackend builds the backend selected by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.LLMConfig) (port.Backend, error) {
	opts := Options{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout(),
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel(cfg.Provider)
	}

	switch cfg.Provider {
	case "mock":
		return NewMockBackend(), nil

	case "gemini":
		keyEnv := cfg.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "GEMINI_API_KEY"
		}
		apiKey := os.Getenv(keyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found. Set %s environment variable", keyEnv)
		}
		return NewGeminiClient(ctx, apiKey, model, cfg.BaseURL, opts)

	case "azure":
		return newAzureBackend(cfg, model, opts)

	case "custom", "stream":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider %s requires base_url", cfg.Provider)
		}
		if model == "" {
			return nil, fmt.Errorf("provider %s requires a model", cfg.Provider)
		}
		apiKey := ""
		if cfg.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.APIKeyEnv)
		}
		chat := NewChatClient(cfg.Provider, strings.TrimSuffix(cfg.BaseURL, "/"), apiKey, model, opts)
		if cfg.Provider == "stream" || cfg.Stream {
			return NewStreamClient(chat), nil
		}
		return chat, nil
	}

	p, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	baseURL := p.baseURL
	if cfg.BaseURL != "" {
		baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		if cfg.Provider == "ollama" && !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
	}

	keyEnv := p.keyEnvVar
	if cfg.APIKeyEnv != "" {
		keyEnv = cfg.APIKeyEnv
	}
	apiKey := ""
	if keyEnv != "" {
		apiKey = os.Getenv(keyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found. Set %s environment variable", keyEnv)
		}
	}

	chat := NewChatClient(cfg.Provider, baseURL, apiKey, model, opts)
	if cfg.Stream {
		return NewStreamClient(chat), nil
	}
	return chat, nil
}

// Azure settings follow the AZURE_API_* variables when the config leaves them
// empty.
func newAzureBackend(cfg config.LLMConfig, deployment string, opts Options) (port.Backend, error) {
	if deployment == "" {
		return nil, fmt.Errorf("provider azure requires a deployment name as model")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("AZURE_API_BASE")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("provider azure requires base_url or AZURE_API_BASE")
	}
	version := cfg.APIVersion
	if version == "" {
		version = os.Getenv("AZURE_API_VERSION")
	}
	if version == "" {
		version = defaultAzureAPIVersion
	}
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "AZURE_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found. Set %s environment variable", keyEnv)
	}

	chat := NewAzureClient(baseURL, apiKey, deployment, version, opts)
	if cfg.Stream {
		return NewStreamClient(chat), nil
	}
	return chat, nil
}
