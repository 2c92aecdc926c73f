package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"docgen/internal/domain"
)

// Config holds all configuration for the doc comment generator.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Generate GenerateConfig `yaml:"generate"`
	Files    FilesConfig    `yaml:"files"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig selects and tunes the model backend.
type LLMConfig struct {
	Provider       string  `yaml:"provider"`    // "openai", "deepseek", "ollama", "llamacpp", "azure", "custom", "stream", "gemini", "mock"
	Model          string  `yaml:"model"`       // empty means the provider default
	BaseURL        string  `yaml:"base_url"`    // overrides the provider default
	APIKeyEnv      string  `yaml:"api_key_env"` // overrides the provider's key variable
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Stream         bool    `yaml:"stream"` // request a server-sent event stream

	// APIVersion is the Azure OpenAI api-version query parameter.
	APIVersion string `yaml:"api_version"`
}

// Timeout returns the per-request timeout.
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GenerateConfig holds generation behaviour.
type GenerateConfig struct {
	Inline     bool              `yaml:"inline"`
	Guided     bool              `yaml:"guided"`
	Delimiters domain.Delimiters `yaml:"delimiters"` // empty means the language default
	TokenLimit int               `yaml:"token_limit"`
	ShowRaw    bool              `yaml:"show_raw"`
}

// FilesConfig selects files in directory mode.
type FilesConfig struct {
	Includes        []string `yaml:"includes"`
	Excludes        []string `yaml:"excludes"`
	RequireCleanGit bool     `yaml:"require_clean_git"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MemorySize int  `yaml:"memory_size"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// TTL returns the in-memory entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Temperature:    0.8,
			MaxTokens:      2048,
			TimeoutSeconds: 120,
		},
		Generate: GenerateConfig{
			TokenLimit: 2048,
		},
		Files: FilesConfig{
			Includes:        []string{"**/*.java"},
			Excludes:        []string{"**/node_modules/**", "**/vendor/**", "**/.git/**", "**/dist/**", "**/build/**", "**/target/**", "**/*.min.js"},
			RequireCleanGit: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MemorySize: 256,
			TTLSeconds: 3600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// TokenLimitFor returns the method size limit for model. Larger context
// models raise the configured limit.
func (c *Config) TokenLimitFor(model string) int {
	limit := c.Generate.TokenLimit
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "16k"):
		limit = max(limit, 16384)
	case strings.HasPrefix(m, "gpt-4"):
		limit = max(limit, 4096)
	}
	return limit
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docgen.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docgen.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docgen", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StateDBPath returns the path to the response cache and undo journal.
func StateDBPath(dir string) string {
	return filepath.Join(dir, ".docgen", "state.db")
}

// EnsureStateDir ensures the .docgen directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docgen"), 0755)
}
