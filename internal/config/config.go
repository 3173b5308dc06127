package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string        `yaml:"provider"`
		Model       string        `yaml:"model"`
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Temperature float64       `yaml:"temperature"`
		MaxTokens   int           `yaml:"max_tokens"`
		Timeout     time.Duration `yaml:"timeout"`
		// Keys holds per-provider API keys, e.g. {"claude": "..."}.
		Keys map[string]string `yaml:"keys"`
	} `yaml:"llm"`
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		Mode           string   `yaml:"mode"`
	} `yaml:"server"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// providerKeyEnv maps providers to the environment variables holding their API keys.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"gemini": "GEMINI_API_KEY",
	"grok":   "GROK_API_KEY",
}

func Default() *Config {
	var cfg Config
	cfg.LLM.Provider = "openai"
	cfg.LLM.Temperature = 0.7
	cfg.LLM.MaxTokens = 2000
	cfg.LLM.Timeout = 90 * time.Second
	cfg.Server.Addr = ":8080"
	cfg.Storage.Path = "promptarch.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if provider := os.Getenv("PROMPTARCH_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if apiKey := os.Getenv("PROMPTARCH_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if model := os.Getenv("PROMPTARCH_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = host
	}
	if addr := os.Getenv("PROMPTARCH_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("PROMPTARCH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// APIKeyFor resolves the key for provider: the provider's own key from the config or its
// environment variable, then the generic llm.api_key when provider is the configured one.
func (c *Config) APIKeyFor(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if key := c.LLM.Keys[provider]; key != "" {
		return key
	}
	if env, ok := providerKeyEnv[provider]; ok {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	if strings.EqualFold(provider, c.LLM.Provider) {
		return c.LLM.APIKey
	}
	return ""
}
