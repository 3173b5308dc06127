package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 90 * time.Second
)

// Providers lists the supported provider names.
var Providers = []string{"openai", "claude", "gemini", "grok", "ollama"}

type Options struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) withDefaults(model string) Options {
	if strings.TrimSpace(o.Model) == "" {
		o.Model = model
	}
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// New returns the Generator for opts.Provider. An empty provider selects openai.
func New(ctx context.Context, opts Options) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}

	switch provider {
	case "openai":
		return NewOpenAI(opts), nil
	case "grok":
		return NewGrok(opts), nil
	case "claude":
		return NewClaude(opts), nil
	case "gemini":
		return NewGemini(ctx, opts)
	case "ollama":
		return NewOllama(opts)
	default:
		return nil, fmt.Errorf("unsupported model: %s", opts.Provider)
	}
}
