package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Hustada/prompt-architect/internal/prompt"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	grokEndpoint   = "https://api.x.ai/v1/chat/completions"
)

// ChatCompletions talks to OpenAI-compatible /chat/completions endpoints (OpenAI, Grok).
type ChatCompletions struct {
	provider      string
	client        *http.Client
	opts          Options
	endpoint      string
	promptBuilder *prompt.Builder
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Stream      bool                `json:"stream"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(opts Options) *ChatCompletions {
	return newChatCompletions("openai", openAIEndpoint, opts.withDefaults("gpt-4"))
}

func NewGrok(opts Options) *ChatCompletions {
	return newChatCompletions("grok", grokEndpoint, opts.withDefaults("grok-2-latest"))
}

func newChatCompletions(provider, defaultEndpoint string, opts Options) *ChatCompletions {
	return &ChatCompletions{
		provider:      provider,
		client:        &http.Client{Timeout: opts.Timeout},
		opts:          opts,
		endpoint:      chatEndpoint(opts.BaseURL, defaultEndpoint),
		promptBuilder: &prompt.Builder{},
	}
}

func chatEndpoint(baseURL, fallback string) string {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		return fallback
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/chat/completions") {
		return endpoint
	}
	if strings.HasSuffix(endpoint, "/v1") {
		return endpoint + "/chat/completions"
	}
	return endpoint + "/v1/chat/completions"
}

func (c *ChatCompletions) Name() string {
	return c.provider
}

func (c *ChatCompletions) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return Response{}, &GenerationError{Provider: c.provider, Message: fmt.Sprintf("%s API key not found", c.provider)}
	}

	reqBody := openAIChatRequest{
		Model: c.opts.Model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: prompt.SystemPrompt},
			{Role: "user", Content: buildPrompt(c.promptBuilder, req)},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, wrapErr(c.provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, wrapErr(c.provider, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, wrapErr(c.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, wrapErr(c.provider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, statusError(c.provider, resp.StatusCode, raw)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, wrapErr(c.provider, fmt.Errorf("malformed response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return Response{}, emptyResponse(c.provider)
	}
	model := parsed.Model
	if model == "" {
		model = c.opts.Model
	}
	return finish(c.provider, model, parsed.Choices[0].Message.Content)
}
