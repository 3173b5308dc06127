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
	claudeEndpoint   = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// Claude calls the Anthropic messages API.
type Claude struct {
	client        *http.Client
	opts          Options
	endpoint      string
	promptBuilder *prompt.Builder
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func NewClaude(opts Options) *Claude {
	opts = opts.withDefaults("claude-3-opus-20240229")
	endpoint := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	switch {
	case endpoint == "":
		endpoint = claudeEndpoint
	case !strings.HasSuffix(endpoint, "/messages"):
		if !strings.HasSuffix(endpoint, "/v1") {
			endpoint += "/v1"
		}
		endpoint += "/messages"
	}
	return &Claude{
		client:        &http.Client{Timeout: opts.Timeout},
		opts:          opts,
		endpoint:      endpoint,
		promptBuilder: &prompt.Builder{},
	}
}

func (c *Claude) Name() string {
	return "claude"
}

func (c *Claude) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return Response{}, &GenerationError{Provider: c.Name(), Message: "Claude API key not found"}
	}

	body, err := json.Marshal(claudeRequest{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		System:    prompt.SystemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: buildPrompt(c.promptBuilder, req)},
		},
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return Response{}, wrapErr(c.Name(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, wrapErr(c.Name(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.opts.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, wrapErr(c.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, wrapErr(c.Name(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, statusError(c.Name(), resp.StatusCode, raw)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, wrapErr(c.Name(), fmt.Errorf("malformed response: %w", err))
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	model := parsed.Model
	if model == "" {
		model = c.opts.Model
	}
	return finish(c.Name(), model, sb.String())
}
