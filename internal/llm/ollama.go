package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Hustada/prompt-architect/internal/prompt"
	ollama "github.com/ollama/ollama/api"
)

// Ollama implements Generator against a local Ollama server.
type Ollama struct {
	client        *ollama.Client
	opts          Options
	promptBuilder *prompt.Builder
}

// NewOllama connects to opts.BaseURL, or to OLLAMA_HOST when no base URL is set.
func NewOllama(opts Options) (*Ollama, error) {
	opts = opts.withDefaults("llama3")

	var client *ollama.Client
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		u, err := url.Parse(strings.TrimRight(base, "/"))
		if err != nil {
			return nil, fmt.Errorf("invalid ollama base url: %w", err)
		}
		client = ollama.NewClient(u, &http.Client{Timeout: opts.Timeout})
	} else {
		c, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		client = c
	}

	return &Ollama{
		client:        client,
		opts:          opts,
		promptBuilder: &prompt.Builder{},
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Generate(ctx context.Context, req Request) (Response, error) {
	stream := false
	chatReq := &ollama.ChatRequest{
		Model: strings.TrimPrefix(o.opts.Model, "ollama:"),
		Messages: []ollama.Message{
			{Role: "system", Content: prompt.SystemPrompt},
			{Role: "user", Content: buildPrompt(o.promptBuilder, req)},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": o.opts.Temperature,
			"num_predict": o.opts.MaxTokens,
		},
	}

	var sb strings.Builder
	model := chatReq.Model
	err := o.client.Chat(ctx, chatReq, func(res ollama.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		if res.Model != "" {
			model = res.Model
		}
		return nil
	})
	if err != nil {
		var statusErr ollama.StatusError
		if errors.As(err, &statusErr) {
			return Response{}, &GenerationError{Provider: o.Name(), Status: statusErr.StatusCode, Message: statusErr.ErrorMessage, Err: err}
		}
		return Response{}, wrapErr(o.Name(), fmt.Errorf("ollama chat failed: %w", err))
	}
	return finish(o.Name(), model, sb.String())
}
