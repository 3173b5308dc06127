package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hustada/prompt-architect/internal/prompt"
	"google.golang.org/genai"
)

// Gemini implements Generator using Gemini text generation.
type Gemini struct {
	client        *genai.Client
	opts          Options
	promptBuilder *prompt.Builder
}

func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	opts = opts.withDefaults("gemini-pro")
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{
		client:        client,
		opts:          opts,
		promptBuilder: &prompt.Builder{},
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if g.opts.APIKey == "" {
		return Response{}, &GenerationError{Provider: g.Name(), Message: "Gemini API key not found"}
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens: int32(g.opts.MaxTokens),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(buildPrompt(g.promptBuilder, req)), config)
	if err != nil {
		if code, msg, ok := geminiAPIError(err); ok {
			return Response{}, &GenerationError{Provider: g.Name(), Status: code, Message: msg, Err: err}
		}
		return Response{}, wrapErr(g.Name(), err)
	}
	return finish(g.Name(), g.opts.Model, resp.Text())
}

// geminiAPIError unpacks genai.APIError, which the SDK may return by value or by pointer.
func geminiAPIError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
