package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a provider answers successfully with no text.
var ErrEmptyResponse = errors.New("empty response from provider")

// GenerationError is a provider failure. Status is the upstream HTTP status when known.
type GenerationError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Status
	}
	return 0
}

func wrapErr(provider string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{Provider: provider, Message: err.Error(), Err: err}
}

func statusError(provider string, status int, raw []byte) error {
	return &GenerationError{Provider: provider, Status: status, Message: errorMessage(raw)}
}

func emptyResponse(provider string) error {
	return &GenerationError{Provider: provider, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
}

// errorMessage pulls a readable message out of a provider error body.
// Both {"error": {"message": ...}} and {"error": "..."} shapes occur.
func errorMessage(raw []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "unknown error"
	}
	return msg
}
