package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newHandler(&buf, Options{Level: "info", Format: "json"}))

	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))

	FromContext(ctx, base).Info("generated", "model", "openai")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "openai", entry["model"])
	assert.Equal(t, "generated", entry["msg"])
}

func TestFromContext_WithoutRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(newHandler(&buf, Options{Format: "text", Level: "warn"}))

	FromContext(context.Background(), base).Info("dropped")
	assert.Empty(t, buf.String())
}
