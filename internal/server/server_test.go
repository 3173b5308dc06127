package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/storage"
	"github.com/gin-gonic/gin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	name     string
	markdown string
	err      error
	last     llm.Request
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	g.last = req
	if g.err != nil {
		return llm.Response{}, g.err
	}
	return llm.Response{Markdown: g.markdown, Model: "stub-1"}, nil
}

func newTestServer(t *testing.T, gen *stubGenerator) (*Server, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	resolve := func(ctx context.Context, model string) (llm.Generator, error) {
		if model != "" && model != gen.name {
			return nil, fmt.Errorf("unsupported model: %s", model)
		}
		return gen, nil
	}
	return New(resolve, store, nil, Options{Mode: gin.TestMode}), store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestGenerate_MissingParameters(t *testing.T) {
	gen := &stubGenerator{name: "openai"}
	s, _ := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{"projectType": "backend"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required parameters", decode(t, w)["error"])
}

func TestGenerate_InvalidProjectType(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType": "mobile",
		"projectIdea": "Habit tracker",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_UnsupportedModel(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType": "backend",
		"projectIdea": "Invoice API",
		"model":       "llama-cpp",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["details"], "unsupported model")
}

func TestGenerate_Success(t *testing.T) {
	gen := &stubGenerator{name: "openai", markdown: "# Project Overview\n\nInvoices."}
	s, store := newTestServer(t, gen)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewBufferString(
		`{"projectType":"Backend","projectIdea":"Invoice API","model":"openai"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "trace-1")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "trace-1", w.Header().Get(RequestIDHeader))

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "# Project Overview\n\nInvoices.", resp.Markdown)
	assert.Equal(t, "openai", resp.Model)
	assert.Equal(t, "trace-1", resp.RequestID)
	assert.False(t, resp.Timestamp.IsZero())
	assert.False(t, gen.last.IsSection())

	rec, err := store.GetRecord(context.Background(), resp.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "backend", rec.ProjectType)
	assert.Equal(t, resp.Markdown, rec.Markdown)
}

func TestGenerate_SectionRequiresPreviousResponse(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType":         "backend",
		"projectIdea":         "Invoice API",
		"sectionToRegenerate": "Features",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_SectionRequest(t *testing.T) {
	gen := &stubGenerator{name: "openai", markdown: "- PDF export"}
	s, _ := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType":         "backend",
		"projectIdea":         "Invoice API",
		"sectionToRegenerate": "Features",
		"previousResponse":    "# Features\n\n- CSV export",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Features", gen.last.Section)
	assert.Equal(t, "# Features\n\n- CSV export", gen.last.PreviousDocument)
	assert.Equal(t, "- PDF export", decode(t, w)["markdown"])
}

func TestGenerate_ProviderStatusPropagated(t *testing.T) {
	gen := &stubGenerator{
		name: "openai",
		err:  &llm.GenerationError{Provider: "openai", Status: http.StatusTooManyRequests, Message: "rate limited"},
	}
	s, _ := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType": "frontend",
		"projectIdea": "Portfolio",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to generate markdown", body["error"])
	assert.Contains(t, body["details"], "rate limited")
}

func TestGenerate_TransportErrorIs500(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai", err: fmt.Errorf("dial tcp: refused")})

	w := doJSON(t, s, http.MethodPost, "/api/generate", map[string]string{
		"projectType": "frontend",
		"projectIdea": "Portfolio",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

const doc = "# Overview\n\nold\n\n# Features\n\n- a"

func TestRegenerate_Success(t *testing.T) {
	gen := &stubGenerator{name: "openai", markdown: "\nnew overview\n"}
	s, store := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/regenerate", map[string]string{
		"markdown":    doc,
		"section":     "Overview",
		"projectType": "fullstack",
		"projectIdea": "Recipes",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp regenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "# Overview\n\nnew overview\n\n# Features\n\n- a", resp.Markdown)
	assert.Equal(t, "Overview", resp.Section)
	assert.Equal(t, w.Header().Get(RequestIDHeader), resp.RequestID)

	rec, err := store.GetRecord(context.Background(), resp.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "Overview", rec.Section)
}

func TestRegenerate_FailureReportsSection(t *testing.T) {
	gen := &stubGenerator{name: "openai", err: &llm.GenerationError{Provider: "openai", Status: 500, Message: "overloaded"}}
	s, _ := newTestServer(t, gen)

	w := doJSON(t, s, http.MethodPost, "/api/regenerate", map[string]string{
		"markdown":    doc,
		"section":     "Features",
		"projectType": "fullstack",
		"projectIdea": "Recipes",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var failure sectionFailure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	assert.Equal(t, "Features", failure.SectionTitle)
	assert.Contains(t, failure.Message, "overloaded")
}

func TestRegenerate_UnknownSection(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai", markdown: "x"})

	w := doJSON(t, s, http.MethodPost, "/api/regenerate", map[string]string{
		"markdown":    doc,
		"section":     "Deployment",
		"projectType": "fullstack",
		"projectIdea": "Recipes",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Deployment", decode(t, w)["sectionTitle"])
}

func TestRegenerate_MissingParameters(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/regenerate", map[string]string{"markdown": doc})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSections(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/sections", map[string]string{
		"markdown": "intro\n# A\none\n# B\ntwo\n# A\nthree",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp sectionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Sections, 2)
	assert.Equal(t, "A", resp.Sections[0].Title)
	assert.Equal(t, "three", resp.Sections[0].Body)
	assert.Equal(t, "two", resp.Sections[1].Body)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "A", resp.Warnings[0].Title)
}

func TestSections_EmptyDocument(t *testing.T) {
	s, _ := newTestServer(t, &stubGenerator{name: "openai"})

	w := doJSON(t, s, http.MethodPost, "/api/sections", map[string]string{"markdown": "no headings"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sections":[],"warnings":[]}`, w.Body.String())
}

func TestRecords(t *testing.T) {
	s, store := newTestServer(t, &stubGenerator{name: "openai"})
	ctx := context.Background()
	require.NoError(t, store.SaveRecord(ctx, storage.Record{ID: "r1", ProjectType: "backend", ProjectIdea: "x", Model: "openai", Markdown: "# A\n\nb"}))

	w := doJSON(t, s, http.MethodGet, "/api/records?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["records"].([]any)
	assert.Len(t, records, 1)

	w = doJSON(t, s, http.MethodGet, "/api/records/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r1", decode(t, w)["id"])

	w = doJSON(t, s, http.MethodGet, "/api/records/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/records?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
