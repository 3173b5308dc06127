package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/prompt"
	"github.com/Hustada/prompt-architect/internal/sections"
	"golang.org/x/sync/errgroup"
)

const defaultMaxConcurrent = 4

// Session is one document-editing session: a single Document, the project it describes,
// and the set of sections currently being regenerated.
//
// At most one regeneration per title runs at a time; different titles run concurrently.
// The mutex is never held across a generator call.
type Session struct {
	gen           llm.Generator
	project       prompt.ProjectContext
	logger        *slog.Logger
	maxConcurrent int

	mu       sync.Mutex
	doc      *sections.Document
	version  uint64
	inFlight map[string]struct{}
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxConcurrent bounds how many regenerations RegenerateAll runs at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func NewSession(gen llm.Generator, project prompt.ProjectContext, markdown string, opts ...Option) *Session {
	s := &Session{
		gen:           gen,
		project:       project,
		logger:        slog.Default(),
		maxConcurrent: defaultMaxConcurrent,
		doc:           sections.Parse(markdown),
		inFlight:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Project() prompt.ProjectContext {
	return s.project
}

// Markdown returns the current document text.
func (s *Session) Markdown() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sections.Combine(s.doc)
}

// Document returns a copy of the current document.
func (s *Session) Document() *sections.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Replace discards the current document in favor of markdown. Regenerations still running
// against the old document will not be applied.
func (s *Session) Replace(markdown string) *sections.Document {
	doc, warnings := sections.ParseWithWarnings(markdown)
	for _, w := range warnings {
		s.logger.Warn("document format", "warning", w.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.version++
	s.inFlight = make(map[string]struct{})
	return doc.Clone()
}

// Generate produces a whole new document for the session's project and replaces the
// current one with it.
//
// When the generated text has no top-level heading the session keeps its current document
// and Generate returns the raw text together with ErrNoSections.
func (s *Session) Generate(ctx context.Context) (string, error) {
	resp, err := s.gen.Generate(ctx, llm.Request{Project: s.project})
	if err != nil {
		return "", fmt.Errorf("failed to generate document: %w", err)
	}
	if sections.Parse(resp.Markdown).Len() == 0 {
		s.logger.Warn("no sections found in generated document", "provider", s.gen.Name(), "length", len(resp.Markdown))
		return resp.Markdown, ErrNoSections
	}
	return sections.Combine(s.Replace(resp.Markdown)), nil
}

// InFlight reports whether title is currently being regenerated.
func (s *Session) InFlight(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[title]
	return ok
}

// InFlightTitles returns the titles currently being regenerated, sorted.
func (s *Session) InFlightTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.inFlight))
	for title := range s.inFlight {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}

// Regenerate replaces the body of one section with freshly generated content and returns
// the resulting document. On failure the document is unchanged and the error is a
// *SectionError.
func (s *Session) Regenerate(ctx context.Context, title string) (string, error) {
	s.mu.Lock()
	if !s.doc.Has(title) {
		current := sections.Combine(s.doc)
		s.mu.Unlock()
		return current, sectionError(title, ErrUnknownSection)
	}
	if _, busy := s.inFlight[title]; busy {
		current := sections.Combine(s.doc)
		s.mu.Unlock()
		return current, sectionError(title, ErrInFlight)
	}
	s.inFlight[title] = struct{}{}
	version := s.version
	previous := sections.Combine(s.doc)
	s.mu.Unlock()

	s.logger.Debug("regenerating section", "section", title, "provider", s.gen.Name())
	body, genErr := generateBody(ctx, s.gen, s.project, title, previous)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != version {
		return sections.Combine(s.doc), sectionError(title, ErrSuperseded)
	}
	delete(s.inFlight, title)

	if genErr != nil {
		s.logger.Warn("section regeneration failed", "section", title, "error", genErr)
		return sections.Combine(s.doc), sectionError(title, genErr)
	}
	if !s.doc.Has(title) {
		return sections.Combine(s.doc), sectionError(title, ErrUnknownSection)
	}

	for _, w := range sections.CheckBody(body) {
		s.logger.Warn("regenerated section will not reparse cleanly", "section", title, "warning", w.String())
	}
	s.doc.Set(title, body)
	return sections.Combine(s.doc), nil
}

// RegenerateAll regenerates the given sections concurrently, or every section when no
// titles are given. Successful results are applied even if others fail; failures are
// returned as SectionErrors in the order the titles were given.
func (s *Session) RegenerateAll(ctx context.Context, titles ...string) (string, error) {
	if len(titles) == 0 {
		titles = s.Document().Titles()
	}

	errs := make([]*SectionError, len(titles))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, title := range titles {
		g.Go(func() error {
			if _, err := s.Regenerate(ctx, title); err != nil {
				errs[i] = asSectionError(title, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed SectionErrors
	for _, e := range errs {
		if e != nil {
			failed = append(failed, e)
		}
	}
	if len(failed) > 0 {
		return s.Markdown(), failed
	}
	return s.Markdown(), nil
}

func asSectionError(title string, err error) *SectionError {
	if se, ok := err.(*SectionError); ok {
		return se
	}
	return sectionError(title, err)
}
