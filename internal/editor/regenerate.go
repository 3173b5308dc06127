package editor

import (
	"context"
	"strings"

	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/prompt"
	"github.com/Hustada/prompt-architect/internal/sections"
)

// RegenerateSection asks gen for a new body of the section titled title and returns the
// re-joined document. Every other section is left byte-identical.
//
// On failure the unmodified document is returned together with a *SectionError.
func RegenerateSection(ctx context.Context, gen llm.Generator, markdown, title string, project prompt.ProjectContext) (string, error) {
	doc := sections.Parse(markdown)
	previous := sections.Combine(doc)
	if !doc.Has(title) {
		return previous, sectionError(title, ErrUnknownSection)
	}

	body, err := generateBody(ctx, gen, project, title, previous)
	if err != nil {
		return previous, sectionError(title, err)
	}
	doc.Set(title, body)
	return sections.Combine(doc), nil
}

func generateBody(ctx context.Context, gen llm.Generator, project prompt.ProjectContext, title, previous string) (string, error) {
	resp, err := gen.Generate(ctx, llm.Request{
		Project:          project,
		Section:          title,
		PreviousDocument: previous,
	})
	if err != nil {
		return "", err
	}
	body := strings.TrimSpace(resp.Markdown)
	if body == "" {
		return "", ErrEmptyContent
	}
	if !sections.FencesBalanced(body) {
		return "", ErrMalformedContent
	}
	return body, nil
}
