package llm

import (
	"context"

	"github.com/Hustada/prompt-architect/internal/prompt"
)

// Request describes one call to a generation provider. With Section set the provider must
// return only that section's body, without its heading; otherwise a full document.
type Request struct {
	Project          prompt.ProjectContext
	Section          string
	PreviousDocument string
}

// IsSection reports whether the request targets a single section.
func (r Request) IsSection() bool {
	return r.Section != ""
}

type Response struct {
	Markdown string
	Model    string
}

// Generator is the LLM-backed collaborator that produces documents and section bodies.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Name is the provider identifier, e.g. "openai".
	Name() string
}

func buildPrompt(pb *prompt.Builder, req Request) string {
	if req.IsSection() {
		return pb.BuildSectionPrompt(req.Project, req.Section, req.PreviousDocument)
	}
	return pb.BuildDocumentPrompt(req.Project)
}
