package prompt

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system message to providers that accept one.
const SystemPrompt = "You are PromptArchitect, an expert in creating structured project specifications."

// ProjectContext is what every generation request carries about the user's project.
type ProjectContext struct {
	Type ProjectType `json:"projectType"`
	Idea string      `json:"projectIdea"`
}

func (p ProjectContext) Validate() error {
	if _, err := ParseProjectType(string(p.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(p.Idea) == "" {
		return fmt.Errorf("project idea is required")
	}
	return nil
}

// Builder constructs the prompts sent to the generation providers.
type Builder struct{}

// BuildDocumentPrompt asks for a complete specification with one "# " heading per section.
func (b *Builder) BuildDocumentPrompt(p ProjectContext) string {
	var sb strings.Builder
	sb.WriteString(SystemPrompt + "\n")
	sb.WriteString("Your task is to take a user's project idea and transform it into a comprehensive markdown document.\n\n")

	fmt.Fprintf(&sb, "USER'S PROJECT TYPE: %s (frontend, backend, or fullstack)\n", p.Type)
	fmt.Fprintf(&sb, "USER'S PROJECT IDEA: %s\n\n", strings.TrimSpace(p.Idea))

	sb.WriteString("Generate a structured markdown document with the following sections:\n")
	for i, s := range SectionsFor(p.Type) {
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, s.Name, s.Description)
	}

	sb.WriteString("\nFormat your response as clean markdown with proper headings (# for main sections),\n")
	sb.WriteString("lists (- for bullet points), and code blocks (``` for code snippets).\n\n")
	sb.WriteString("IMPORTANT: Your entire response must be valid markdown that can be directly used as a project specification.")
	return sb.String()
}

// BuildSectionPrompt asks for the body of one section only, given the previous document.
func (b *Builder) BuildSectionPrompt(p ProjectContext, section, previousDocument string) string {
	var sb strings.Builder
	sb.WriteString(SystemPrompt + "\n\n")
	fmt.Fprintf(&sb, "Previously, you generated the following markdown document for a %s project:\n\n", p.Type)
	sb.WriteString(strings.TrimSpace(previousDocument))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "The user would like you to regenerate the %q section with a different approach or more details.\n\n", section)
	fmt.Fprintf(&sb, "Please provide ONLY the content for the %q section. Do not include any other sections.\n\n", section)
	sb.WriteString("Format your response as clean markdown without the section heading.")
	return sb.String()
}
