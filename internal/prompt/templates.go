package prompt

import (
	"fmt"
	"strings"
)

type ProjectType string

const (
	Frontend  ProjectType = "frontend"
	Backend   ProjectType = "backend"
	Fullstack ProjectType = "fullstack"
)

var projectTypes = []ProjectType{Frontend, Backend, Fullstack}

func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range projectTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported project type: %q", s)
}

// SectionTemplate is one requested section of a generated document.
type SectionTemplate struct {
	Name        string
	Description string
	// Types limits the section to some project types; empty means all.
	Types []ProjectType
}

var catalog = []SectionTemplate{
	{Name: "Project Overview", Description: "A clear, concise description of the project"},
	{Name: "Tech Stack", Description: "Recommended technologies appropriate for this project"},
	{Name: "Features", Description: "Key functionality the application should include"},
	{Name: "Requirements", Description: "Specific implementation details and constraints"},
	{Name: "Architecture", Description: "High-level system design (if applicable)"},
	{Name: "API Endpoints", Description: "For backend/fullstack projects", Types: []ProjectType{Backend, Fullstack}},
	{Name: "UI Components", Description: "For frontend/fullstack projects", Types: []ProjectType{Frontend, Fullstack}},
	{Name: "Database Schema", Description: "For backend/fullstack projects (if applicable)", Types: []ProjectType{Backend, Fullstack}},
	{Name: "Deployment", Description: "Recommendations for deployment and hosting"},
}

// SectionsFor returns the sections requested for a project type, in document order.
func SectionsFor(t ProjectType) []SectionTemplate {
	var out []SectionTemplate
	for _, s := range catalog {
		if s.appliesTo(t) {
			out = append(out, s)
		}
	}
	return out
}

func (s SectionTemplate) appliesTo(t ProjectType) bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, allowed := range s.Types {
		if allowed == t {
			return true
		}
	}
	return false
}
