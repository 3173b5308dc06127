package sections

import (
	"fmt"
	"strings"
)

type WarningKind string

const (
	// WarnDuplicateTitle marks a title that appeared more than once; the last body won.
	WarnDuplicateTitle WarningKind = "duplicate-title"
	// WarnStrayHeading marks a body line that would be read as a new section on reparse.
	WarnStrayHeading WarningKind = "stray-heading"
	// WarnUnterminatedFence marks a code fence that is never closed; on reparse it hides
	// every heading that follows it.
	WarnUnterminatedFence WarningKind = "unterminated-fence"
)

// Warning describes a format irregularity that parsing tolerates but may lose content.
type Warning struct {
	Kind  WarningKind `json:"kind"`
	Title string      `json:"title"`
	Line  int         `json:"line"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnDuplicateTitle:
		return fmt.Sprintf("line %d: duplicate section %q overwrites the earlier one", w.Line, w.Title)
	case WarnStrayHeading:
		return fmt.Sprintf("line %d of section body: top-level heading %q will split the section", w.Line, w.Title)
	case WarnUnterminatedFence:
		return fmt.Sprintf("line %d of section body: code fence %q is never closed", w.Line, w.Title)
	default:
		return fmt.Sprintf("line %d: %s %q", w.Line, w.Kind, w.Title)
	}
}

// CheckBody reports top-level heading lines and an unclosed code fence inside a section
// body. Line numbers are relative to the body.
func CheckBody(body string) []Warning {
	var out []Warning
	for _, h := range scanHeadings(body) {
		if h.title == "" {
			continue
		}
		out = append(out, Warning{Kind: WarnStrayHeading, Title: h.title, Line: h.line})
	}
	if line, fence, open := openFence(body); open {
		out = append(out, Warning{Kind: WarnUnterminatedFence, Title: fence, Line: line})
	}
	return out
}

// FencesBalanced reports whether every code fence opened in text is closed again.
func FencesBalanced(text string) bool {
	_, _, open := openFence(text)
	return !open
}

// openFence returns the line number and text of a fence left open at the end of text.
func openFence(text string) (int, string, bool) {
	var (
		inFence  bool
		openLine int
		openText string
	)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !isFenceLine(line) {
			continue
		}
		inFence = !inFence
		if inFence {
			openLine, openText = i+1, strings.TrimSpace(line)
		}
	}
	return openLine, openText, inFence
}
