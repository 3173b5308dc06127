package sections

import (
	"strings"
)

const (
	headingMarker = "# "
	fenceMarker   = "```"
)

// heading is a top-level heading line located in the source text.
// start is the offset of the line, end the offset just past the heading text.
type heading struct {
	title string
	line  int
	start int
	end   int
}

// Parse splits markdown into a Document using top-level "# " headings as delimiters.
// Input without any heading yields an empty Document.
func Parse(markdown string) *Document {
	doc, _ := ParseWithWarnings(markdown)
	return doc
}

// ParseWithWarnings is Parse, additionally reporting titles that appear more than once.
// The later body wins for a repeated title.
func ParseWithWarnings(markdown string) (*Document, []Warning) {
	doc := NewDocument()
	var warnings []Warning

	var open *heading
	closeOpen := func(until int) {
		if open == nil || open.title == "" {
			return
		}
		if doc.Has(open.title) {
			warnings = append(warnings, Warning{Kind: WarnDuplicateTitle, Title: open.title, Line: open.line})
		}
		doc.Set(open.title, strings.TrimSpace(markdown[open.end:until]))
	}

	for _, h := range scanHeadings(markdown) {
		closeOpen(h.start)
		open = &h
	}
	closeOpen(len(markdown))

	return doc, warnings
}

// scanHeadings returns every top-level heading outside fenced code blocks, in order.
func scanHeadings(markdown string) []heading {
	var out []heading
	inFence := false
	offset := 0
	lineNo := 0

	for offset <= len(markdown) {
		lineNo++
		next := strings.IndexByte(markdown[offset:], '\n')
		var line string
		if next < 0 {
			line = markdown[offset:]
		} else {
			line = markdown[offset : offset+next]
		}
		line = strings.TrimSuffix(line, "\r")

		switch {
		case isFenceLine(line):
			inFence = !inFence
		case !inFence && isHeadingLine(line):
			out = append(out, heading{
				title: strings.TrimSpace(line[len(headingMarker):]),
				line:  lineNo,
				start: offset,
				end:   offset + len(line),
			})
		}

		if next < 0 {
			break
		}
		offset += next + 1
	}
	return out
}

func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), fenceMarker)
}

func isHeadingLine(line string) bool {
	return strings.HasPrefix(line, headingMarker) && len(line) > len(headingMarker)
}
