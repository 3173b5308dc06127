package sections

import "strings"

const sectionSeparator = "\n\n"

// Combine serializes doc back into markdown: "# Title\n\nBody" per section, separated by a
// blank line, with no trailing separator.
func Combine(doc *Document) string {
	if doc == nil || doc.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, doc.Len())
	for _, s := range doc.Sections() {
		parts = append(parts, renderSection(s))
	}
	return strings.Join(parts, sectionSeparator)
}

func renderSection(s Section) string {
	return headingMarker + s.Title + sectionSeparator + s.Body
}
