package editor

import (
	"github.com/Hustada/prompt-architect/internal/sections"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SectionChange is the before/after body of one section.
type SectionChange struct {
	Title  string
	Before string
	After  string
}

// Changes lists the sections whose body differs between before and after, in the order
// they appear in after.
func Changes(before, after *sections.Document) []SectionChange {
	var out []SectionChange
	for _, s := range after.Sections() {
		prev, ok := before.Get(s.Title)
		if ok && prev == s.Body {
			continue
		}
		out = append(out, SectionChange{Title: s.Title, Before: prev, After: s.Body})
	}
	return out
}

// Diff renders a colored, human-readable diff between two section bodies.
func Diff(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
