package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyInput(t *testing.T) {
	doc := Parse("")
	assert.Equal(t, 0, doc.Len())
	assert.Empty(t, doc.Sections())
}

func TestParse_NoHeadingsYieldsEmptyDocument(t *testing.T) {
	doc := Parse("just some text\n#NoSpace here\n## Only a subheading")
	assert.Equal(t, 0, doc.Len())
}

func TestParse_TwoSectionsInOrder(t *testing.T) {
	doc := Parse("# A\ncontent A\n# B\ncontent B")

	assert.Equal(t, []string{"A", "B"}, doc.Titles())
	assert.Equal(t, []Section{
		{Title: "A", Body: "content A"},
		{Title: "B", Body: "content B"},
	}, doc.Sections())
}

func TestParse_DuplicateTitleLastWriteWins(t *testing.T) {
	doc, warnings := ParseWithWarnings("# A\nfirst\n# A\nsecond")

	require.Equal(t, 1, doc.Len())
	body, ok := doc.Get("A")
	require.True(t, ok)
	assert.Equal(t, "second", body)

	require.Len(t, warnings, 1)
	assert.Equal(t, WarnDuplicateTitle, warnings[0].Kind)
	assert.Equal(t, "A", warnings[0].Title)
	assert.Equal(t, 3, warnings[0].Line)
}

func TestParse_DuplicateTitleKeepsFirstPosition(t *testing.T) {
	doc := Parse("# A\none\n# B\ntwo\n# A\nthree")
	assert.Equal(t, []string{"A", "B"}, doc.Titles())
	body, _ := doc.Get("A")
	assert.Equal(t, "three", body)
}

func TestParse_FencedCodeKeptVerbatim(t *testing.T) {
	doc := Parse("# A\ntext\n```js\nconst x = 1;\n```\nmore text")

	require.Equal(t, 1, doc.Len())
	body, _ := doc.Get("A")
	assert.Equal(t, "text\n```js\nconst x = 1;\n```\nmore text", body)
}

func TestParse_HeadingInsideFenceIsNotDelimiter(t *testing.T) {
	md := "# Setup\n```bash\n# install deps\nnpm install\n```\n# Next\nbody"
	doc := Parse(md)

	assert.Equal(t, []string{"Setup", "Next"}, doc.Titles())
	body, _ := doc.Get("Setup")
	assert.Equal(t, "```bash\n# install deps\nnpm install\n```", body)
}

func TestParse_EmptyBodyKeepsKey(t *testing.T) {
	doc := Parse("# A\n# B\nb")

	assert.Equal(t, []string{"A", "B"}, doc.Titles())
	body, ok := doc.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "", body)
}

func TestParse_WhitespaceOnlyTrailingContent(t *testing.T) {
	doc := Parse("# A\n\n   \n\t\n")
	body, ok := doc.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "", body)
}

func TestParse_SubheadingsStayInBody(t *testing.T) {
	doc := Parse("# A\n## Sub\ntext\n### Deeper\nmore")
	require.Equal(t, 1, doc.Len())
	body, _ := doc.Get("A")
	assert.Equal(t, "## Sub\ntext\n### Deeper\nmore", body)
}

func TestParse_PreambleDropped(t *testing.T) {
	doc := Parse("Here is your document:\n\n# A\nx")
	assert.Equal(t, []string{"A"}, doc.Titles())
}

func TestParse_BlankTitleDropsItsContent(t *testing.T) {
	doc := Parse("# A\na\n#    \nlost\n# B\nb")

	assert.Equal(t, []string{"A", "B"}, doc.Titles())
	a, _ := doc.Get("A")
	assert.Equal(t, "a", a)
	b, _ := doc.Get("B")
	assert.Equal(t, "b", b)
}

func TestParse_TitleTrimmedAndCRLF(t *testing.T) {
	doc := Parse("#   Spaced Title  \r\nline1\r\n# B\r\nline2\r\n")

	assert.Equal(t, []string{"Spaced Title", "B"}, doc.Titles())
	a, _ := doc.Get("Spaced Title")
	assert.Equal(t, "line1", a)
	b, _ := doc.Get("B")
	assert.Equal(t, "line2", b)
}

func TestParse_Idempotent(t *testing.T) {
	md := "# A\none\n# B\ntwo"
	assert.Equal(t, Parse(md).Sections(), Parse(md).Sections())
}

func TestCombine(t *testing.T) {
	doc := NewDocument()
	doc.Set("A", "a")
	doc.Set("B", "")
	doc.Set("C", "c\n\n- item")

	assert.Equal(t, "# A\n\na\n\n# B\n\n\n\n# C\n\nc\n\n- item", Combine(doc))
	assert.Equal(t, "", Combine(NewDocument()))
	assert.Equal(t, "", Combine(nil))
}

func TestCombine_RoundTrip(t *testing.T) {
	docs := []*Document{
		NewDocument(),
		docOf("Project Overview", "A todo app.", "Tech Stack", "- Go\n- SQLite"),
		docOf("A", "", "B", "b"),
		docOf("Code", "```go\nfunc main() {}\n```", "Notes", "## Sub\ntext"),
	}
	for _, d := range docs {
		once := Combine(d)
		assert.Equal(t, once, Combine(Parse(once)))
		assert.Equal(t, d.Sections(), Parse(once).Sections())
	}
}

func TestCombine_NormalizedInputIsStable(t *testing.T) {
	md := "# A\n\ncontent A\n\n# B\n\ncontent B"
	assert.Equal(t, md, Combine(Parse(md)))
}

// A body carrying its own top-level heading is split on reparse. This is a known
// limitation of the format, not something Combine compensates for.
func TestCombine_EmbeddedHeadingIsBoundaryCase(t *testing.T) {
	d := docOf("A", "intro\n# Rogue\nmore")

	reparsed := Parse(Combine(d))
	assert.Equal(t, []string{"A", "Rogue"}, reparsed.Titles())

	warnings := CheckBody("intro\n# Rogue\nmore")
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnStrayHeading, warnings[0].Kind)
	assert.Equal(t, "Rogue", warnings[0].Title)
	assert.Equal(t, 2, warnings[0].Line)
}

func TestCheckBody_IgnoresFencesAndSubheadings(t *testing.T) {
	assert.Empty(t, CheckBody("## Sub\n```sh\n# comment\n```\ntext"))
}

func TestCheckBody_UnterminatedFence(t *testing.T) {
	body := "# Example\n```\nUse the format above."
	warnings := CheckBody(body)
	require.Len(t, warnings, 2)
	assert.Equal(t, WarnStrayHeading, warnings[0].Kind)
	assert.Equal(t, WarnUnterminatedFence, warnings[1].Kind)
	assert.Equal(t, "```", warnings[1].Title)
	assert.Equal(t, 2, warnings[1].Line)

	// An open fence inside a section hides every heading after it.
	joined := Combine(docOf("A", body, "B", "beta", "C", "gamma"))
	assert.Equal(t, []string{"A", "Example"}, Parse(joined).Titles())
}

func TestFencesBalanced(t *testing.T) {
	assert.True(t, FencesBalanced(""))
	assert.True(t, FencesBalanced("text\n```go\nx := 1\n```\nmore"))
	assert.True(t, FencesBalanced("```markdown\n# Example\n```\nUse the format above."))
	assert.False(t, FencesBalanced("```markdown\n# Example"))
	assert.False(t, FencesBalanced("a\r\n  ```js\r\nconst x = 1;\r\n"))
}

func TestDocument_SetKeepsPositionAndCloneIsIndependent(t *testing.T) {
	d := docOf("A", "1", "B", "2")
	d.Set("A", "3")
	assert.Equal(t, []string{"A", "B"}, d.Titles())

	c := d.Clone()
	c.Set("B", "changed")
	c.Set("C", "new")
	b, _ := d.Get("B")
	assert.Equal(t, "2", b)
	assert.False(t, d.Has("C"))
}

func TestWarning_String(t *testing.T) {
	w := Warning{Kind: WarnDuplicateTitle, Title: "A", Line: 3}
	assert.Contains(t, w.String(), `"A"`)
	assert.Contains(t, w.String(), "line 3")
}

func docOf(kv ...string) *Document {
	d := NewDocument()
	for i := 0; i+1 < len(kv); i += 2 {
		d.Set(kv[i], kv[i+1])
	}
	return d
}
