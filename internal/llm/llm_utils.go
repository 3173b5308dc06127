package llm

import "strings"

// cleanMarkdownOutput unwraps a response the model fenced as a whole markdown block. The
// first line must open a markdown fence, the last line must close it, and the fences in
// between must pair up. Anything else is only trimmed.
func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)

	first, rest, ok := strings.Cut(text, "\n")
	if !ok {
		return text
	}
	if lang := strings.TrimSpace(strings.TrimPrefix(first, "```")); !strings.HasPrefix(first, "```") || (lang != "markdown" && lang != "md") {
		return text
	}

	inner, last := "", rest
	if i := strings.LastIndex(rest, "\n"); i >= 0 {
		inner, last = rest[:i], rest[i+1:]
	}
	if strings.TrimSpace(last) != "```" || !innerFencesPair(inner) {
		return text
	}
	return strings.TrimSpace(inner)
}

// innerFencesPair reports whether every fence inside an outer block opens and closes in
// pairs. A bare ``` outside an inner block would have closed the outer one.
func innerFencesPair(inner string) bool {
	inFence := false
	for _, line := range strings.Split(inner, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		if !inFence && trimmed == "```" {
			return false
		}
		inFence = !inFence
	}
	return !inFence
}

func finish(provider, model, text string) (Response, error) {
	text = cleanMarkdownOutput(text)
	if text == "" {
		return Response{}, emptyResponse(provider)
	}
	return Response{Markdown: text, Model: model}, nil
}
