package extractor

import "strings"

const fence = "```"

// fenceTags are the language tags accepted on an opening fence. The empty
// tag is a bare fence.
var fenceTags = map[string]bool{
	"":           true,
	"python":     true,
	"py":         true,
	"json":       true,
	"json5":      true,
	"javascript": true,
	"js":         true,
	"yaml":       true,
	"text":       true,
}

// StripFence removes a code fence surrounding text.
//
// text must already be trimmed. An opening fence with a recognized language
// tag and a closing fence are both removed and the remainder is trimmed. When
// the closing fence is missing, as in truncated output, only the opening
// line is removed. Text that does not start with a recognized fence is
// returned unchanged. StripFence is idempotent on fence-free input.
func StripFence(text string) string {
	if !strings.HasPrefix(text, fence) {
		return text
	}

	rest := text[len(fence):]
	var header, body string
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		header, body = rest[:nl], rest[nl+1:]
	} else {
		// Single line: ```json {...}```
		header, body = splitInlineTag(rest)
	}

	if !fenceTags[strings.ToLower(strings.TrimSpace(header))] {
		return text
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, fence)
	return strings.TrimSpace(body)
}

// splitInlineTag separates a leading language tag from the rest of a
// single-line fenced block.
func splitInlineTag(s string) (tag, body string) {
	if i := strings.IndexAny(s, " \t"); i >= 0 && fenceTags[strings.ToLower(s[:i])] {
		return s[:i], s[i+1:]
	}
	return "", s
}
