package documents

import (
	"strings"
	"unicode/utf8"

	"ask/internal/textutil"
)

// focusSnippet trims content to the window of at most maxLen bytes that
// contains the most query terms, scanning candidate windows at a
// 50-byte stride. Windows cut out of the middle are marked with "...".
func focusSnippet(content, question string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return strings.TrimSpace(content)
	}
	terms := textutil.ContentTokens(question)
	lower := strings.ToLower(content)

	bestPos := 0
	bestMatches := 0
	for pos := 0; pos <= len(content)-maxLen; pos += 50 {
		window := lower[pos : pos+maxLen]
		matches := 0
		for _, term := range terms {
			if strings.Contains(window, term) {
				matches++
			}
		}
		if matches > bestMatches {
			bestMatches = matches
			bestPos = pos
		}
	}

	// window edges land on byte offsets; pull them back to rune starts
	start, end := bestPos, bestPos+maxLen
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end--
	}
	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet += "..."
	}
	return strings.TrimSpace(snippet)
}
