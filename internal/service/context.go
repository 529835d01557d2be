package service

import (
	"fmt"
	"strings"

	"ask/internal/domain"
)

// BuildContext renders the frozen snippet sequence as the numbered
// grounding block given to the generation backend. The input order is
// preserved exactly; it is the single source of truth for citation
// numbering. An empty sequence yields an empty string.
func BuildContext(snippets []domain.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&b, "[%d] %s\nSource: %s\nURL: %s\nContent: %s\n\n", i+1, s.Title, s.OriginDomain, s.SourceLocation, s.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
