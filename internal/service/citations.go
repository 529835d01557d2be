package service

import "ask/internal/domain"

// CitationTable pairs each snippet with its 1-based position. The
// mapping is purely positional: no matching against the generated text
// is performed, and every snippet gets exactly one entry whether or
// not the model referenced it.
func CitationTable(snippets []domain.Snippet) []domain.Citation {
	citations := make([]domain.Citation, len(snippets))
	for i, s := range snippets {
		citations[i] = domain.Citation{
			Index:          i + 1,
			Title:          s.Title,
			SourceLocation: s.SourceLocation,
			OriginDomain:   s.OriginDomain,
		}
	}
	return citations
}
