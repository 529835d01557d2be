// Package web implements the web-backed retrieval source: a Tavily API
// client with a DuckDuckGo HTML-scrape fallback, plus a fixed result
// table for demo mode and tests.
package web

import (
	"context"

	"github.com/phuslu/log"

	"ask/internal/domain"
)

// Source is the live web retrieval source. When the primary provider is
// configured it is tried first; on failure (or when no API key was
// available at startup) the keyless fallback serves the query.
type Source struct {
	primary  *TavilyClient
	fallback *DuckDuckGo
	logger   *log.Logger
}

// NewSource creates the web source. primary may be nil.
func NewSource(primary *TavilyClient, fallback *DuckDuckGo, logger *log.Logger) *Source {
	return &Source{primary: primary, fallback: fallback, logger: logger}
}

// Name identifies this source in logs and merge ordering.
func (s *Source) Name() string { return "web" }

// Search queries the primary provider and degrades to the fallback.
func (s *Source) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	if s.primary != nil {
		snippets, err := s.primary.Search(ctx, question)
		if err == nil {
			return snippets, nil
		}
		s.logger.Warn().Err(err).Msg("primary web search failed, using fallback")
	}
	return s.fallback.Search(ctx, question)
}
