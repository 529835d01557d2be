// Package service contains the retrieval-then-synthesis orchestrator:
// gather snippets from the configured sources, freeze their order,
// build the grounding context, make one generation call and pair the
// answer with its positional citation table.
package service

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/phuslu/log"

	"ask/internal/domain"
)

// Orchestrator runs one question through the pipeline. It holds no
// per-query state: every call is independent and safe to run
// concurrently with others.
type Orchestrator struct {
	sources         []domain.Retriever
	generator       domain.Generator
	maxSnippets     int
	snippetMaxChars int
	logger          *log.Logger
}

// New creates an orchestrator. The order of sources is the declared
// merge priority: snippets from sources[0] always precede snippets
// from sources[1], regardless of which retrieval call finishes first.
func New(sources []domain.Retriever, generator domain.Generator, maxSnippets, snippetMaxChars int, logger *log.Logger) *Orchestrator {
	if maxSnippets <= 0 {
		maxSnippets = 8
	}
	if snippetMaxChars <= 0 {
		snippetMaxChars = 3000
	}
	return &Orchestrator{
		sources:         sources,
		generator:       generator,
		maxSnippets:     maxSnippets,
		snippetMaxChars: snippetMaxChars,
		logger:          logger,
	}
}

// Answer resolves a question to a synthesized, cited answer.
//
// Retrieval failures are absorbed: the pipeline proceeds with whatever
// the remaining sources returned, or with no sources at all. Errors
// from the generation backend (and an empty question) are returned to
// the caller.
func (o *Orchestrator) Answer(ctx context.Context, question string) (*domain.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	snippets := o.retrieve(ctx, question)

	// The order is frozen here: the same slice feeds both the context
	// block and the citation table, so indices cannot drift.
	contextBlock := BuildContext(snippets)
	citations := CitationTable(snippets)

	answer, err := o.generator.Generate(ctx, question, contextBlock)
	if err != nil {
		return nil, err
	}
	return &domain.Result{Answer: answer, Citations: citations}, nil
}

// retrieve queries all sources concurrently and merges their results
// in declared source order, bounded by maxSnippets.
func (o *Orchestrator) retrieve(ctx context.Context, question string) []domain.Snippet {
	perSource := make([][]domain.Snippet, len(o.sources))
	var wg sync.WaitGroup
	for i, src := range o.sources {
		wg.Add(1)
		go func(i int, src domain.Retriever) {
			defer wg.Done()
			snippets, err := src.Search(ctx, question)
			if err != nil {
				o.logger.Warn().Err(err).Str("source", src.Name()).Msg("retrieval failed, continuing without this source")
				return
			}
			perSource[i] = snippets
		}(i, src)
	}
	wg.Wait()

	var merged []domain.Snippet
	for i, snippets := range perSource {
		if len(snippets) > 0 {
			o.logger.Debug().Str("source", o.sources[i].Name()).Int("snippets", len(snippets)).Msg("source returned results")
		}
		merged = append(merged, snippets...)
	}
	if len(merged) > o.maxSnippets {
		merged = merged[:o.maxSnippets]
	}
	for i := range merged {
		merged[i].Text = capText(merged[i].Text, o.snippetMaxChars)
	}
	return merged
}

func capText(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	// never cut a multibyte rune in half
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
