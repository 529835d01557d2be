// Package documents implements the document-backed retrieval source:
// ingestion of local text files into a vector store and similarity
// search over the indexed chunks, with a lexical fallback for queries
// the embedder cannot represent.
package documents

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/phuslu/log"

	"ask/internal/domain"
	"ask/internal/textutil"
)

// Source retrieves evidence snippets from locally ingested documents.
type Source struct {
	chunker          domain.Chunker
	embedder         domain.Embedder
	store            domain.VectorStore
	summarizer       domain.Summarizer
	topK             int
	summarySentences int
	logger           *log.Logger

	mu       sync.RWMutex
	chunks   []domain.Chunk
	docNames map[string]string
	docPaths map[string]string
}

func NewSource(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, summarizer domain.Summarizer, topK, summarySentences int, logger *log.Logger) *Source {
	if topK <= 0 {
		topK = 3
	}
	return &Source{
		chunker:          chunker,
		embedder:         embedder,
		store:            store,
		summarizer:       summarizer,
		topK:             topK,
		summarySentences: summarySentences,
		logger:           logger,
		docNames:         make(map[string]string),
		docPaths:         make(map[string]string),
	}
}

// Name identifies this source in logs and merge ordering.
func (s *Source) Name() string { return "documents" }

// Ingest loads the given paths (globs allowed), chunks them, prepares
// the embedder on the corpus and rebuilds the vector store. It returns
// a short summary of the ingested corpus for display.
func (s *Source) Ingest(paths []string) (string, error) {
	var docs []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !isPlainText(m) {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			docs = append(docs, domain.Document{ID: hashString(m), Path: m, Content: string(data)})
		}
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("no .txt or .md documents found")
	}

	var allChunks []domain.Chunk
	var allTexts []string
	var corpus strings.Builder
	names := make(map[string]string, len(docs))
	locations := make(map[string]string, len(docs))
	for _, d := range docs {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return "", err
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
		names[d.ID] = filepath.Base(d.Path)
		locations[d.ID] = d.Path
		corpus.WriteString("\n")
		corpus.WriteString(d.Content)
	}

	if err := s.embedder.Prepare(allTexts); err != nil {
		return "", err
	}
	vectors := make([][]float64, len(allChunks))
	for i := range allChunks {
		vec, err := s.embedder.Embed(allChunks[i].Text)
		if err != nil {
			return "", err
		}
		vectors[i] = vec
	}
	if err := s.store.Init(s.embedder.Dimension()); err != nil {
		return "", err
	}
	if err := s.store.Clear(); err != nil {
		return "", err
	}
	if err := s.store.Upsert(allChunks, vectors); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.chunks = allChunks
	s.docNames = names
	s.docPaths = locations
	s.mu.Unlock()

	s.logger.Info().Int("documents", len(docs)).Int("chunks", len(allChunks)).Msg("document corpus ingested")

	summary, err := s.summarizer.Summarize(corpus.String(), s.summarySentences)
	if err != nil {
		return "", err
	}
	return summary, nil
}

// Search embeds the question and returns the top matching chunks as
// snippets. When the question embeds to a zero vector, or similarity
// scores are all ~0, it falls back to lexical overlap ranking.
func (s *Source) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	s.mu.RLock()
	indexed := len(s.chunks)
	s.mu.RUnlock()
	if indexed == 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(question)
	if err != nil {
		return nil, err
	}
	if isZeroVector(vec) {
		return s.toSnippets(question, s.lexicalSearch(question)), nil
	}
	results, err := s.store.Search(vec, s.topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range results {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		results = s.lexicalSearch(question)
	}
	return s.toSnippets(question, results), nil
}

// lexicalSearch ranks chunks by Ochiai token overlap with the query.
func (s *Source) lexicalSearch(question string) []domain.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	qset := textutil.TokenSet(question)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(s.chunks))
	for i, ch := range s.chunks {
		scores[i] = pair{i, textutil.OverlapOchiai(qset, ch.Text)}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	topK := s.topK
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		p := scores[i]
		out = append(out, domain.SearchResult{Chunk: s.chunks[p.idx], Score: p.score})
	}
	return out
}

func (s *Source) toSnippets(question string, results []domain.SearchResult) []domain.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snippets := make([]domain.Snippet, 0, len(results))
	for _, r := range results {
		name := s.docNames[r.Chunk.DocumentID]
		path := s.docPaths[r.Chunk.DocumentID]
		if name == "" {
			name = r.Chunk.DocumentID
		}
		snippets = append(snippets, domain.Snippet{
			Title:          fmt.Sprintf("%s (section %d)", name, r.Chunk.Index+1),
			SourceLocation: fmt.Sprintf("%s#chunk-%d", path, r.Chunk.Index),
			Text:           focusSnippet(r.Chunk.Text, question, 300),
			OriginDomain:   name,
		})
	}
	return snippets
}

func isPlainText(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func isZeroVector(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
