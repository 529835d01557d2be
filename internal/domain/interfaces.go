package domain

import "context"

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Snippet is one unit of retrieved evidence. Snippets are immutable
// once produced; the position of a snippet in a retrieval result
// defines its citation number downstream.
type Snippet struct {
	// Title is the display label of the source.
	Title string
	// SourceLocation is an opaque locator: a URL for web results, a
	// document path plus chunk offset for document results.
	SourceLocation string
	// Text is the retrieved passage, bounded by the retrieval step.
	Text string
	// OriginDomain is a human-readable source grouping (hostname or
	// filename), informational only.
	OriginDomain string
}

// Citation points back at the snippet that was numbered Index in the
// grounding context. Indices are 1-based and purely positional.
type Citation struct {
	Index          int
	Title          string
	SourceLocation string
	OriginDomain   string
}

// Result is a synthesized answer together with its citation table.
// Created once per query and handed to the caller; never cached.
type Result struct {
	Answer    string
	Citations []Citation
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Retriever produces evidence snippets for a question, ordered by
// relevance. An empty slice is a valid result. Implementations own
// their concurrency safety; each call returns a fresh slice.
type Retriever interface {
	Name() string
	Search(ctx context.Context, question string) ([]Snippet, error)
}

// Generator performs a single synthesis call against a text-generation
// backend. The context block may be empty, in which case the backend
// is instructed to answer from general knowledge and say so.
type Generator interface {
	Name() string
	Generate(ctx context.Context, question, contextBlock string) (string, error)
}
