package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ask/internal/domain"
)

type fakeSource struct {
	name     string
	snippets []domain.Snippet
	err      error
	delay    time.Duration
	calls    int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, question string) ([]domain.Snippet, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.snippets, f.err
}

type fakeGenerator struct {
	answer      string
	err         error
	calls       int32
	lastContext atomic.Value
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.lastContext.Store(contextBlock)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func discardLogger() *log.Logger {
	return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

func webFixtures() []domain.Snippet {
	return []domain.Snippet{
		{
			Title:          "What is Artificial Intelligence (AI)? | IBM",
			SourceLocation: "https://www.ibm.com/topics/artificial-intelligence",
			Text:           "Artificial intelligence leverages computers and machines to mimic human problem-solving.",
			OriginDomain:   "ibm.com",
		},
		{
			Title:          "Artificial Intelligence | Stanford HAI",
			SourceLocation: "https://hai.stanford.edu/what-ai",
			Text:           "AI is a broad field of computer science concerned with building smart machines.",
			OriginDomain:   "stanford.edu",
		},
	}
}

func TestAnswerCitesSnippetsInRetrievalOrder(t *testing.T) {
	source := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{answer: "AI mimics human intelligence [1][2]."}
	orch := New([]domain.Retriever{source}, gen, 8, 3000, discardLogger())

	result, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)

	require.Len(t, result.Citations, 2)
	assert.Equal(t, 1, result.Citations[0].Index)
	assert.Equal(t, "ibm.com", result.Citations[0].OriginDomain)
	assert.Equal(t, 2, result.Citations[1].Index)
	assert.Equal(t, "stanford.edu", result.Citations[1].OriginDomain)

	contextBlock := gen.lastContext.Load().(string)
	ibm := strings.Index(contextBlock, "[1] What is Artificial Intelligence (AI)? | IBM")
	stanford := strings.Index(contextBlock, "[2] Artificial Intelligence | Stanford HAI")
	require.GreaterOrEqual(t, ibm, 0, "context block must label the first snippet [1]")
	require.Greater(t, stanford, ibm, "context block must label the second snippet [2], after the first")
}

func TestAnswerRejectsEmptyQuestionBeforeAnyCall(t *testing.T) {
	for _, question := range []string{"", "   ", "\n\t"} {
		t.Run(fmt.Sprintf("%q", question), func(t *testing.T) {
			source := &fakeSource{name: "web", snippets: webFixtures()}
			gen := &fakeGenerator{answer: "unused"}
			orch := New([]domain.Retriever{source}, gen, 8, 3000, discardLogger())

			_, err := orch.Answer(context.Background(), question)
			require.ErrorIs(t, err, domain.ErrEmptyQuestion)
			assert.Zero(t, atomic.LoadInt32(&source.calls), "no retrieval call may be made")
			assert.Zero(t, atomic.LoadInt32(&gen.calls), "no generation call may be made")
		})
	}
}

func TestAnswerProceedsWithoutSnippets(t *testing.T) {
	tests := []struct {
		name    string
		sources []domain.Retriever
	}{
		{"no sources at all", nil},
		{"source returns nothing", []domain.Retriever{&fakeSource{name: "web"}}},
		{"all sources fail", []domain.Retriever{
			&fakeSource{name: "documents", err: errors.New("index unavailable")},
			&fakeSource{name: "web", err: errors.New("network down")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{answer: "No sources were available; answering from general knowledge."}
			orch := New(tt.sources, gen, 8, 3000, discardLogger())

			result, err := orch.Answer(context.Background(), "What is artificial intelligence?")
			require.NoError(t, err)
			assert.NotEmpty(t, result.Answer)
			assert.Empty(t, result.Citations)
			assert.Empty(t, gen.lastContext.Load().(string))
		})
	}
}

func TestAnswerAbsorbsPartialRetrievalFailure(t *testing.T) {
	failing := &fakeSource{name: "documents", err: errors.New("index unavailable")}
	working := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{answer: "grounded answer [1]"}
	orch := New([]domain.Retriever{failing, working}, gen, 8, 3000, discardLogger())

	result, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)
	require.Len(t, result.Citations, 2)
	assert.Equal(t, "ibm.com", result.Citations[0].OriginDomain)
}

func TestAnswerSurfacesAuthFailureWithoutRetry(t *testing.T) {
	source := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{err: fmt.Errorf("%w: invalid key", domain.ErrAuthFailed)}
	orch := New([]domain.Retriever{source}, gen, 8, 3000, discardLogger())

	_, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.ErrorIs(t, err, domain.ErrAuthFailed)
	assert.NotErrorIs(t, err, domain.ErrNoCompletion)
	assert.Equal(t, int32(1), atomic.LoadInt32(&gen.calls), "a single attempt, no retry")
}

func TestAnswerSurfacesGenericGenerationFailure(t *testing.T) {
	source := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{err: errors.New("backend error: 503 Service Unavailable")}
	orch := New([]domain.Retriever{source}, gen, 8, 3000, discardLogger())

	_, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAuthFailed)
}

func TestAnswerMergesSourcesInDeclaredOrder(t *testing.T) {
	// The document source is deliberately slower than the web source:
	// completion order must not influence merge order.
	docs := &fakeSource{
		name:  "documents",
		delay: 30 * time.Millisecond,
		snippets: []domain.Snippet{
			{Title: "notes.txt (section 1)", SourceLocation: "notes.txt#chunk-0", Text: "local evidence", OriginDomain: "notes.txt"},
		},
	}
	webSrc := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{answer: "merged [1][2][3]"}
	orch := New([]domain.Retriever{docs, webSrc}, gen, 8, 3000, discardLogger())

	result, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)
	require.Len(t, result.Citations, 3)
	assert.Equal(t, "notes.txt", result.Citations[0].OriginDomain, "document results precede web results")
	assert.Equal(t, "ibm.com", result.Citations[1].OriginDomain)
	assert.Equal(t, "stanford.edu", result.Citations[2].OriginDomain)
}

func TestAnswerBoundsSnippetCountAndLength(t *testing.T) {
	var many []domain.Snippet
	for i := 0; i < 6; i++ {
		many = append(many, domain.Snippet{
			Title:          fmt.Sprintf("Result %d", i+1),
			SourceLocation: fmt.Sprintf("https://example.com/%d", i+1),
			Text:           strings.Repeat("x", 500),
			OriginDomain:   "example.com",
		})
	}
	source := &fakeSource{name: "web", snippets: many}
	gen := &fakeGenerator{answer: "bounded"}
	orch := New([]domain.Retriever{source}, gen, 3, 100, discardLogger())

	result, err := orch.Answer(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, result.Citations, 3)
	for i, c := range result.Citations {
		assert.Equal(t, i+1, c.Index)
	}
	contextBlock := gen.lastContext.Load().(string)
	assert.NotContains(t, contextBlock, strings.Repeat("x", 101), "snippet text must be capped")
}

func TestAnswerSnippetCapKeepsValidUTF8(t *testing.T) {
	source := &fakeSource{name: "web", snippets: []domain.Snippet{
		{
			Title:          "Multibyte source",
			SourceLocation: "https://example.com/multibyte",
			Text:           strings.Repeat("é", 40),
			OriginDomain:   "example.com",
		},
	}}
	gen := &fakeGenerator{answer: "ok"}
	orch := New([]domain.Retriever{source}, gen, 8, 21, discardLogger())

	_, err := orch.Answer(context.Background(), "anything")
	require.NoError(t, err)
	contextBlock := gen.lastContext.Load().(string)
	assert.True(t, utf8.ValidString(contextBlock), "truncation must not split a rune")
	assert.Contains(t, contextBlock, strings.Repeat("é", 10))
}

func TestAnswerCitationTableIsDeterministic(t *testing.T) {
	source := &fakeSource{name: "web", snippets: webFixtures()}
	gen := &fakeGenerator{answer: "first phrasing"}
	orch := New([]domain.Retriever{source}, gen, 8, 3000, discardLogger())

	first, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)

	// The answer text may vary between runs; the citation table may not.
	gen.answer = "a different phrasing of the same answer"
	second, err := orch.Answer(context.Background(), "What is artificial intelligence?")
	require.NoError(t, err)

	assert.Equal(t, first.Citations, second.Citations)
	assert.NotEqual(t, first.Answer, second.Answer)
}
