package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ask/internal/domain"
)

func testChunks() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{DocumentID: "d1", ChunkID: "d1:0", Text: "north", Index: 0},
		{DocumentID: "d1", ChunkID: "d1:1", Text: "east", Index: 1},
		{DocumentID: "d2", ChunkID: "d2:0", Text: "diagonal", Index: 0},
	}
	vectors := [][]float64{
		{1, 0},
		{0, 1},
		{0.7071, 0.7071},
	}
	return chunks, vectors
}

func TestSearchOrdersByCosine(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))

	results, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "d1:0", results[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "d2:0", results[1].Chunk.ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchTopKBeyondSize(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))

	results, err := s.Search([]float64{0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	chunks, vectors := testChunks()
	require.Error(t, s.Upsert(chunks, vectors))
}

func TestUpsertLengthMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.Error(t, s.Upsert(chunks[:2], vectors))
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	s := NewStorage()
	require.Error(t, s.Init(0))
	require.Error(t, s.Init(-1))
}

func TestClear(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(chunks, vectors))
	require.NoError(t, s.Clear())

	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
