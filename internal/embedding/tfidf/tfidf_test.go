package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Tomatoes grow best in full sun with regular watering.",
	"Jupiter is the largest planet in the solar system.",
	"The storm on Jupiter has persisted for centuries.",
}

func TestEmbedBeforePrepare(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed("anything")
	require.Error(t, err)
}

func TestPrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	require.Error(t, e.Prepare(nil))
}

func TestEmbedProducesNormalizedVectors(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	require.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed("the largest planet Jupiter")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestEmbedRanksRelatedTextHigher(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	query, err := e.Embed("Jupiter planet")
	require.NoError(t, err)
	related, err := e.Embed(corpus[1])
	require.NoError(t, err)
	unrelated, err := e.Embed(corpus[0])
	require.NoError(t, err)

	assert.Greater(t, cosine(query, related), cosine(query, unrelated))
}

func TestEmbedUnknownTokensYieldZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	vec, err := e.Embed("quantum chromodynamics")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func cosine(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
