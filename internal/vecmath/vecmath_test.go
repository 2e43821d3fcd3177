package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
)

func TestCosine_Identical(t *testing.T) {
	score := Cosine([]float32{1, 0, 0}, []float32{1, 0, 0})
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosine_Orthogonal(t *testing.T) {
	score := Cosine([]float32{1, 0}, []float32{0, 1})
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestCosine_Opposite(t *testing.T) {
	score := Cosine([]float32{1, 0}, []float32{-1, 0})
	assert.InDelta(t, -1.0, score, 1e-9)
}

func TestCosine_ZeroVector(t *testing.T) {
	// Degenerate vectors must not divide by zero.
	score := Cosine([]float32{0, 0}, []float32{1, 1})
	assert.Equal(t, 0.0, score)
}

func TestRankTopK_Ordering(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: 1, Embedding: []float32{1, 0}},
		{ID: 2, Embedding: []float32{0, 1}},
		{ID: 3, Embedding: []float32{1, 1}},
	}

	results := RankTopK(chunks, []float32{1, 0}, 2)

	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, int64(3), results[1].Chunk.ID)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)
}

func TestRankTopK_ClampsToAvailable(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: 1, Embedding: []float32{1, 0}},
		{ID: 2, Embedding: []float32{0, 1}},
	}

	results := RankTopK(chunks, []float32{1, 0}, 10)
	assert.Len(t, results, 2)
}

func TestRankTopK_Empty(t *testing.T) {
	results := RankTopK(nil, []float32{1, 0}, 5)
	assert.Empty(t, results)
}

func TestRankTopK_StableTieBreak(t *testing.T) {
	// Equal scores keep insertion order.
	chunks := []domain.Chunk{
		{ID: 7, Embedding: []float32{1, 0}},
		{ID: 8, Embedding: []float32{1, 0}},
		{ID: 9, Embedding: []float32{1, 0}},
	}

	results := RankTopK(chunks, []float32{1, 0}, 3)

	require.Len(t, results, 3)
	assert.Equal(t, int64(7), results[0].Chunk.ID)
	assert.Equal(t, int64(8), results[1].Chunk.ID)
	assert.Equal(t, int64(9), results[2].Chunk.ID)
}
