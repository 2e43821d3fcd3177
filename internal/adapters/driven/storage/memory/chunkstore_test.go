package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
)

func TestAddMany_Validation(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	err := store.AddMany(ctx, "a.pdf",
		[]string{"one"},
		[]map[string]any{{"chunk_index": 0}, {"chunk_index": 1}},
		[][]float32{{1}})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, store.IndexedCount(ctx, "a.pdf"))
}

func TestAddMany_ContiguousIndices(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	require.NoError(t, store.AddMany(ctx, "a.pdf",
		[]string{"c0", "c1"},
		[]map[string]any{{}, {}},
		[][]float32{{1, 0}, {0, 1}}))
	require.NoError(t, store.AddMany(ctx, "a.pdf",
		[]string{"c2"},
		[]map[string]any{{}},
		[][]float32{{1, 1}}))

	chunks, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, int64(i+1), c.ID)
	}
}

func TestSearch_RankingAndClamp(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	require.NoError(t, store.AddMany(ctx, "a.pdf",
		[]string{"x", "y", "z"},
		[]map[string]any{{}, {}, {}},
		[][]float32{{1, 0}, {0, 1}, {1, 1}}))

	results, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "x", results[0].Chunk.Content)
	assert.Equal(t, "z", results[1].Chunk.Content)
	assert.Equal(t, "y", results[2].Chunk.Content)
}

func TestSearch_EmptyStore(t *testing.T) {
	store := NewChunkStore()

	results, err := store.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStats(t *testing.T) {
	store := NewChunkStore()
	ctx := context.Background()

	require.NoError(t, store.AddMany(ctx, "a.pdf",
		[]string{"a"}, []map[string]any{{}}, [][]float32{{1}}))
	require.NoError(t, store.AddMany(ctx, "b.pdf",
		[]string{"b"}, []map[string]any{{}}, [][]float32{{1}}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Documents)
}
