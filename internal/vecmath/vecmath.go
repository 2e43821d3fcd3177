// Package vecmath provides the similarity arithmetic shared by the chunk
// store implementations.
package vecmath

import (
	"math"
	"sort"

	"github.com/docsage/docsage/internal/core/domain"
)

// epsilon keeps the cosine denominator non-zero for degenerate vectors.
const epsilon = 1e-12

// Cosine computes the cosine similarity between two vectors of equal
// length. An all-zero vector scores 0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	return dot / (math.Sqrt(na2)*math.Sqrt(nb2) + epsilon)
}

// RankTopK scores every chunk against the query vector and returns up to
// topK results by descending similarity. The sort is stable, so equal
// scores keep insertion order. topK larger than the number of chunks
// returns everything ranked; an empty input returns an empty slice.
func RankTopK(chunks []domain.Chunk, query []float32, topK int) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, domain.ScoredChunk{
			Chunk: c,
			Score: Cosine(query, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
