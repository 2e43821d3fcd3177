package driven

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// ChunkStore provides durable chunk persistence and similarity search.
//
// The brute-force SQLite implementation scans every stored embedding per
// query, which is acceptable for small-to-medium corpora. Search is part of
// this interface so an approximate-nearest-neighbour backend can replace the
// scan without changing callers.
type ChunkStore interface {
	// AddMany appends a batch of chunks for one document in a single
	// atomic transaction: all rows are persisted or none. The contents,
	// metadatas and embeddings slices must be equal length; a mismatch
	// fails with domain.ErrInvalidInput before anything is written.
	//
	// Per-document chunk indices continue from the document's current
	// stored count, so batches appended in emission order always yield a
	// contiguous 0..count-1 sequence.
	AddMany(ctx context.Context, docID string, contents []string, metadatas []map[string]any, embeddings [][]float32) error

	// IndexedCount returns the number of chunks stored for docID.
	// Storage errors are swallowed and reported as 0: the count is only a
	// resume-point heuristic, and treating failure as "nothing stored"
	// favours forward progress over strict accuracy.
	IndexedCount(ctx context.Context, docID string) int

	// All returns every stored chunk with metadata and embedding decoded.
	All(ctx context.Context) ([]domain.Chunk, error)

	// Search returns up to topK chunks ranked by descending cosine
	// similarity to the query vector. An empty store yields an empty
	// result, and topK larger than the stored count returns everything.
	// Ties are broken by insertion order (lowest ID first).
	Search(ctx context.Context, query []float32, topK int) ([]domain.ScoredChunk, error)

	// Stats reports the stored chunk and document counts.
	Stats(ctx context.Context) (StoreStats, error)

	// Close releases the underlying storage handle.
	Close() error
}

// StoreStats summarises store contents.
type StoreStats struct {
	// Chunks is the total number of stored chunk records.
	Chunks int `json:"chunks"`

	// Documents is the number of distinct doc IDs.
	Documents int `json:"documents"`
}
