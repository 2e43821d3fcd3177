// Package memory provides an in-memory ChunkStore used in tests and for
// throwaway corpora where durability does not matter.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/vecmath"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	nextID int64
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{nextID: 1}
}

// AddMany appends a batch of chunks for one document. The whole batch is
// validated before anything is appended, mirroring the transactional
// all-or-nothing behaviour of the SQLite store.
func (s *ChunkStore) AddMany(
	_ context.Context,
	docID string,
	contents []string,
	metadatas []map[string]any,
	embeddings [][]float32,
) error {
	if len(contents) != len(metadatas) || len(contents) != len(embeddings) {
		return fmt.Errorf("%w: mismatched batch lengths: %d contents, %d metadatas, %d embeddings",
			domain.ErrInvalidInput, len(contents), len(metadatas), len(embeddings))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.countLocked(docID)
	for i := range contents {
		s.chunks = append(s.chunks, domain.Chunk{
			ID:        s.nextID,
			DocID:     docID,
			Index:     start + i,
			Content:   contents[i],
			Metadata:  metadatas[i],
			Embedding: embeddings[i],
		})
		s.nextID++
	}
	return nil
}

// IndexedCount returns the number of chunks stored for docID.
func (s *ChunkStore) IndexedCount(_ context.Context, docID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(docID)
}

// All returns every stored chunk in insertion order.
func (s *ChunkStore) All(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Search ranks all stored chunks by cosine similarity to the query vector.
func (s *ChunkStore) Search(ctx context.Context, query []float32, topK int) ([]domain.ScoredChunk, error) {
	chunks, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return vecmath.RankTopK(chunks, query, topK), nil
}

// Stats reports stored chunk and document counts.
func (s *ChunkStore) Stats(_ context.Context) (driven.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, c := range s.chunks {
		docs[c.DocID] = struct{}{}
	}
	return driven.StoreStats{
		Chunks:    len(s.chunks),
		Documents: len(docs),
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}

// countLocked counts chunks for docID. Caller must hold the lock.
func (s *ChunkStore) countLocked(docID string) int {
	count := 0
	for _, c := range s.chunks {
		if c.DocID == docID {
			count++
		}
	}
	return count
}
