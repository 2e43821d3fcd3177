package cli

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
)

// stubIndexer returns a canned report.
type stubIndexer struct {
	report  *driving.IndexReport
	err     error
	gotDirs []string
}

func (s *stubIndexer) IndexDir(_ context.Context, dir string) (*driving.IndexReport, error) {
	s.gotDirs = append(s.gotDirs, dir)
	return s.report, s.err
}

func (s *stubIndexer) IndexFile(_ context.Context, path string) (*driving.IndexReport, error) {
	return s.report, s.err
}

// stubQueryService returns a canned answer.
type stubQueryService struct {
	answer   *domain.Answer
	err      error
	gotQuery string
	gotTopK  int
}

func (s *stubQueryService) Answer(_ context.Context, query string, topK int) (*domain.Answer, error) {
	s.gotQuery = query
	s.gotTopK = topK
	return s.answer, s.err
}

// stubChunkStore serves canned stats.
type stubChunkStore struct {
	stats driven.StoreStats
}

func (s *stubChunkStore) AddMany(context.Context, string, []string, []map[string]any, [][]float32) error {
	return nil
}
func (s *stubChunkStore) IndexedCount(context.Context, string) int { return 0 }

func (s *stubChunkStore) All(context.Context) ([]domain.Chunk, error) { return nil, nil }

func (s *stubChunkStore) Search(context.Context, []float32, int) ([]domain.ScoredChunk, error) {
	return nil, nil
}

func (s *stubChunkStore) Stats(context.Context) (driven.StoreStats, error) { return s.stats, nil }

func (s *stubChunkStore) Close() error { return nil }

// setupTestServices installs stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prevIndexer := indexerService
	prevQuery := queryService
	prevStore := chunkStore

	indexerService = &stubIndexer{report: &driving.IndexReport{DocumentsIndexed: 2, ChunksStored: 10}}
	queryService = &stubQueryService{answer: &domain.Answer{
		Answer: "Stubbed answer.",
		Sources: []domain.SourceRef{
			{SourceName: "physics.pdf", ChunkIndex: 0, Score: 0.9, Page: 2},
		},
	}}
	chunkStore = &stubChunkStore{stats: driven.StoreStats{Chunks: 10, Documents: 2}}

	return func() {
		indexerService = prevIndexer
		queryService = prevQuery
		chunkStore = prevStore
	}
}
