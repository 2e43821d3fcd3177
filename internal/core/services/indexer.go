package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/docsage/docsage/internal/chunker"
	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// DefaultBatchSize is the number of chunks embedded and persisted per batch.
const DefaultBatchSize = 64

// minExtractedChars is the minimum combined page text length below which
// the page-aware extraction is considered unreliable and the pipeline
// falls back to full-text extraction.
const minExtractedChars = 100

// Indexer walks a document tree and turns each PDF into durably stored,
// embedded chunks. Each batch is persisted immediately after its embeddings
// arrive, so an interrupted run resumes from the last stored batch.
type Indexer struct {
	store     driven.ChunkStore
	embedder  driven.EmbeddingService
	extractor driven.TextExtractor
	splitter  *chunker.Chunker
	batchSize int
	limiter   *rate.Limiter
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithBatchSize sets the embedding batch size.
func WithBatchSize(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.batchSize = n
		}
	}
}

// WithRateLimiter throttles embedding batches. Nil disables throttling.
func WithRateLimiter(l *rate.Limiter) IndexerOption {
	return func(ix *Indexer) {
		ix.limiter = l
	}
}

// WithChunker replaces the default chunker configuration.
func WithChunker(c *chunker.Chunker) IndexerOption {
	return func(ix *Indexer) {
		if c != nil {
			ix.splitter = c
		}
	}
}

// NewIndexer creates an indexing pipeline over the given store, embedding
// service and text extractor.
func NewIndexer(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	extractor driven.TextExtractor,
	opts ...IndexerOption,
) *Indexer {
	ix := &Indexer{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		splitter:  chunker.New(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexDir walks dir for PDF files and indexes each one sequentially.
// Extraction problems skip the document and continue; embedding or storage
// failures abort the run, since they indicate a systemic problem better
// fixed and resumed than retried per document.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (*driving.IndexReport, error) {
	logger.Section("Indexing")
	logger.Debug("Walking %s", dir)

	report := &driving.IndexReport{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		return ix.indexOne(ctx, path, report)
	})
	if err != nil {
		return report, fmt.Errorf("indexing %s: %w", dir, err)
	}

	logger.Info("Indexing complete: %d documents indexed, %d skipped, %d chunks stored",
		report.DocumentsIndexed, report.DocumentsSkipped, report.ChunksStored)
	return report, nil
}

// IndexFile indexes a single document.
func (ix *Indexer) IndexFile(ctx context.Context, path string) (*driving.IndexReport, error) {
	report := &driving.IndexReport{}
	if err := ix.indexOne(ctx, path, report); err != nil {
		return report, err
	}
	return report, nil
}

// indexOne runs the full pipeline for one document, updating report.
// Skip conditions (no text, no chunks, already indexed) return nil.
func (ix *Indexer) indexOne(ctx context.Context, path string, report *driving.IndexReport) error {
	logger.Info("Processing: %s", path)

	pieces, err := ix.extract(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNoTextExtracted) {
			logger.Warn("No text extracted from %s, skipping", path)
			report.DocumentsSkipped++
			return nil
		}
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	if len(pieces) == 0 {
		logger.Warn("No chunks produced for %s, skipping", path)
		report.DocumentsSkipped++
		return nil
	}

	// Resume check: rows already stored for this document count as done.
	total := len(pieces)
	already := ix.store.IndexedCount(ctx, path)
	if already >= total {
		logger.Info("Skipping (already indexed): %s (%d/%d)", path, already, total)
		report.DocumentsSkipped++
		return nil
	}
	if already > 0 {
		logger.Info("Resuming at chunk %d of %d for %s", already, total, path)
	}

	metadatas := make([]map[string]any, total)
	for i, p := range pieces {
		metadatas[i] = map[string]any{
			"source_path": path,
			"source_name": filepath.Base(path),
			"chunk_index": i,
			"page":        p.Page,
		}
	}

	for start := already; start < total; start += ix.batchSize {
		end := start + ix.batchSize
		if end > total {
			end = total
		}

		contents := make([]string, 0, end-start)
		for _, p := range pieces[start:end] {
			contents = append(contents, p.Text)
		}

		if ix.limiter != nil {
			if err := ix.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("waiting for rate limiter: %w", err)
			}
		}

		embeddings, err := ix.embedder.EmbedBatch(ctx, contents)
		if err != nil {
			logger.Error("Embedding batch for %s failed: %v", path, err)
			logger.Error("Re-run the indexer to resume from the last stored batch.")
			return fmt.Errorf("embedding chunks %d..%d of %s: %w", start, end-1, path, err)
		}

		// Persist immediately so a later failure keeps this batch.
		if err := ix.store.AddMany(ctx, path, contents, metadatas[start:end], embeddings); err != nil {
			logger.Error("Storing batch for %s failed: %v", path, err)
			logger.Error("Re-run the indexer to resume from the last stored batch.")
			return fmt.Errorf("storing chunks %d..%d of %s: %w", start, end-1, path, err)
		}

		report.ChunksStored += end - start
		logger.Info("Stored %d/%d chunks for %s", end, total, path)
	}

	report.DocumentsIndexed++
	logger.Info("Indexed %d chunks from %s", total, path)
	return nil
}

// extract produces the document's chunk pieces. Page-aware extraction is
// tried first; when its combined output is shorter than minExtractedChars
// the document falls back to full-text extraction with page numbers lost.
func (ix *Indexer) extract(ctx context.Context, path string) ([]chunker.Piece, error) {
	pages, err := ix.extractor.ExtractPages(ctx, path)
	if err != nil {
		logger.Debug("Page-aware extraction failed for %s: %v", path, err)
		pages = nil
	}

	combined := len(strings.TrimSpace(strings.Join(pages, "\n")))
	if combined >= minExtractedChars {
		logger.Debug("Extracted %d pages from %s", len(pages), path)
		return ix.splitter.SplitPages(pages), nil
	}

	logger.Debug("Page-aware extraction too short (%d chars), falling back for %s", combined, path)
	text, err := ix.extractor.ExtractText(ctx, path)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoTextExtracted
	}
	return ix.splitter.SplitText(text), nil
}
