package driving

import "context"

// Indexer turns a directory of source documents into stored chunk records.
type Indexer interface {
	// IndexDir walks dir for PDF documents and indexes each one.
	// Re-running on unchanged input is a no-op: already indexed documents
	// are skipped and partially indexed documents resume from their last
	// durably stored batch.
	IndexDir(ctx context.Context, dir string) (*IndexReport, error)

	// IndexFile indexes a single document.
	IndexFile(ctx context.Context, path string) (*IndexReport, error)
}

// IndexReport summarises an indexing run.
type IndexReport struct {
	// DocumentsIndexed counts documents that had at least one chunk stored
	// during this run.
	DocumentsIndexed int

	// DocumentsSkipped counts documents skipped as already fully indexed
	// or yielding no text.
	DocumentsSkipped int

	// ChunksStored counts chunk records persisted during this run.
	ChunksStored int
}
