package domain

// PageUnknown marks chunks produced by the full-text extraction fallback,
// where per-page boundaries are not available.
const PageUnknown = -1

// Chunk represents a stored span of document text, the unit of embedding
// and retrieval. Chunks are created once during indexing and never updated.
type Chunk struct {
	// ID is the store-assigned row identifier, monotonically increasing.
	ID int64

	// DocID identifies the source document (typically its file path).
	// Not unique on its own; (DocID, Index) is.
	DocID string

	// Index is the chunk's zero-based position within its document.
	// For any document the stored indices are exactly 0..count-1.
	Index int

	// Content is the chunk's raw text, non-empty after trimming.
	Content string

	// Metadata contains arbitrary key-value pairs. The store passes it
	// through unmodified.
	Metadata map[string]any

	// Embedding is the vector representation for similarity search.
	// All embeddings in one store share the same dimensionality.
	Embedding []float32
}

// ScoredChunk is a chunk annotated with its similarity to a query vector.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

// SourceRef is a single citation entry in an answer.
// It is derived from retrieval, not from the model's output.
type SourceRef struct {
	// SourceName is the display name of the document (file basename).
	SourceName string `json:"source_name"`

	// ChunkIndex is the cited chunk's position within its document.
	ChunkIndex int `json:"chunk_index"`

	// Score is the retrieval similarity score.
	Score float64 `json:"score"`

	// Page is the page number the chunk came from, or PageUnknown
	// when the document was extracted without page boundaries.
	Page int `json:"page"`

	// Images lists image references attached to the chunk, if any.
	Images []string `json:"images"`
}

// Answer is the result of a grounded question-answering run.
type Answer struct {
	// Answer is the completion model's response text.
	Answer string `json:"answer"`

	// Sources lists the retrieved chunks the answer was grounded on,
	// one entry per retrieval hit in rank order.
	Sources []SourceRef `json:"sources"`
}
