package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed caller input, such as an empty
	// query or mismatched batch lengths. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingAPIKey indicates the provider credential is absent.
	// This is fatal at startup, not recoverable.
	ErrMissingAPIKey = errors.New("provider API key is not set")

	// ErrNoTextExtracted indicates a document yielded no usable text from
	// either extraction strategy. The document is skipped, not fatal.
	ErrNoTextExtracted = errors.New("no text extracted")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Indexing and querying are impossible without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the completion service is not configured.
	// Retrieval still works; answer generation is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
