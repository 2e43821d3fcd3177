// Package domain defines the core business entities for Docsage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A stored span of document text with its embedding
//   - ScoredChunk: A chunk annotated with a similarity score
//   - Answer: A grounded answer with source attributions
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
