// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Chunk persistence and similarity search
//   - EmbeddingService: Generates vector embeddings
//   - TextExtractor: Extracts text from source documents
//
// # Optional Interfaces
//
//   - LLMService: Completion model. Without it, query answering is disabled
//     but indexing and raw retrieval still work.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
