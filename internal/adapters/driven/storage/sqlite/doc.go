// Package sqlite implements the ChunkStore port on a single SQLite file.
//
// Chunk text and metadata live in one table; embeddings are stored as
// little-endian float32 blobs. Similarity search is a brute-force cosine
// scan over every stored embedding, which is the intended trade-off for
// small-to-medium corpora.
package sqlite
