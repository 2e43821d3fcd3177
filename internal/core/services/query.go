package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
	"github.com/docsage/docsage/internal/core/ports/driving"
	"github.com/docsage/docsage/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is the number of chunks retrieved when the caller does not
// specify one.
const DefaultTopK = 5

// answerTemperature keeps grounded answers close to the retrieved context.
const answerTemperature = 0.2

// systemPrompt directs the model to answer only from retrieved context.
const systemPrompt = `You are a helpful AI assistant specialized in science, math, and technology.
Use ONLY the provided context to answer the user's question. If the answer is not in the context,
say that you don't know. Always cite sources at the end using their source_name and chunk index.`

// contextRule visually separates retrieved chunks in the rendered context.
var contextRule = strings.Repeat("-", 80)

// QueryService answers questions grounded in the indexed corpus.
type QueryService struct {
	store    driven.ChunkStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
}

// NewQueryService creates a query orchestrator over the given store,
// embedding service and completion service.
func NewQueryService(
	store driven.ChunkStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) *QueryService {
	return &QueryService{
		store:    store,
		embedder: embedder,
		llm:      llm,
	}
}

// Answer embeds the query, retrieves the topK most similar chunks, renders
// them into a grounded prompt and returns the model's answer together with
// one source attribution per retrieved chunk.
func (s *QueryService) Answer(ctx context.Context, query string, topK int) (*domain.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Query")
	logger.Debug("Query: %q, topK: %d", query, topK)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.store.Search(ctx, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(hits))

	messages := []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: renderUserPrompt(query, hits)},
	}

	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &domain.Answer{
		Answer:  answer,
		Sources: sourceRefs(hits),
	}, nil
}

// renderUserPrompt builds the user message: the question followed by the
// retrieved context block.
func renderUserPrompt(query string, hits []domain.ScoredChunk) string {
	return fmt.Sprintf("Question:\n%s\n\nContext:\n%s\n\nAnswer:", query, formatContext(hits))
}

// formatContext renders retrieved chunks into a readable context block.
// Each hit gets a header with its source name, chunk index and score,
// followed by its raw text and a separator rule.
func formatContext(hits []domain.ScoredChunk) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[Source: %s | chunk %d | score %.3f]\n",
			metaString(h.Chunk.Metadata, "source_name"),
			h.Chunk.Index,
			h.Score)
		b.WriteString(h.Chunk.Content)
		b.WriteString("\n")
		b.WriteString(contextRule)
	}
	return b.String()
}

// sourceRefs derives the structured source list from retrieval hits.
// The list reflects what was retrieved, independent of what the model
// actually cited.
func sourceRefs(hits []domain.ScoredChunk) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, domain.SourceRef{
			SourceName: metaString(h.Chunk.Metadata, "source_name"),
			ChunkIndex: h.Chunk.Index,
			Score:      h.Score,
			Page:       metaPage(h.Chunk.Metadata),
			Images:     metaStrings(h.Chunk.Metadata, "images"),
		})
	}
	return refs
}

// metaString reads a string value from chunk metadata.
func metaString(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// metaPage reads the page number from chunk metadata. JSON decoding turns
// numbers into float64; missing or malformed values report PageUnknown.
func metaPage(meta map[string]any) int {
	switch v := meta["page"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return domain.PageUnknown
	}
}

// metaStrings reads a string slice from chunk metadata.
func metaStrings(meta map[string]any, key string) []string {
	out := []string{}
	switch v := meta[key].(type) {
	case []string:
		return append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
