package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// fakeLLM records the messages it received and returns a canned answer.
type fakeLLM struct {
	answer   string
	err      error
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (l *fakeLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.messages = messages
	l.opts = opts
	return l.answer, l.err
}

func (l *fakeLLM) ModelName() string { return "fake-chat" }

func (l *fakeLLM) Close() error { return nil }

func searchHits() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{
			Chunk: domain.Chunk{
				ID:      1,
				DocID:   "/docs/physics.pdf",
				Index:   0,
				Content: "Newton's laws describe the motion of objects.",
				Metadata: map[string]any{
					"source_name": "physics.pdf",
					"page":        float64(3),
					"images":      []any{"fig1.png"},
				},
			},
			Score: 0.91,
		},
		{
			Chunk: domain.Chunk{
				ID:      2,
				DocID:   "/docs/biology.pdf",
				Index:   4,
				Content: "Cells are the basic unit of life.",
				Metadata: map[string]any{
					"source_name": "biology.pdf",
				},
			},
			Score: 0.42,
		},
	}
}

func TestQueryServiceAnswerGroundsPromptInHits(t *testing.T) {
	store := newFakeStore()
	store.hits = searchHits()
	llm := &fakeLLM{answer: "Objects in motion stay in motion."}

	svc := NewQueryService(store, newFakeEmbedder(), llm)

	answer, err := svc.Answer(context.Background(), "What do Newton's laws say?", 2)
	require.NoError(t, err)

	assert.Equal(t, "Objects in motion stay in motion.", answer.Answer)
	assert.Equal(t, 2, store.lastTopK)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Contains(t, llm.messages[0].Content, "ONLY the provided context")

	user := llm.messages[1]
	assert.Equal(t, "user", user.Role)
	assert.Contains(t, user.Content, "What do Newton's laws say?")
	assert.Contains(t, user.Content, "[Source: physics.pdf | chunk 0 | score 0.910]")
	assert.Contains(t, user.Content, "Newton's laws describe the motion of objects.")
	assert.Contains(t, user.Content, "[Source: biology.pdf | chunk 4 | score 0.420]")

	assert.InDelta(t, 0.2, llm.opts.Temperature, 1e-9)
}

func TestQueryServiceAnswerSources(t *testing.T) {
	store := newFakeStore()
	store.hits = searchHits()
	llm := &fakeLLM{answer: "See physics.pdf."}

	svc := NewQueryService(store, newFakeEmbedder(), llm)

	answer, err := svc.Answer(context.Background(), "question", 2)
	require.NoError(t, err)

	require.Len(t, answer.Sources, 2)

	first := answer.Sources[0]
	assert.Equal(t, "physics.pdf", first.SourceName)
	assert.Equal(t, 0, first.ChunkIndex)
	assert.InDelta(t, 0.91, first.Score, 1e-9)
	assert.Equal(t, 3, first.Page)
	assert.Equal(t, []string{"fig1.png"}, first.Images)

	second := answer.Sources[1]
	assert.Equal(t, "biology.pdf", second.SourceName)
	assert.Equal(t, domain.PageUnknown, second.Page)
	assert.Empty(t, second.Images)
}

func TestQueryServiceDefaultsTopK(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{answer: "I don't know."}

	svc := NewQueryService(store, newFakeEmbedder(), llm)

	_, err := svc.Answer(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, store.lastTopK)
}

func TestQueryServiceRejectsEmptyQuery(t *testing.T) {
	svc := NewQueryService(newFakeStore(), newFakeEmbedder(), &fakeLLM{})

	_, err := svc.Answer(context.Background(), "   ", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQueryServiceEmptyStoreStillAnswers(t *testing.T) {
	store := newFakeStore()
	llm := &fakeLLM{answer: "I don't know based on the provided context."}

	svc := NewQueryService(store, newFakeEmbedder(), llm)

	answer, err := svc.Answer(context.Background(), "anything indexed?", 5)
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Answer, "don't know")
}

func TestQueryServicePropagatesErrors(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		embedder := newFakeEmbedder()
		embedder.failFrom = 0
		embedder.err = errors.New("api down")

		svc := NewQueryService(newFakeStore(), embedder, &fakeLLM{})

		_, err := svc.Answer(context.Background(), "q", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding query")
	})

	t.Run("search failure", func(t *testing.T) {
		store := newFakeStore()
		store.searchErr = errors.New("db locked")

		svc := NewQueryService(store, newFakeEmbedder(), &fakeLLM{})

		_, err := svc.Answer(context.Background(), "q", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "searching chunks")
	})

	t.Run("llm failure", func(t *testing.T) {
		llm := &fakeLLM{err: errors.New("model overloaded")}

		svc := NewQueryService(newFakeStore(), newFakeEmbedder(), llm)

		_, err := svc.Answer(context.Background(), "q", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "generating answer")
	})
}
