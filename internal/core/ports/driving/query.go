package driving

import (
	"context"

	"github.com/docsage/docsage/internal/core/domain"
)

// QueryService answers questions grounded in the indexed corpus.
type QueryService interface {
	// Answer embeds the query, retrieves the topK most similar chunks and
	// produces a grounded answer with source attributions. An empty query
	// fails with domain.ErrInvalidInput. topK <= 0 uses the default.
	Answer(ctx context.Context, query string, topK int) (*domain.Answer, error)
}
