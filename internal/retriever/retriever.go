// Package retriever finds the chunks most relevant to a question.
package retriever

import (
	"context"
	"fmt"

	"ragchat/internal/domain"
	"ragchat/internal/logger"
)

// Default search bounds.
const (
	DefaultMaxResults = 3
	DefaultMinScore   = 0.5
)

// Retriever embeds a query and searches the vector store with fixed bounds.
// Query embeddings are not cached.
type Retriever struct {
	embedder   domain.Embedder
	store      domain.VectorStore
	maxResults int
	minScore   float64
}

// New creates a retriever. A non-positive maxResults selects the default.
func New(embedder domain.Embedder, store domain.VectorStore, maxResults int, minScore float64) *Retriever {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Retriever{embedder: embedder, store: store, maxResults: maxResults, minScore: minScore}
}

// Retrieve returns the best matching chunks, most relevant first. The
// result is empty when nothing clears the score threshold.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.SearchResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := r.store.Search(vec, r.maxResults, r.minScore)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	for _, res := range results {
		logger.Debug("retrieved %s score=%.3f", res.Chunk.ChunkID, res.Score)
	}
	return results, nil
}
