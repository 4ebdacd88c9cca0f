package service

import (
	"context"
	"strings"

	"ragdocs/internal/domain"
	"ragdocs/internal/logger"
	"ragdocs/internal/vectorstore"
)

// Retriever answers similarity queries against a loaded collection.
type Retriever struct {
	embedder domain.Embedder
	store    vectorstore.Storage
}

// NewRetriever creates a retriever over store. Embedders that need a corpus
// pass must already be prepared.
func NewRetriever(embedder domain.Embedder, store vectorstore.Storage) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Len returns the collection size.
func (r *Retriever) Len() int { return r.store.Len() }

// Search returns the k chunks most similar to query. A query that cannot be
// embedded yields no results rather than an error so a conversation can go
// on without grounding.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" || r.store.Len() == 0 {
		return vectorstore.Rank(nil, nil, k)
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("embedding query failed, continuing without context: %v", err)
		return vectorstore.Rank(nil, nil, k)
	}
	results, err := r.store.Search(vec, k)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 && len(results[0].Chunk.Embedding) != len(vec) {
		logger.Warn("query vector has %d dimensions, collection has %d; was it built with another embedder?",
			len(vec), len(results[0].Chunk.Embedding))
		return []domain.SearchResult{}, nil
	}
	return results, nil
}
