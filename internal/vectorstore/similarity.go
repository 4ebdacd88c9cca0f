package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"ragdocs/internal/domain"
)

// CosineSimilarity returns dot(a, b) / (|a| * |b|). Vectors of different
// lengths, and zero vectors, have similarity 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

// Rank scores every chunk against query and returns the best limit of them,
// highest similarity first. Equal scores keep collection order.
func Rank(query []float64, chunks []domain.Chunk, limit int) ([]domain.SearchResult, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative search limit %d", domain.ErrInvalidInput, limit)
	}
	if limit == 0 || len(chunks) == 0 {
		return []domain.SearchResult{}, nil
	}
	scored := make([]domain.SearchResult, len(chunks))
	for i := range chunks {
		scored[i] = domain.SearchResult{Chunk: chunks[i], Score: CosineSimilarity(query, chunks[i].Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}
