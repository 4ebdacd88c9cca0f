package vectorstore

import "ragdocs/internal/domain"

// Storage holds a vector collection and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk) error
	Search(vector []float64, limit int) ([]domain.SearchResult, error)
	Chunks() []domain.Chunk
	Len() int
	Clear() error
}
