package memory

import (
	"errors"
	"fmt"
	"sync"

	"ragdocs/internal/domain"
	"ragdocs/internal/vectorstore"
)

// Storage is an in-memory vector collection searched by brute-force cosine
// similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

// FromChunks builds a storage over an already validated collection.
func FromChunks(chunks []domain.Chunk) (*Storage, error) {
	if err := vectorstore.Validate(chunks); err != nil {
		return nil, err
	}
	s := &Storage{dimension: vectorstore.Dimension(chunks)}
	s.chunks = append(s.chunks, chunks...)
	return s, nil
}

// Init empties the storage and fixes the embedding dimension.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.chunks = nil
	return nil
}

// Upsert appends chunks after checking them against the collection invariants.
func (s *Storage) Upsert(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 && len(chunks) > 0 {
		s.dimension = len(chunks[0].Embedding)
	}
	for _, ch := range chunks {
		if len(ch.Embedding) != s.dimension {
			return fmt.Errorf("chunk %s: %w: got %d, want %d", ch.ID, domain.ErrDimensionMismatch, len(ch.Embedding), s.dimension)
		}
	}
	merged := make([]domain.Chunk, 0, len(s.chunks)+len(chunks))
	merged = append(merged, s.chunks...)
	merged = append(merged, chunks...)
	if err := vectorstore.Validate(merged); err != nil {
		return err
	}
	s.chunks = merged
	return nil
}

// Search ranks the collection against vector.
func (s *Storage) Search(vector []float64, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vectorstore.Rank(vector, s.chunks, limit)
}

// Chunks returns a copy of the collection in order.
func (s *Storage) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimension returns the embedding length of the collection.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	return nil
}
