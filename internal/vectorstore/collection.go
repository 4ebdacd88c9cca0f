package vectorstore

import (
	"fmt"
	"strings"

	"ragdocs/internal/domain"
)

// Validate checks the invariants of a collection: non-empty text, one
// embedding dimension, unique ids and per-source positions 0, 1, 2, ...
func Validate(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	dim := len(chunks[0].Embedding)
	ids := make(map[string]struct{}, len(chunks))
	next := make(map[string]int)
	for i, ch := range chunks {
		if strings.TrimSpace(ch.Text) == "" {
			return fmt.Errorf("chunk %d (%s): %w", i, ch.ID, domain.ErrEmptyChunk)
		}
		if len(ch.Embedding) == 0 || len(ch.Embedding) != dim {
			return fmt.Errorf("chunk %d (%s): %w: got %d, want %d", i, ch.ID, domain.ErrDimensionMismatch, len(ch.Embedding), dim)
		}
		if ch.ID == "" {
			return fmt.Errorf("chunk %d: %w: missing id", i, domain.ErrInvalidInput)
		}
		if _, ok := ids[ch.ID]; ok {
			return fmt.Errorf("chunk %d: %w: %q", i, domain.ErrDuplicateID, ch.ID)
		}
		ids[ch.ID] = struct{}{}
		if want := next[ch.Source]; ch.Position != want {
			return fmt.Errorf("chunk %d (%s): %w: position %d, want %d", i, ch.Source, domain.ErrPositionGap, ch.Position, want)
		}
		next[ch.Source]++
	}
	return nil
}

// Dimension returns the embedding length shared by the collection, or 0 when
// it is empty.
func Dimension(chunks []domain.Chunk) int {
	if len(chunks) == 0 {
		return 0
	}
	return len(chunks[0].Embedding)
}
