package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ragdocs/internal/domain"
)

// Default size band, in characters.
const (
	DefaultMinSize = 500
	DefaultMaxSize = 800
)

// Span is a half-open range of rune offsets [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// BoundaryChunker splits text into passages of at most maxSize characters,
// cutting at the latest sentence or paragraph break past minSize.
type BoundaryChunker struct {
	minSize int
	maxSize int
	newID   func() string
}

// NewBoundaryChunker validates the size band and returns a chunker.
func NewBoundaryChunker(minSize, maxSize int) (*BoundaryChunker, error) {
	if err := validateBand(minSize, maxSize); err != nil {
		return nil, err
	}
	return &BoundaryChunker{
		minSize: minSize,
		maxSize: maxSize,
		newID:   func() string { return uuid.New().String() },
	}, nil
}

// Chunk splits the document and numbers its passages from zero.
func (c *BoundaryChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	passages, err := Split(document.Content, c.minSize, c.maxSize)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, 0, len(passages))
	for i, text := range passages {
		chunks = append(chunks, domain.Chunk{
			ID:       c.newID(),
			Text:     text,
			Source:   document.Source,
			Position: i,
		})
	}
	return chunks, nil
}

// Split returns the trimmed, non-empty passages of text.
func Split(text string, minSize, maxSize int) ([]string, error) {
	spans, err := Spans(text, minSize, maxSize)
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		passage := strings.TrimSpace(string(runes[s.Start:s.End]))
		if passage != "" {
			out = append(out, passage)
		}
	}
	return out, nil
}

// Spans returns the untrimmed rune spans Split cuts text into. The spans are
// contiguous and cover the whole text. Whitespace-only text yields no spans.
func Spans(text string, minSize, maxSize int) ([]Span, error) {
	if err := validateBand(minSize, maxSize); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	runes := []rune(text)
	n := len(runes)
	if n <= maxSize {
		return []Span{{Start: 0, End: n}}, nil
	}

	var spans []Span
	pos := 0
	for pos < n {
		end := pos + maxSize
		if end > n {
			end = n
		}
		if end < n {
			// a break at or before pos+minSize would leave a pathologically short passage
			if at, cut := lastBreak(runes, pos, end); at > pos+minSize {
				end = cut
			}
		}
		spans = append(spans, Span{Start: pos, End: end})
		pos = end
	}
	return spans, nil
}

// lastBreak finds the latest sentence terminator or paragraph break in
// runes[from:to]. It returns the offset of the break and the offset just past
// it, or -1 when there is none.
func lastBreak(runes []rune, from, to int) (at, cut int) {
	for i := to - 1; i >= from; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i, i + 1
		case '\n':
			if i > from && runes[i-1] == '\n' {
				return i - 1, i + 1
			}
		}
	}
	return -1, -1
}

func validateBand(minSize, maxSize int) error {
	if minSize <= 0 || minSize >= maxSize {
		return fmt.Errorf("%w: chunk sizes must satisfy 0 < min (%d) < max (%d)", domain.ErrInvalidInput, minSize, maxSize)
	}
	return nil
}
