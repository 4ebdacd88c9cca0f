package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ragdocs/internal/domain"
)

var errCollaborator = errors.New("collaborator unavailable")

// keywordEmbedder maps text to counts of a fixed keyword list.
type keywordEmbedder struct {
	keywords []string
	failOn   string
	prepared []string
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (e *keywordEmbedder) Name() string { return "keywords" }

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errCollaborator
	}
	lower := strings.ToLower(text)
	vec := make([]float64, len(e.keywords))
	for i, kw := range e.keywords {
		vec[i] = float64(strings.Count(lower, kw))
	}
	return vec, nil
}

type preparingEmbedder struct {
	*keywordEmbedder
}

func (e *preparingEmbedder) Prepare(corpus []string) error {
	e.prepared = append([]string(nil), corpus...)
	return nil
}

// paragraphChunker emits one chunk per blank-line separated paragraph.
type paragraphChunker struct{}

func (paragraphChunker) Chunk(doc domain.Document) ([]domain.Chunk, error) {
	if strings.Contains(doc.Content, "UNSPLITTABLE") {
		return nil, errors.New("cannot split")
	}
	var out []domain.Chunk
	for _, p := range strings.Split(doc.Content, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, domain.Chunk{
			ID:       doc.Source + "#" + string(rune('a'+len(out))),
			Text:     strings.TrimSpace(p),
			Source:   doc.Source,
			Position: len(out),
		})
	}
	return out, nil
}

type recordingGenerator struct {
	mu       sync.Mutex
	reply    string
	err      error
	received [][]domain.ChatMessage
}

func (g *recordingGenerator) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.received = append(g.received, messages)
	return g.reply, g.err
}

type staticSearcher struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (s *staticSearcher) Search(_ context.Context, query string, _ int) ([]domain.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}
