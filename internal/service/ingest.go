// Package service wires the chunker, the embedding and generation
// collaborators and the vector collection into the ingest, search and chat
// operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ragdocs/internal/domain"
	"ragdocs/internal/embedding"
	"ragdocs/internal/logger"
	"ragdocs/internal/vectorstore"
	"ragdocs/internal/vectorstore/jsonfile"
)

// DefaultSummarySentences is the length of the corpus summary.
const DefaultSummarySentences = 3

// Summarizer condenses the ingested corpus for display.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// IngestError names the document and chunk whose processing failed.
// Position is -1 when the failure happened before the document was split.
type IngestError struct {
	Source   string
	Position int
	Err      error
}

func (e *IngestError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("ingest %s chunk %d: %v", e.Source, e.Position, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// IngestReport describes a finished ingestion run.
type IngestReport struct {
	Documents int
	Chunks    []domain.Chunk
	Summary   string
}

// Ingestor turns documents into a validated, embedded collection.
type Ingestor struct {
	chunker          domain.Chunker
	embedder         domain.Embedder
	summarizer       Summarizer
	concurrency      int
	summarySentences int
}

// NewIngestor creates an ingestor. summarizer may be nil.
func NewIngestor(chunker domain.Chunker, embedder domain.Embedder, summarizer Summarizer, concurrency int) *Ingestor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Ingestor{
		chunker:          chunker,
		embedder:         embedder,
		summarizer:       summarizer,
		concurrency:      concurrency,
		summarySentences: DefaultSummarySentences,
	}
}

// Build chunks and embeds documents in order and returns the collection.
// Any failure aborts the whole batch.
func (s *Ingestor) Build(ctx context.Context, documents []domain.Document) (*IngestReport, error) {
	if len(documents) == 0 {
		return nil, domain.ErrNoDocuments
	}

	var chunks []domain.Chunk
	var corpus strings.Builder
	for _, doc := range documents {
		logger.Info("processing %s", doc.Source)
		docChunks, err := s.chunker.Chunk(doc)
		if err != nil {
			return nil, &IngestError{Source: doc.Source, Position: -1, Err: err}
		}
		logger.Info("%s -> %d chunks", doc.Source, len(docChunks))
		chunks = append(chunks, docChunks...)
		corpus.WriteString(doc.Content)
		corpus.WriteString("\n")
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Text
		}
		if p, ok := s.embedder.(domain.Preparer); ok {
			if err := p.Prepare(texts); err != nil {
				return nil, fmt.Errorf("prepare %s: %w", s.embedder.Name(), err)
			}
		}
		logger.Info("embedding %d chunks with %s", len(chunks), s.embedder.Name())
		vectors, err := embedding.EmbedAll(ctx, s.embedder, texts, s.concurrency)
		if err != nil {
			var indexed *embedding.IndexedError
			if errors.As(err, &indexed) {
				ch := chunks[indexed.Index]
				return nil, &IngestError{Source: ch.Source, Position: ch.Position, Err: indexed.Err}
			}
			return nil, err
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}
	if err := vectorstore.Validate(chunks); err != nil {
		return nil, err
	}

	report := &IngestReport{Documents: len(documents), Chunks: chunks}
	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(corpus.String(), s.summarySentences)
		if err != nil {
			return nil, fmt.Errorf("summarize corpus: %w", err)
		}
		report.Summary = summary
	}
	return report, nil
}

// Ingest builds the collection and replaces the artifact at path with it.
// Nothing is written when building fails.
func (s *Ingestor) Ingest(ctx context.Context, documents []domain.Document, path string) (*IngestReport, error) {
	report, err := s.Build(ctx, documents)
	if err != nil {
		return nil, err
	}
	if err := jsonfile.Save(path, report.Chunks); err != nil {
		return nil, err
	}
	logger.Info("saved %d chunks to %s", len(report.Chunks), path)
	return report, nil
}
