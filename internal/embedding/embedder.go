// Package embedding holds the embedder implementations and helpers shared by
// ingestion and retrieval.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ragdocs/internal/domain"
)

// IndexedError reports which input of EmbedAll failed.
type IndexedError struct {
	Index int
	Err   error
}

func (e *IndexedError) Error() string { return fmt.Sprintf("embed text %d: %v", e.Index, e.Err) }

func (e *IndexedError) Unwrap() error { return e.Err }

// EmbedAll embeds texts with at most concurrency calls in flight. Vectors are
// returned in input order regardless of completion order. The first failure
// cancels the remaining calls and is returned as an *IndexedError.
func EmbedAll(ctx context.Context, embedder domain.Embedder, texts []string, concurrency int) ([][]float64, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	vectors := make([][]float64, len(texts))
	if concurrency == 1 {
		for i, text := range texts {
			vec, err := embedder.Embed(ctx, text)
			if err != nil {
				return nil, &IndexedError{Index: i, Err: err}
			}
			vectors[i] = vec
		}
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, text)
			if err != nil {
				return &IndexedError{Index: i, Err: err}
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
