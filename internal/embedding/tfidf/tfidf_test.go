package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdocs/internal/vectorstore"
)

var corpus = []string{
	"Install the CLI with go install and run the ingest command.",
	"The chat command opens a terminal conversation with the assistant.",
	"Embeddings are cosine compared against the stored vector collection.",
}

func TestEmbedder_NotPrepared(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestEmbedder_PrepareRejectsEmptyCorpus(t *testing.T) {
	assert.Error(t, NewEmbedder().Prepare(nil))
	assert.Error(t, NewEmbedder().Prepare([]string{"the and of", "123"}))
}

func TestEmbedder_VectorsAreNormalised(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	v, err := e.Embed(context.Background(), corpus[0])
	require.NoError(t, err)
	assert.Len(t, v, e.Dimension())

	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-9)
}

func TestEmbedder_UnknownWordsGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	v, err := e.Embed(context.Background(), "zzz qqq")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

func TestEmbedder_SameCorpusSameSpace(t *testing.T) {
	a, b := NewEmbedder(), NewEmbedder()
	require.NoError(t, a.Prepare(corpus))
	require.NoError(t, b.Prepare(corpus))

	va, err := a.Embed(context.Background(), "terminal chat")
	require.NoError(t, err)
	vb, err := b.Embed(context.Background(), "terminal chat")
	require.NoError(t, err)
	assert.Equal(t, va, vb)
}

func TestEmbedder_RelevantDocumentScoresHighest(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	q, err := e.Embed(context.Background(), "how do I open the terminal chat?")
	require.NoError(t, err)

	best, bestScore := -1, -1.0
	for i, text := range corpus {
		v, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		if s := vectorstore.CosineSimilarity(q, v); s > bestScore {
			best, bestScore = i, s
		}
	}
	assert.Equal(t, 1, best)
}

func TestEmbedder_HonoursCancelledContext(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, "chat")
	assert.ErrorIs(t, err, context.Canceled)
}
