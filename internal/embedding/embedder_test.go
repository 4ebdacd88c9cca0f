package embedding

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lengthEmbedder struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	failOn   string
}

func (e *lengthEmbedder) Name() string { return "length" }

func (e *lengthEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	// shorter texts finish first so completion order differs from input order
	select {
	case <-time.After(time.Duration(len(text)) * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if text == e.failOn {
		return nil, errors.New("boom")
	}
	return []float64{float64(len(text))}, nil
}

func TestEmbedAll_PreservesOrder(t *testing.T) {
	texts := []string{strings.Repeat("a", 30), "b", strings.Repeat("c", 15), "dd", strings.Repeat("e", 8)}
	for _, concurrency := range []int{0, 1, 3, 10} {
		e := &lengthEmbedder{}
		got, err := EmbedAll(context.Background(), e, texts, concurrency)
		require.NoError(t, err)
		require.Len(t, got, len(texts))
		for i, text := range texts {
			assert.Equal(t, []float64{float64(len(text))}, got[i])
		}
	}
}

func TestEmbedAll_RespectsConcurrencyLimit(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = strings.Repeat("x", 5)
	}
	e := &lengthEmbedder{}
	_, err := EmbedAll(context.Background(), e, texts, 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, e.peak.Load(), int32(3))

	seq := &lengthEmbedder{}
	_, err = EmbedAll(context.Background(), seq, texts, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), seq.peak.Load())
}

func TestEmbedAll_ReportsFailingIndex(t *testing.T) {
	texts := []string{"one", "two", "fail", "four"}
	for _, concurrency := range []int{1, 4} {
		_, err := EmbedAll(context.Background(), &lengthEmbedder{failOn: "fail"}, texts, concurrency)
		var ie *IndexedError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 2, ie.Index)
		assert.EqualError(t, ie.Unwrap(), "boom")
	}
}

func TestEmbedAll_Empty(t *testing.T) {
	got, err := EmbedAll(context.Background(), &lengthEmbedder{}, nil, 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}
