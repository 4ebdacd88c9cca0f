package openaicompat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []float64
	}{
		{"openai envelope", `{"data":[{"embedding":[0.1,0.2],"index":0}],"model":"m"}`, []float64{0.1, 0.2}},
		{"bare field", `{"embedding":[1,2,3]}`, []float64{1, 2, 3}},
		{"envelope wins over bare", `{"data":[{"embedding":[9]}],"embedding":[1]}`, []float64{9}},
		{"empty envelope falls back", `{"data":[],"embedding":[4]}`, []float64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEmbedding([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEmbedding_UnknownShape(t *testing.T) {
	for _, payload := range []string{`{"vector":[1,2]}`, `{"data":[{}]}`, `{"embedding":[]}`, `not json`, `[]`} {
		_, err := ParseEmbedding([]byte(payload))
		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), payload)
		assert.Equal(t, "embedding", shapeErr.Kind)
		assert.Equal(t, payload, shapeErr.Body)
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"openai envelope", `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`, "hello"},
		{"empty content in envelope", `{"choices":[{"message":{"role":"assistant","content":""}}]}`, ""},
		{"bare content", `{"content":"from lm studio"}`, "from lm studio"},
		{"bare response", `{"response":"from ollama"}`, "from ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReply_UnknownShape(t *testing.T) {
	for _, payload := range []string{`{"choices":[]}`, `{"content":42}`, `{"answer":"x"}`, `nope`} {
		_, err := ParseReply([]byte(payload))
		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), payload)
		assert.Equal(t, "chat completion", shapeErr.Kind)
	}
}
