package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdocs/internal/domain"
)

func textWithBreaks(n int, breaks map[int]rune) string {
	runes := make([]rune, n)
	for i := range runes {
		runes[i] = 'a'
	}
	for at, r := range breaks {
		runes[at] = r
	}
	return string(runes)
}

func TestSplit_InvalidBand(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
	}{
		{"min equals max", 800, 800},
		{"min above max", 900, 800},
		{"zero min", 0, 800},
		{"negative min", -1, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.min, tt.max)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSplit_ShortTextIsSingleTrimmedPassage(t *testing.T) {
	got, err := Split("  Hi there.  \n", 500, 800)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi there."}, got)
}

func TestSplit_TextOfExactlyMaxSizeIsNotSplit(t *testing.T) {
	text := textWithBreaks(800, map[int]rune{100: '.', 600: '.'})
	got, err := Split(text, 500, 800)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, text, got[0])
}

func TestSplit_WhitespaceOnlyYieldsNothing(t *testing.T) {
	got, err := Split(" \n\t ", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplit_PrefersLatestSentenceBreakPastMin(t *testing.T) {
	text := textWithBreaks(1000, map[int]rune{510: '.', 790: '.'})

	spans, err := Spans(text, 500, 800)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Start: 0, End: 791}, spans[0])
	assert.Equal(t, Span{Start: 791, End: 1000}, spans[1])

	got, err := Split(text, 500, 800)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 791)
	assert.True(t, strings.HasSuffix(got[0], "."))
}

func TestSplit_BreakBeforeMinKeepsHardCut(t *testing.T) {
	text := textWithBreaks(1000, map[int]rune{300: '!'})
	spans, err := Spans(text, 500, 800)
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 0, End: 800}, spans[0])
}

func TestSplit_BreakExactlyAtMinIsNotHonoured(t *testing.T) {
	text := textWithBreaks(1000, map[int]rune{500: '?'})
	spans, err := Spans(text, 500, 800)
	require.NoError(t, err)
	assert.Equal(t, 800, spans[0].End)
}

func TestSplit_ParagraphBreak(t *testing.T) {
	text := textWithBreaks(1000, map[int]rune{600: '\n', 601: '\n'})
	spans, err := Spans(text, 500, 800)
	require.NoError(t, err)
	assert.Equal(t, 602, spans[0].End)

	got, err := Split(text, 500, 800)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 600)
	assert.Len(t, got[1], 398)
}

func TestSplit_NoMarkersFallsBackToHardCuts(t *testing.T) {
	text := strings.Repeat("x", 25)
	got, err := Split(text, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"xxxxxxxxxx", "xxxxxxxxxx", "xxxxx"}, got)
}

func TestSpans_CoverTextExactly(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40) +
		"\n\nA new paragraph starts here! Does it? " +
		strings.Repeat("Ünïcödé wörds fill the rest of the text without stops ", 30)

	spans, err := Spans(text, 50, 120)
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	runes := []rune(text)
	var rebuilt strings.Builder
	prev := 0
	for _, s := range spans {
		assert.Equal(t, prev, s.Start, "spans must be contiguous")
		assert.Greater(t, s.End, s.Start, "spans must advance")
		assert.LessOrEqual(t, s.End-s.Start, 120)
		rebuilt.WriteString(string(runes[s.Start:s.End]))
		prev = s.End
	}
	assert.Equal(t, len(runes), prev)
	assert.Equal(t, text, rebuilt.String())
}

func TestSplit_PassagesWithinMaxSize(t *testing.T) {
	text := strings.Repeat("Short sentence. Another one here! ", 100)
	got, err := Split(text, 40, 90)
	require.NoError(t, err)
	for _, p := range got {
		assert.LessOrEqual(t, len([]rune(p)), 90)
		assert.Equal(t, strings.TrimSpace(p), p)
		assert.NotEmpty(t, p)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma. Delta epsilon? ", 60)
	a, err := Split(text, 30, 100)
	require.NoError(t, err)
	b, err := Split(text, 30, 100)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBoundaryChunker_Chunk(t *testing.T) {
	c, err := NewBoundaryChunker(20, 50)
	require.NoError(t, err)

	doc := domain.Document{
		Source:  "guide.md",
		Content: strings.Repeat("One sentence that is long enough. ", 8),
	}
	chunks, err := c.Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	seen := map[string]bool{}
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Position)
		assert.Equal(t, "guide.md", ch.Source)
		assert.NotEmpty(t, ch.Text)
		assert.Nil(t, ch.Embedding)
		assert.False(t, seen[ch.ID], "ids must be unique")
		seen[ch.ID] = true
	}
}

func TestBoundaryChunker_EmptyDocument(t *testing.T) {
	c, err := NewBoundaryChunker(DefaultMinSize, DefaultMaxSize)
	require.NoError(t, err)
	chunks, err := c.Chunk(domain.Document{Source: "empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNewBoundaryChunker_RejectsInvalidBand(t *testing.T) {
	_, err := NewBoundaryChunker(800, 500)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
