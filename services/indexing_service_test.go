package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github/itish2003/medassist/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitParagraphsKeepsEmptyChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single section", text: "line one\nline two", want: []string{"line one\nline two"}},
		{name: "two sections", text: "a\n\nb", want: []string{"a", "b"}},
		{name: "consecutive blank lines", text: "a\n\n\n\nb", want: []string{"a", "", "b"}},
		{name: "odd newline run", text: "a\n\n\nb", want: []string{"a", "\nb"}},
		{name: "trailing separator", text: "a\n\n", want: []string{"a", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitParagraphs(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewChunker(t *testing.T) {
	split, err := NewChunker(config.ChunkerParagraph)
	require.NoError(t, err)
	got, err := split("a\n\nb")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	split, err = NewChunker(config.ChunkerRecursive)
	require.NoError(t, err)
	long := strings.Repeat("word ", 600)
	got, err = split(long)
	require.NoError(t, err)
	assert.Greater(t, len(got), 1)
	for _, c := range got {
		assert.LessOrEqual(t, len(c), 1000)
	}

	_, err = NewChunker("sentence")
	assert.Error(t, err)
}

func TestIndexLabelStoresOneChunkPerSegment(t *testing.T) {
	ctx := context.Background()
	col, err := NewMemoryStore().OpenCollection(ctx, "temp")
	require.NoError(t, err)
	svc := NewIndexingService(&hashEmbedder{}, SplitParagraphs)

	text := "indications\n\ndosage\n\n\n\nwarnings"
	n, err := svc.IndexLabel(ctx, col, text)
	require.NoError(t, err)

	segments, _ := SplitParagraphs(text)
	assert.Equal(t, len(segments), n)
	assert.Equal(t, 4, n)
	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	mc := col.(*memoryCollection)
	for i, e := range mc.entries {
		assert.Equal(t, []string{"0", "1", "2", "3"}[i], e.ID)
	}
	assert.Equal(t, "", mc.entries[2].Text)
}

func TestIndexLabelClearsPreviousChunks(t *testing.T) {
	ctx := context.Background()
	col, err := NewMemoryStore().OpenCollection(ctx, "temp")
	require.NoError(t, err)
	svc := NewIndexingService(&hashEmbedder{}, SplitParagraphs)

	_, err = svc.IndexLabel(ctx, col, "aspirin one\n\naspirin two\n\naspirin three")
	require.NoError(t, err)
	n, err := svc.IndexLabel(ctx, col, "ibuprofen only")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err := col.Query(ctx, (&hashEmbedder{}).vector("aspirin"), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ibuprofen only"}, docs)
}

func TestIndexLabelFailedClearAborts(t *testing.T) {
	ctx := context.Background()
	inner, err := NewMemoryStore().OpenCollection(ctx, "temp")
	require.NoError(t, err)
	emb := &hashEmbedder{}
	svc := NewIndexingService(emb, SplitParagraphs)

	_, err = svc.IndexLabel(ctx, failingClearCollection{inner}, "a\n\nb")
	require.ErrorIs(t, err, errClear)
	assert.Zero(t, emb.calls, "nothing is embedded after a failed clear")

	count, err := inner.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexLabelEmbedError(t *testing.T) {
	ctx := context.Background()
	col, err := NewMemoryStore().OpenCollection(ctx, "temp")
	require.NoError(t, err)
	boom := errors.New("onnx runtime missing")
	svc := NewIndexingService(&hashEmbedder{err: boom}, SplitParagraphs)

	_, err = svc.IndexLabel(ctx, col, "a")
	assert.ErrorIs(t, err, boom)
}
