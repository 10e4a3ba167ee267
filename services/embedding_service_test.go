package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		prompts = append(prompts, req.Prompt)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt)), 1}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.Client(), srv.URL+"/", "all-minilm")

	vecs, err := e.EmbedDocuments(context.Background(), []string{"a", "bbb", ""})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {3, 1}, {0, 1}}, vecs)
	assert.Equal(t, []string{"a", "bbb", ""}, prompts)
}

func TestOllamaEmbedderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.Client(), srv.URL, "missing")

	_, err := e.EmbedDocuments(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not embed chunk 0")
	assert.Contains(t, err.Error(), "404")
}

// emptyPromptOllama mimics Ollama answering an empty prompt with an empty
// embedding.
func emptyPromptOllama(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		vec := []float32{}
		if req.Prompt != "" {
			vec = []float32{float32(len(req.Prompt)), 1, 0}
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vec})
	}))
}

func TestOllamaEmbedderEmptyPromptGetsZeroVector(t *testing.T) {
	srv := emptyPromptOllama(t)
	defer srv.Close()

	e := NewOllamaEmbedder(srv.Client(), srv.URL, "all-minilm")

	vecs, err := e.EmbedDocuments(context.Background(), []string{"", "ab", ""})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0, 0}, {2, 1, 0}, {0, 0, 0}}, vecs)

	_, err = e.EmbedDocuments(context.Background(), []string{"", ""})
	assert.Error(t, err)

	_, err = e.EmbedQuery(context.Background(), "")
	assert.ErrorContains(t, err, "empty embedding")
}

func TestIndexLabelLeadingBlankLineWithOllama(t *testing.T) {
	ctx := context.Background()
	srv := emptyPromptOllama(t)
	defer srv.Close()

	e := NewOllamaEmbedder(srv.Client(), srv.URL, "all-minilm")
	col, err := NewMemoryStore().OpenCollection(ctx, "temp")
	require.NoError(t, err)

	for _, text := range []string{"\n\nDosage: take one", "A\n\n\n\nB"} {
		require.NoError(t, col.Clear(ctx))
		n, err := NewIndexingService(e, SplitParagraphs).IndexLabel(ctx, col, text)
		require.NoError(t, err, text)

		docs, err := col.Query(ctx, []float32{16, 1, 0}, 3)
		require.NoError(t, err)
		assert.Len(t, docs, n)
	}
}
