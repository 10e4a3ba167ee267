package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	"github/itish2003/medassist/models"
)

const fakeDim = 64

// hashEmbedder is a bag-of-words embedder: each lower-cased word bumps one
// of fakeDim buckets and the result is unit length, so texts sharing words
// land close together under L2.
type hashEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *hashEmbedder) vector(text string) []float32 {
	vec := make([]float32, fakeDim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!:;")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%fakeDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec
}

func (e *hashEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

// failingClearCollection wraps a collection whose Clear always fails.
type failingClearCollection struct {
	Collection
}

var errClear = errors.New("list ids: connection refused")

func (failingClearCollection) Clear(context.Context) error { return errClear }

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (c *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

type fakeLabelService struct {
	result models.FetchResult
	calls  int
}

func (f *fakeLabelService) FetchLabel(context.Context, string) models.FetchResult {
	f.calls++
	return f.result
}

// blankEmbedder returns an empty vector for empty text, like Ollama does.
type blankEmbedder struct {
	hashEmbedder
}

func (e *blankEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out, err := e.hashEmbedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i, t := range texts {
		if t == "" {
			out[i] = []float32{}
		}
	}
	return out, nil
}
