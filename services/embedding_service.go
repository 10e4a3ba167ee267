package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	defaultef "github.com/amikos-tech/chroma-go/pkg/embeddings/default_ef"
)

// Embedder turns text into vectors. Documents and queries must go through
// the same Embedder so their vectors are comparable.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// MiniLMEmbedder runs all-MiniLM-L6-v2 (384 dims) in-process through the
// ONNX embedding function bundled with chroma-go.
type MiniLMEmbedder struct {
	ef      *defaultef.DefaultEmbeddingFunction
	closeFn func() error
}

// NewMiniLMEmbedder loads the model, downloading it on first use. Close must
// be called to release the ONNX runtime.
func NewMiniLMEmbedder() (*MiniLMEmbedder, error) {
	ef, closeFn, err := defaultef.NewDefaultEmbeddingFunction()
	if err != nil {
		return nil, fmt.Errorf("failed to load default embedding function: %w", err)
	}
	return &MiniLMEmbedder{ef: ef, closeFn: closeFn}, nil
}

func (e *MiniLMEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embs, err := e.ef.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d documents: %w", len(texts), err)
	}
	return toFloat32s(embs), nil
}

func (e *MiniLMEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	emb, err := e.ef.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return emb.ContentAsFloat32(), nil
}

// EmbeddingFunction exposes the loaded model so a Chroma store can reuse it.
func (e *MiniLMEmbedder) EmbeddingFunction() embeddings.EmbeddingFunction {
	return e.ef
}

func (e *MiniLMEmbedder) Close() error {
	return e.closeFn()
}

func toFloat32s(embs []embeddings.Embedding) [][]float32 {
	out := make([][]float32, len(embs))
	for i, emb := range embs {
		out[i] = emb.ContentAsFloat32()
	}
	return out
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder calls a local Ollama server, one request per text.
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaEmbedder(client *http.Client, baseURL, model string) *OllamaEmbedder {
	return &OllamaEmbedder{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// EmbedDocuments embeds each text in turn. Ollama answers an empty prompt
// with an empty vector; those chunks get a zero vector of the batch's
// dimension so they can still be stored.
func (e *OllamaEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	dim := 0
	for i, text := range texts {
		vec, err := e.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("could not embed chunk %d: %w", i, err)
		}
		if dim == 0 {
			dim = len(vec)
		}
		out = append(out, vec)
	}
	if dim == 0 && len(texts) > 0 {
		return nil, fmt.Errorf("ollama returned empty embeddings for all %d chunks", len(texts))
	}
	for i, vec := range out {
		if len(vec) == 0 {
			out[i] = make([]float32, dim)
		}
	}
	return out, nil
}

// EmbedQuery generates one embedding using Ollama.
func (e *OllamaEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding for model %s", e.model)
	}
	return vec, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, textToEmbed string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{
		Model:  e.model,
		Prompt: textToEmbed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return ollamaResp.Embedding, nil
}
