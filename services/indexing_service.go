package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github/itish2003/medassist/config"
	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/models"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits label text into the pieces that get embedded.
type Chunker func(text string) ([]string, error)

// SplitParagraphs splits on blank lines. Consecutive blank lines yield empty
// chunks, which are kept and indexed like any other.
func SplitParagraphs(text string) ([]string, error) {
	return strings.Split(text, "\n\n"), nil
}

// NewChunker returns the chunker named by rag.chunker.
func NewChunker(kind string) (Chunker, error) {
	switch kind {
	case config.ChunkerParagraph:
		return SplitParagraphs, nil
	case config.ChunkerRecursive:
		splitter := textsplitter.NewRecursiveCharacter(textsplitter.WithChunkSize(1000), textsplitter.WithChunkOverlap(100))
		return splitter.SplitText, nil
	default:
		return nil, fmt.Errorf("unknown chunker %q", kind)
	}
}

// IndexingService chunks, embeds and stores label text.
type IndexingService struct {
	embedder Embedder
	split    Chunker
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(embedder Embedder, split Chunker) *IndexingService {
	return &IndexingService{
		embedder: embedder,
		split:    split,
	}
}

// IndexLabel empties col, then stores one chunk per split of text with ids
// "0".."n-1" in split order. It returns the number of chunks stored. A failed
// clear aborts the call so old chunks never mix with new ones.
func (s *IndexingService) IndexLabel(ctx context.Context, col Collection, text string) (int, error) {
	if err := col.Clear(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear collection %s: %w", col.Name(), err)
	}

	texts, err := s.split(text)
	if err != nil {
		return 0, fmt.Errorf("failed to split label text: %w", err)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("could not generate embeddings for label: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]models.DocumentChunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.DocumentChunk{
			ID:        strconv.Itoa(i),
			Text:      t,
			Embedding: vectors[i],
		}
	}
	if err := col.Add(ctx, chunks); err != nil {
		return 0, err
	}

	logger.Infow("indexed label", "collection", col.Name(), "chunks", len(chunks))
	return len(chunks), nil
}
