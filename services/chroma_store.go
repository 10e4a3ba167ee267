package services

import (
	"context"
	"fmt"

	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ChromaStore keeps collections on a Chroma server. Collections are created
// with Chroma's default HNSW space (l2).
type ChromaStore struct {
	client chromago.Client
	ef     embeddings.EmbeddingFunction
}

// NewChromaStore attaches ef to every collection it opens. Chunks and queries
// always carry their own vectors, so ef is never asked to embed.
func NewChromaStore(client chromago.Client, ef embeddings.EmbeddingFunction) *ChromaStore {
	return &ChromaStore{client: client, ef: ef}
}

func (s *ChromaStore) OpenCollection(ctx context.Context, name string) (Collection, error) {
	col, err := s.client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithEmbeddingFunctionCreate(s.ef),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "drug label chunks"),
				chromago.NewStringAttribute("created_by", "medassist"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create chroma collection %s: %w", name, err)
	}
	return &chromaCollection{col: col}, nil
}

func (s *ChromaStore) DropCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete chroma collection %s: %w", name, err)
	}
	return nil
}

type chromaCollection struct {
	col chromago.Collection
}

func (c *chromaCollection) Name() string { return c.col.Name() }

func (c *chromaCollection) Clear(ctx context.Context) error {
	results, err := c.col.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to list ids in %s: %w", c.col.Name(), err)
	}
	ids := results.GetIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := c.col.Delete(ctx, chromago.WithIDsDelete(ids...)); err != nil {
		return fmt.Errorf("failed to delete %d ids from %s: %w", len(ids), c.col.Name(), err)
	}
	logger.Infow("cleared chroma collection", "collection", c.col.Name(), "deleted", len(ids))
	return nil
}

func (c *chromaCollection) Add(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]chromago.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	embs := make([]embeddings.Embedding, len(chunks))
	for i, ch := range chunks {
		ids[i] = chromago.DocumentID(ch.ID)
		texts[i] = ch.Text
		embs[i] = embeddings.NewEmbeddingFromFloat32(ch.Embedding)
	}

	err := c.col.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
	)
	if err != nil {
		return fmt.Errorf("failed to add %d chunks to chromadb: %w", len(chunks), err)
	}
	return nil
}

func (c *chromaCollection) Query(ctx context.Context, embedding []float32, k int) ([]string, error) {
	results, err := c.col.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	docs := []string{}
	groups := results.GetDocumentsGroups()
	if len(groups) > 0 {
		for _, doc := range groups[0] {
			docs = append(docs, doc.ContentString())
		}
	}
	return docs, nil
}

func (c *chromaCollection) Count(ctx context.Context) (int, error) {
	count, err := c.col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}
