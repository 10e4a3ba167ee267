package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github/itish2003/medassist/models"
)

// VectorStore hands out named collections of embedded chunks.
type VectorStore interface {
	// OpenCollection creates the collection or returns the existing one.
	OpenCollection(ctx context.Context, name string) (Collection, error)
	DropCollection(ctx context.Context, name string) error
}

// Collection is one named set of chunks searchable by vector similarity.
// Distances are squared L2 in every backend (Chroma's default "l2" space).
type Collection interface {
	Name() string
	// Clear deletes every stored chunk.
	Clear(ctx context.Context) error
	Add(ctx context.Context, chunks []models.DocumentChunk) error
	// Query returns the texts of the k nearest chunks, nearest first, or all
	// chunks when fewer than k are stored.
	Query(ctx context.Context, embedding []float32, k int) ([]string, error)
	Count(ctx context.Context) (int, error)
}

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrDuplicateID        = errors.New("duplicate chunk id")
)

// MemoryStore keeps collections in process memory. Each collection guards
// its own entries, but nothing orders a Clear/Add/Query sequence of one
// request against another's on the same collection.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

func (s *MemoryStore) OpenCollection(_ context.Context, name string) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c := &memoryCollection{name: name}
	s.collections[name] = c
	return c, nil
}

func (s *MemoryStore) DropCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

// Len reports how many collections exist.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections)
}

type memoryCollection struct {
	name string

	mu      sync.RWMutex
	entries []models.DocumentChunk
	dim     int
}

func (c *memoryCollection) Name() string { return c.name }

func (c *memoryCollection) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.dim = 0
	return nil
}

func (c *memoryCollection) Add(_ context.Context, chunks []models.DocumentChunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.entries)+len(chunks))
	for _, e := range c.entries {
		seen[e.ID] = struct{}{}
	}
	dim := c.dim
	for _, ch := range chunks {
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: %q in collection %s", ErrDuplicateID, ch.ID, c.name)
		}
		seen[ch.ID] = struct{}{}
		if len(ch.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %q has an empty embedding", ErrDimensionMismatch, ch.ID)
		}
		if dim == 0 {
			dim = len(ch.Embedding)
		}
		if len(ch.Embedding) != dim {
			return fmt.Errorf("%w: chunk %q has %d, collection has %d", ErrDimensionMismatch, ch.ID, len(ch.Embedding), dim)
		}
	}

	c.entries = append(c.entries, chunks...)
	c.dim = dim
	return nil
}

func (c *memoryCollection) Query(_ context.Context, embedding []float32, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("n results must be positive, got %d", k)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return []string{}, nil
	}
	if len(embedding) != c.dim {
		return nil, fmt.Errorf("%w: query has %d, collection has %d", ErrDimensionMismatch, len(embedding), c.dim)
	}

	type scored struct {
		idx  int
		dist float32
	}
	ranked := make([]scored, len(c.entries))
	for i, e := range c.entries {
		ranked[i] = scored{idx: i, dist: squaredL2(embedding, e.Embedding)}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].dist < ranked[b].dist })

	if k > len(ranked) {
		k = len(ranked)
	}
	docs := make([]string, k)
	for i := 0; i < k; i++ {
		docs[i] = c.entries[ranked[i].idx].Text
	}
	return docs, nil
}

func (c *memoryCollection) Count(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// squaredL2 ranks vectors of different lengths last.
func squaredL2(a, b []float32) float32 {
	if len(a) != len(b) {
		return math.MaxFloat32
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
