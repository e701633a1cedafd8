package docs

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/firebase/genkit/go/ai"
)

// MemoryStore is an in-memory vector store. It backs the transient
// index used by document-to-schema generation and is the in-process
// half of FileStore.
//
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	embedder ai.Embedder

	mu      sync.RWMutex
	entries []memoryEntry
}

type memoryEntry struct {
	passage   Passage
	embedding []float32
}

// NewMemoryStore creates an empty in-memory store using the given
// embedder for both indexing and queries.
func NewMemoryStore(embedder ai.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

// Add embeds all passages in a single request and appends them.
func (s *MemoryStore) Add(ctx context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	input := make([]*ai.Document, len(passages))
	for i, p := range passages {
		input[i] = ai.DocumentFromText(p.Text, nil)
	}

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return fmt.Errorf("embedding passages: %w", err)
	}
	if len(resp.Embeddings) != len(passages) {
		return fmt.Errorf("embedder returned %d embeddings for %d passages", len(resp.Embeddings), len(passages))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range passages {
		if len(resp.Embeddings[i].Embedding) == 0 {
			return fmt.Errorf("empty embedding returned for passage %q", p.ID)
		}
		s.entries = append(s.entries, memoryEntry{passage: p, embedding: resp.Embeddings[i].Embedding})
	}
	return nil
}

// Search embeds the query and ranks all entries by cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]Scored, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned for query")
	}
	queryEmbedding := resp.Embeddings[0].Embedding

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]Scored, len(s.entries))
	for i, e := range s.entries {
		scored[i] = Scored{
			Passage:    e.passage,
			Similarity: cosineSimilarity(queryEmbedding, e.embedding),
		}
	}

	// Stable sort keeps insertion order among equal scores, which makes
	// retrieval deterministic for identical inputs.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Len returns the number of indexed passages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
