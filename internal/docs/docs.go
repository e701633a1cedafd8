// Package docs manages the reference-documentation corpus used to
// ground SQL generation.
//
// The corpus is split into passages, embedded, and stored in a vector
// index, one per dialect, built offline by the index command and
// opened read-only at generation time. Two index backends exist: a
// file-backed store (a directory of serialized indexes) and a
// PostgreSQL/pgvector store.
//
// Retrieval is strictly best-effort: the Retriever never propagates a
// store failure, it degrades to a sentinel passage so generation is
// never blocked on documentation.
package docs

import (
	"context"
	"time"
)

// Passage is a single indexed snippet of reference documentation.
type Passage struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at,omitzero"`
}

// Scored pairs a passage with its similarity to a query.
type Scored struct {
	Passage    Passage
	Similarity float32 // cosine similarity, higher is more relevant
}

// Store is the index-storage collaborator. Implementations must support
// concurrent Search calls; Add is only invoked by the offline builder.
type Store interface {
	// Add embeds and stores the given passages.
	Add(ctx context.Context, passages []Passage) error

	// Search returns the top-k passages ordered by descending
	// similarity to the query.
	Search(ctx context.Context, query string, k int) ([]Scored, error)
}
