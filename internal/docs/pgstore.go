package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/sqlweaver/sqlweaver/internal/log"
)

// PGQuerier is the subset of pgxpool.Pool the PGStore needs.
// Consumer-defined so tests can substitute a fake.
type PGQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// searchTimeout bounds vector searches so a slow database cannot stall
// generation; the Retriever converts timeouts into the sentinel.
const searchTimeout = 10 * time.Second

// PGStore is a Store backed by PostgreSQL with the pgvector extension.
// Each dialect's corpus shares one doc_passages table, separated by the
// corpus column. The schema is managed by db/migrations.
//
// PGStore is safe for concurrent use.
type PGStore struct {
	db       PGQuerier
	embedder ai.Embedder
	corpus   string
	logger   log.Logger
}

// NewPGStore creates a PGStore scoped to one corpus (one per dialect).
// The pool must have pgvector types registered (see cmd).
func NewPGStore(db PGQuerier, embedder ai.Embedder, corpus string, logger log.Logger) *PGStore {
	if logger == nil {
		logger = log.NewNop()
	}
	return &PGStore{db: db, embedder: embedder, corpus: corpus, logger: logger}
}

// Add embeds and upserts the passages into doc_passages.
func (s *PGStore) Add(ctx context.Context, passages []Passage) error {
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

	const upsert = `
		INSERT INTO doc_passages (id, corpus, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET corpus = EXCLUDED.corpus, content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`

	for i, p := range passages {
		if len(resp.Embeddings[i].Embedding) == 0 {
			return fmt.Errorf("empty embedding returned for passage %q", p.ID)
		}
		embedding := pgvector.NewVector(resp.Embeddings[i].Embedding)

		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %q: %w", p.ID, err)
		}
		createdAt := pgtype.Timestamptz{Time: p.CreatedAt, Valid: !p.CreatedAt.IsZero()}

		if _, err := s.db.Exec(ctx, upsert, p.ID, s.corpus, p.Text, embedding, metadataJSON, createdAt); err != nil {
			return fmt.Errorf("upserting passage %q: %w", p.ID, err)
		}
	}

	s.logger.Debug("passages stored", "corpus", s.corpus, "count", len(passages))
	return nil
}

// Search embeds the query and runs a cosine-distance search over the
// store's corpus.
func (s *PGStore) Search(ctx context.Context, query string, k int) ([]Scored, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	resp, err := s.embedder.Embed(queryCtx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(query, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned for query")
	}
	queryEmbedding := pgvector.NewVector(resp.Embeddings[0].Embedding)

	const search = `
		SELECT id, content, metadata, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM doc_passages
		WHERE corpus = $2
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := s.db.Query(queryCtx, search, queryEmbedding, s.corpus, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []Scored
	for rows.Next() {
		var (
			id, content  string
			metadataJSON []byte
			createdAt    pgtype.Timestamptz
			similarity   float64
		)
		if err := rows.Scan(&id, &content, &metadataJSON, &createdAt, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}

		var metadata map[string]string
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
				s.logger.Warn("failed to parse passage metadata", "passage_id", id, "error", err)
				metadata = nil
			}
		}

		var rowCreatedAt time.Time
		if createdAt.Valid {
			rowCreatedAt = createdAt.Time
		}

		results = append(results, Scored{
			Passage: Passage{
				ID:        id,
				Text:      content,
				Metadata:  metadata,
				CreatedAt: rowCreatedAt,
			},
			Similarity: float32(similarity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}
