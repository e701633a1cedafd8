package docs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/log"
)

// Builder turns a raw documentation corpus into a persistent
// per-dialect index. Building happens offline (the index command);
// generation only ever reads the result.
type Builder struct {
	embedder      ai.Embedder
	embedderModel string
	chunkSize     int
	chunkOverlap  int
	indexDir      string
	logger        log.Logger
}

// BuilderConfig contains all required parameters for a Builder.
type BuilderConfig struct {
	Embedder      ai.Embedder
	EmbedderModel string
	ChunkSize     int
	ChunkOverlap  int
	IndexDir      string
	Logger        log.Logger
}

// NewBuilder creates a Builder. Embedder and IndexDir are required.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if cfg.IndexDir == "" {
		return nil, fmt.Errorf("index directory is required")
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 800
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Builder{
		embedder:      cfg.Embedder,
		embedderModel: cfg.EmbedderModel,
		chunkSize:     cfg.ChunkSize,
		chunkOverlap:  cfg.ChunkOverlap,
		indexDir:      cfg.IndexDir,
		logger:        cfg.Logger,
	}, nil
}

// Build chunks the corpus, embeds every chunk and writes the dialect's
// file index, replacing any previous build. Returns the passage count.
//
// Passage IDs are deterministic ("trino:0003") so a rebuild of the same
// corpus upserts cleanly into backends with persistent keys.
func (b *Builder) Build(ctx context.Context, d dialect.Dialect, corpus string) (int, error) {
	chunks := Chunk(corpus, b.chunkSize, b.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("corpus for %s produced no chunks", d)
	}

	now := time.Now().UTC()
	passages := make([]Passage, len(chunks))
	for i, c := range chunks {
		passages[i] = Passage{
			ID:        fmt.Sprintf("%s:%04d", d, i),
			Text:      c,
			Metadata:  map[string]string{"dialect": d.String()},
			CreatedAt: now,
		}
	}

	store := NewFileStore(IndexPath(b.indexDir, d), b.embedder, b.embedderModel)
	if err := store.Add(ctx, passages); err != nil {
		return 0, fmt.Errorf("indexing %s documentation: %w", d, err)
	}
	if err := store.Save(); err != nil {
		return 0, fmt.Errorf("saving %s index: %w", d, err)
	}

	b.logger.Info("documentation index built",
		"dialect", d.String(), "passages", len(passages), "path", IndexPath(b.indexDir, d))
	return len(passages), nil
}

// BuildInto embeds the corpus into an arbitrary store (for example the
// pgvector backend) instead of the file index.
func (b *Builder) BuildInto(ctx context.Context, store Store, d dialect.Dialect, corpus string) (int, error) {
	chunks := Chunk(corpus, b.chunkSize, b.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("corpus for %s produced no chunks", d)
	}

	now := time.Now().UTC()
	passages := make([]Passage, len(chunks))
	for i, c := range chunks {
		passages[i] = Passage{
			ID:        fmt.Sprintf("%s:%04d", d, i),
			Text:      c,
			Metadata:  map[string]string{"dialect": d.String()},
			CreatedAt: now,
		}
	}

	if err := store.Add(ctx, passages); err != nil {
		return 0, fmt.Errorf("indexing %s documentation: %w", d, err)
	}
	return len(passages), nil
}

// IndexPath returns the file-index location for a dialect.
func IndexPath(indexDir string, d dialect.Dialect) string {
	return filepath.Join(indexDir, d.String()+"_index.json")
}

// OpenFileStores opens the file index of every dialect that has one.
// Missing or unreadable indexes are logged and omitted; the Retriever
// degrades those dialects to the Unavailable sentinel.
func OpenFileStores(indexDir string, embedder ai.Embedder, logger log.Logger) map[dialect.Dialect]Store {
	if logger == nil {
		logger = log.NewNop()
	}

	stores := make(map[dialect.Dialect]Store)
	for _, d := range dialect.All() {
		store, err := OpenFileStore(IndexPath(indexDir, d), embedder)
		if err != nil {
			logger.Warn("documentation index unavailable", "dialect", d.String(), "error", err)
			continue
		}
		stores[d] = store
	}
	return stores
}
