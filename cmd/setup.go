package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/sqlweaver/sqlweaver/db"
	"github.com/sqlweaver/sqlweaver/internal/config"
	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/docs"
	"github.com/sqlweaver/sqlweaver/internal/llm"
	"github.com/sqlweaver/sqlweaver/internal/log"
)

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.NewWithWriter(os.Stderr, log.Config{Level: level})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// initGenkit initializes Genkit with the configured provider plugin.
// API keys are read by the plugins from the environment; their
// presence is checked here rather than at config load so that pure
// commands stay usable without credentials.
func initGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	if err := cfg.ValidateAPIKey(); err != nil {
		return nil, err
	}
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	return g, nil
}

// newEmbedder looks up the provider-registered embedder.
func newEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}

// llmCompleter builds the configured model completer.
func llmCompleter(g *genkit.Genkit, cfg *config.Config) (llm.Completer, error) {
	return llm.New(g, cfg.FullModelName(), cfg.Temperature, cfg.MaxTokens)
}

// openPool connects to PostgreSQL, runs migrations, and registers the
// pgvector types on every new connection.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	connURL := cfg.PostgresURL()
	if err := db.Migrate(connURL); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres config: %w", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return pool, nil
}

// openStores returns one documentation store per dialect for the
// configured backend. The file backend skips dialects whose index file
// does not exist; retrieval degrades to the unavailable sentinel for
// those.
func openStores(ctx context.Context, cfg *config.Config, embedder ai.Embedder, logger log.Logger) (map[dialect.Dialect]docs.Store, func(), error) {
	switch cfg.IndexBackend {
	case config.BackendPostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		stores := make(map[dialect.Dialect]docs.Store, len(dialect.All()))
		for _, d := range dialect.All() {
			stores[d] = docs.NewPGStore(pool, embedder, string(d), logger)
		}
		return stores, pool.Close, nil
	default:
		stores := docs.OpenFileStores(cfg.IndexDir, embedder, logger)
		return stores, func() {}, nil
	}
}
