package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/sqlweaver/sqlweaver/internal/config"
	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/docs"
)

var indexDialect string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the documentation indexes from fetched raw docs",
	Long: `Index chunks the raw documentation under the raw docs directory
(one <dialect>_docs.txt file per dialect, produced by fetch-docs),
embeds every chunk and writes the per-dialect index for the configured
backend.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexDialect, "dialect", "d", "", "only index this dialect (default: all)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	dialects := dialect.All()
	if indexDialect != "" {
		d, err := dialect.Parse(indexDialect)
		if err != nil {
			return err
		}
		dialects = []dialect.Dialect{d}
	}

	g, err := initGenkit(ctx, cfg)
	if err != nil {
		return err
	}

	builder, err := docs.NewBuilder(docs.BuilderConfig{
		Embedder:      newEmbedder(g, cfg),
		EmbedderModel: cfg.EmbedderModel,
		ChunkSize:     cfg.ChunkSize,
		ChunkOverlap:  cfg.ChunkOverlap,
		IndexDir:      cfg.IndexDir,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if cfg.IndexBackend == config.BackendPostgres {
		pool, err = openPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	for _, d := range dialects {
		corpusPath := filepath.Join(cfg.RawDocsDir, fmt.Sprintf("%s_docs.txt", d))
		corpus, err := os.ReadFile(corpusPath)
		if err != nil {
			return fmt.Errorf("reading corpus for %s: %w (run fetch-docs first)", d, err)
		}

		var count int
		if pool != nil {
			store := docs.NewPGStore(pool, newEmbedder(g, cfg), string(d), logger)
			count, err = builder.BuildInto(ctx, store, d, string(corpus))
		} else {
			count, err = builder.Build(ctx, d, string(corpus))
		}
		if err != nil {
			return fmt.Errorf("indexing %s: %w", d, err)
		}
		fmt.Printf("indexed %d passages for %s\n", count, d)
	}
	return nil
}
