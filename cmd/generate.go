package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/sqlweaver/sqlweaver/internal/config"
	"github.com/sqlweaver/sqlweaver/internal/docs"
	"github.com/sqlweaver/sqlweaver/internal/extract"
	"github.com/sqlweaver/sqlweaver/internal/generate"
	"github.com/sqlweaver/sqlweaver/internal/llm"
	"github.com/sqlweaver/sqlweaver/internal/log"
	"github.com/sqlweaver/sqlweaver/internal/observability"
	"github.com/sqlweaver/sqlweaver/internal/schema"
)

var (
	generateDialect    string
	generateSchemaFile string
	generateSchemaKind string
)

var generateCmd = &cobra.Command{
	Use:   "generate [question]",
	Short: "Generate a SQL query from a question and a table description",
	Long: `Generate normalizes the table description, retrieves relevant engine
documentation, and asks the model for a query satisfying the output
contract. The result is printed as JSON: on success the four-field
result object, on failure {"error": ..., "raw_response": ...}.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateDialect, "dialect", "d", "trino", "target SQL dialect (trino or spark)")
	generateCmd.Flags().StringVarP(&generateSchemaFile, "schema-file", "f", "", "path to the table description")
	generateCmd.Flags().StringVarP(&generateSchemaKind, "schema-kind", "k", "sql", "description format: text, csv, sql or document")
	_ = generateCmd.MarkFlagRequired("schema-file")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
		ServiceName: "sqlweaver",
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(ctx) }()

	g, err := initGenkit(ctx, cfg)
	if err != nil {
		return err
	}
	completer, err := llmCompleter(g, cfg)
	if err != nil {
		return err
	}
	embedder := newEmbedder(g, cfg)

	sch, err := loadSchema(ctx, cfg, completer, embedder, logger)
	if err != nil {
		return err
	}

	stores, closeStores, err := openStores(ctx, cfg, embedder, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}

	orch, err := generate.New(generate.Config{
		Completer:     completer,
		Retriever:     docs.NewRetriever(stores, logger),
		Limiter:       limiter,
		TopK:          cfg.TopK,
		LenientFences: cfg.LenientFences,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	res, err := orch.Generate(ctx, question, sch, generateDialect)
	if err != nil {
		var gerr *generate.Error
		if errors.As(err, &gerr) {
			return printJSON(gerr)
		}
		return err
	}
	return printJSON(res)
}

// loadSchema reads the description file and normalizes it. Document
// input runs the retrieval-backed schema design step first and feeds
// the resulting DDL through the SQL path.
func loadSchema(ctx context.Context, cfg *config.Config, completer llm.Completer, embedder ai.Embedder, logger log.Logger) (schema.Schema, error) {
	kind, err := schema.ParseKind(generateSchemaKind)
	if err != nil {
		return schema.Schema{}, err
	}

	norm, err := schema.New(schema.Config{
		Completer:    completer,
		Embedder:     embedder,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Logger:       logger,
	})
	if err != nil {
		return schema.Schema{}, err
	}

	if kind == schema.KindDocument {
		text, err := extract.Text(generateSchemaFile)
		if err != nil {
			return schema.Schema{}, err
		}
		ddl, err := norm.GenerateFromDocument(ctx, text)
		if err != nil {
			return schema.Schema{}, err
		}
		return norm.Normalize(ctx, []byte(ddl), schema.KindSQL)
	}

	input, err := os.ReadFile(generateSchemaFile)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("reading schema file: %w", err)
	}
	return norm.Normalize(ctx, input, kind)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
