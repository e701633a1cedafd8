package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlweaver/sqlweaver/internal/extract"
	"github.com/sqlweaver/sqlweaver/internal/schema"
)

var normalizeKind string

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize a table description into the canonical schema",
	Long: `Normalize converts a table description to the canonical
{table_name, columns, relationships} record and prints it as JSON.
Document input prints the designed DDL text instead, which can be fed
back through --kind sql.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeKind, "kind", "k", "sql", "input format: text, csv, sql or document")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	kind, err := schema.ParseKind(normalizeKind)
	if err != nil {
		return err
	}

	// The CSV and SQL paths are pure; only free-text and document
	// input need the model.
	normCfg := schema.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Logger:       logger,
	}
	if kind == schema.KindNaturalLanguage || kind == schema.KindDocument {
		g, err := initGenkit(ctx, cfg)
		if err != nil {
			return err
		}
		completer, err := llmCompleter(g, cfg)
		if err != nil {
			return err
		}
		normCfg.Completer = completer
		normCfg.Embedder = newEmbedder(g, cfg)
	} else {
		normCfg.Completer = noCompleter{}
	}

	norm, err := schema.New(normCfg)
	if err != nil {
		return err
	}

	if kind == schema.KindDocument {
		text, err := extract.Text(args[0])
		if err != nil {
			return err
		}
		ddl, err := norm.GenerateFromDocument(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println(ddl)
		return nil
	}

	input, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	sch, err := norm.Normalize(ctx, input, kind)
	if err != nil {
		return err
	}
	return printJSON(sch)
}

// noCompleter backs the pure normalization paths, which never call the
// model. Reaching it means a dispatch bug.
type noCompleter struct{}

func (noCompleter) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("no model configured for this input kind")
}
