package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/docs"
)

var fetchDialect string

var fetchDocsCmd = &cobra.Command{
	Use:   "fetch-docs",
	Short: "Download and clean the engine documentation pages",
	Long: `Fetch-docs scrapes the configured documentation URLs for each
dialect, extracts readable text, and writes <dialect>_docs.txt files
into the raw docs directory for the index command to consume.`,
	RunE: runFetchDocs,
}

func init() {
	fetchDocsCmd.Flags().StringVarP(&fetchDialect, "dialect", "d", "", "only fetch this dialect (default: all)")
	rootCmd.AddCommand(fetchDocsCmd)
}

func runFetchDocs(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	dialects := dialect.All()
	if fetchDialect != "" {
		d, err := dialect.Parse(fetchDialect)
		if err != nil {
			return err
		}
		dialects = []dialect.Dialect{d}
	}

	if err := os.MkdirAll(cfg.RawDocsDir, 0o755); err != nil {
		return fmt.Errorf("creating raw docs dir: %w", err)
	}

	loader := docs.NewLoader(cfg.ScraperParallelism,
		time.Duration(cfg.ScraperDelayMs)*time.Millisecond, logger)

	for _, d := range dialects {
		urls := cfg.DocURLs(string(d))
		if len(urls) == 0 {
			logger.Warn("no documentation urls configured", "dialect", d)
			continue
		}

		text, err := loader.Fetch(urls)
		if err != nil {
			return fmt.Errorf("fetching %s docs: %w", d, err)
		}

		outPath := filepath.Join(cfg.RawDocsDir, fmt.Sprintf("%s_docs.txt", d))
		if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", outPath, len(text))
	}
	return nil
}
