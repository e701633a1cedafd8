// Package cmd wires the CLI surface: generate, normalize, index,
// fetch-docs and version.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqlweaver",
	Short: "sqlweaver - natural language to Trino/Spark SQL",
	Long: `sqlweaver turns a question and a table description into an
engine-checked SQL query. Table descriptions can be free text, CSV,
SQL DDL or a requirements document; generation is grounded on locally
indexed engine documentation.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
