package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/visibility-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a single web search query",
	Long: `Search sends one query to Google Programmable Search and prints the
deduplicated results. Useful for checking credentials and query wording
before a discovery run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	backend, err := search.NewGoogleBackend(cfg.Search, nil)
	if err != nil {
		return err
	}

	results, err := backend.Search(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	results, _ = search.Deduplicate(results)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return search.FormatJSON(results, os.Stdout)
	}
	search.FormatTable(results, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}
