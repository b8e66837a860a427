// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/visibility-engine/internal/report"
	"github.com/pdiddy/visibility-engine/internal/search"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect and export stored runs (list, show, export)",
	Long: `Report reads the run database that discover and cite write to.
Use subcommands to list runs, show one run, or export all of them.`,
}

// --- list subcommand ---

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runReportList,
}

func runReportList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	ctx := context.Background()

	store, err := report.Open(ctx, pipelineConfig(cmd).Store)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, kind)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(os.Stdout, runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs stored.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-9s  %-24s  %-14s  %s\n", "ID", "Kind", "Company", "Variant", "Started")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-9s  %-24s  %-14s  %s\n",
			r.ID, r.Kind, search.Truncate(r.Company, 24), r.Variant, r.StartedAt)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

// --- show subcommand ---

var reportShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the results of one stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

func runReportShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	store, err := report.Open(ctx, pipelineConfig(cmd).Store)
	if err != nil {
		return err
	}
	defer store.Close()

	kind, err := store.Kind(ctx, id)
	if err != nil {
		return err
	}

	switch kind {
	case report.KindDiscovery:
		if jsonOutput {
			run, err := store.LoadDiscovery(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, run)
		}
		rows, err := store.Competitors(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-9s  %s\n", "Rank", "Competitor", "Frequency", "Score")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 66))
		for _, r := range rows {
			score := "-"
			if r.Scored {
				score = fmt.Sprintf("%d", r.RelevanceScore)
			}
			fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-9d  %s\n", r.Rank, search.Truncate(r.Name, 40), r.Frequency, score)
		}
		fmt.Fprintf(os.Stdout, "\n%d competitors\n", len(rows))

	case report.KindCitation:
		if jsonOutput {
			run, err := store.LoadCitations(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, run)
		}
		rows, err := store.Citations(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-10s  %-6s  %-6s  %-6s\n", "Competitor", "Model", "Cited", "Rate", "Score")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 68))
		for _, r := range rows {
			fmt.Fprintf(os.Stdout, "%-30s  %-10s  %2d/%-3d  %-6.3f  %-6.3f\n",
				search.Truncate(r.Competitor, 30), r.Model, r.CitationCount, r.TotalQueries, r.CitationRate, r.CitationScore)
		}

	default:
		return fmt.Errorf("run %s has unknown kind %q", id, kind)
	}
	return nil
}

// --- export subcommand ---

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to YAML or JSON",
	Long: `Export writes every stored run (or those of one --kind) to
<store.dir>/index/export.yaml or export.json.`,
	RunE: runReportExport,
}

func runReportExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	kind, _ := cmd.Flags().GetString("kind")
	ctx := context.Background()

	store, err := report.Open(ctx, pipelineConfig(cmd).Store)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml":
		path, err = store.ExportYAML(ctx, kind)
	case "json":
		path, err = store.ExportJSON(ctx, kind)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", path)
	return nil
}

func init() {
	reportListCmd.Flags().String("kind", "", "only list runs of this kind (discovery or citation)")
	reportListCmd.Flags().Bool("json", false, "output as JSON")

	reportShowCmd.Flags().Bool("json", false, "output the full run as JSON")

	reportExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	reportExportCmd.Flags().String("kind", "", "only export runs of this kind (discovery or citation)")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportExportCmd)
	rootCmd.AddCommand(reportCmd)
}
