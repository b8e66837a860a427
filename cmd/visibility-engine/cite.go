// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/visibility-engine/internal/citation"
	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/report"
	"github.com/pdiddy/visibility-engine/internal/search"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite [competitors...]",
	Short: "Score how often and how well models cite each competitor",
	Long: `Cite asks every configured model a battery of industry questions and
scores each competitor's mentions in the answers by count, sentiment, and
prominence. Competitors come from the arguments, from a stored discovery
run (--from-run), or both.

Models without an API key are skipped. With no models configured every
metric is zero.`,
	RunE: runCite,
}

func runCite(cmd *cobra.Command, args []string) error {
	industry, _ := cmd.Flags().GetString("industry")
	models, _ := cmd.Flags().GetString("models")
	fromRun, _ := cmd.Flags().GetString("from-run")

	cfg := pipelineConfig(cmd)
	ctx := context.Background()

	competitors := append([]string(nil), args...)
	if fromRun != "" {
		run, err := loadDiscovery(ctx, cfg.Store, fromRun)
		if err != nil {
			return err
		}
		competitors = append(competitors, run.Names()...)
		if industry == "" {
			industry = run.Industry
		}
	}
	if len(competitors) == 0 {
		return fmt.Errorf("no competitors: pass names as arguments or use --from-run")
	}

	reg := backends(cfg.AI)
	var selected []llm.Backend
	if models != "" {
		selected = reg.Select(splitList(models))
	} else {
		selected = reg.Available()
	}
	if len(selected) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no model backends configured, all metrics will be zero")
	}

	engine := citation.NewEngine(selected, llm.NewCaller(cfg.AI, logger), cfg.Citation, logger)
	run := engine.Run(ctx, competitors, industry, cfg.Citation.FastMode)

	if err := saveAndWrite(cmd, cfg.Store, func(ctx context.Context, s storeSaver) error {
		return s.SaveCitations(ctx, run)
	}, run.ID, run); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(os.Stdout, run)
	}
	printCitations(os.Stdout, run)
	return nil
}

func loadDiscovery(ctx context.Context, cfg types.StoreConfig, id string) (*types.DiscoveryRun, error) {
	store, err := report.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadDiscovery(ctx, id)
}

func printCitations(w io.Writer, run *types.CitationRun) {
	names := make([]string, 0, len(run.Metrics))
	for name := range run.Metrics {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := run.Metrics[names[i]].Global, run.Metrics[names[j]].Global
		if a.CitationScore != b.CitationScore {
			return a.CitationScore > b.CitationScore
		}
		return names[i] < names[j]
	})

	header := fmt.Sprintf("%-30s  %-6s  %-6s  %-6s", "Competitor", "Score", "Rate", "Equal")
	for _, m := range run.Models {
		header += fmt.Sprintf("  %-10s", m)
	}
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, name := range names {
		m := run.Metrics[name]
		line := fmt.Sprintf("%-30s  %-6.3f  %-6.3f  %-6.3f",
			search.Truncate(name, 30), m.Global.CitationScore, m.Global.CitationRate, m.Global.EqualWeightedGlobal)
		for _, model := range run.Models {
			line += fmt.Sprintf("  %-10.3f", m.PerModel[model].CitationScore)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "\n%d competitors, %d questions, %d models, %d failed calls (run %s)\n",
		len(names), len(run.Queries), len(run.Models), run.FailedCalls, run.ID)
}

func init() {
	citeCmd.Flags().String("industry", "", "industry the questions are about (default \"software\")")
	citeCmd.Flags().Bool("fast", false, "ask only the first few questions (overrides citation.fast_mode)")
	citeCmd.Flags().String("models", "", "comma-separated models to ask (default: all configured)")
	citeCmd.Flags().String("from-run", "", "score the competitors of a stored discovery run")
	citeCmd.Flags().String("keywords", "", "comma-separated domain terms that confirm short-name mentions")
	addOutputFlags(citeCmd)

	rootCmd.AddCommand(citeCmd)
}
