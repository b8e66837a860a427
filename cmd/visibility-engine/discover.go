// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/visibility-engine/internal/discover"
	"github.com/pdiddy/visibility-engine/internal/extract"
	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/search"
	"github.com/pdiddy/visibility-engine/internal/seo"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <company>",
	Short: "Find and rank the competitors of a company",
	Long: `Discover runs the templated search queries of every detection method
for the company, extracts candidate names from the results with a model,
ranks them by how many methods proposed them, and keeps those the model
scores as relevant.

The comprehensive variant searches sequentially and stops on a failed
search; the enhanced variant adds two methods, fans out, and tolerates
failed searches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	company := strings.Join(args, " ")
	industry, _ := cmd.Flags().GetString("industry")
	domain, _ := cmd.Flags().GetString("domain")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := pipelineConfig(cmd)

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	searchBackend, err := search.NewGoogleBackend(cfg.Search, nil)
	if err != nil {
		return err
	}
	model, err := backends(cfg.AI).Get(cfg.AI.ExtractionBackend)
	if err != nil {
		return err
	}
	caller := llm.NewCaller(cfg.AI, logger)
	extractor, err := extract.New(model, caller, logger)
	if err != nil {
		return err
	}

	scorer := model
	if noValidate {
		scorer = nil
	}

	p := &discover.Pipeline{
		Search:     searchBackend,
		Extractor:  extractor,
		Validator:  discover.NewValidator(scorer, caller, cfg.Discovery, logger),
		Config:     cfg.Discovery,
		QueryDelay: cfg.Search.QueryDelay,
		Logger:     logger,
		Progress:   os.Stderr,
	}

	fmt.Fprintf(os.Stderr, "discovering competitors of %s (%s, %s)\n", company, cfg.Discovery.Variant, model.Name())
	run, err := p.Discover(ctx, company, industry)
	if err != nil {
		return err
	}

	if domain != "" {
		m, err := seo.StubProvider{}.Metrics(ctx, domain)
		if err != nil {
			return err
		}
		run.Domain = &m
	}

	if err := saveAndWrite(cmd, cfg.Store, func(ctx context.Context, s storeSaver) error {
		return s.SaveDiscovery(ctx, run)
	}, run.ID, run); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return printJSON(os.Stdout, run)
	}
	printDiscovery(os.Stdout, run)
	return nil
}

func printDiscovery(w io.Writer, run *types.DiscoveryRun) {
	if len(run.Competitors) == 0 {
		fmt.Fprintln(w, "No competitors found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-40s  %-9s  %s\n", "Rank", "Competitor", "Frequency", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 66))
	for i, c := range run.Competitors {
		score := "-"
		if c.Scored {
			score = fmt.Sprintf("%d", c.RelevanceScore)
		}
		fmt.Fprintf(w, "%-4d  %-40s  %-9d  %s\n", i+1, search.Truncate(c.Name, 40), c.Frequency, score)
	}

	fmt.Fprintf(w, "\n%d competitors from %d candidates (run %s, %s)\n",
		len(run.Competitors), len(run.Candidates), run.ID, run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	if run.Domain != nil {
		fmt.Fprintf(w, "domain %s: authority %d, monthly visits %d (source: %s)\n",
			run.Domain.Domain, run.Domain.DomainAuthority, run.Domain.MonthlyVisits, run.Domain.Source)
	}
}

func init() {
	discoverCmd.Flags().String("industry", "", "industry or market context for the queries")
	discoverCmd.Flags().String("variant", string(types.VariantComprehensive), "pipeline variant: comprehensive or enhanced")
	discoverCmd.Flags().String("domain", "", "target domain to attach SEO metrics for")
	discoverCmd.Flags().Bool("no-validate", false, "skip relevance scoring and keep the top candidates unscored")
	discoverCmd.Flags().Duration("timeout", 0, "overall timeout for the run (0 = none)")
	addOutputFlags(discoverCmd)

	rootCmd.AddCommand(discoverCmd)
}
