// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/visibility-engine/internal/extract"
	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/internal/query"
	"github.com/pdiddy/visibility-engine/internal/search"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Pipeline is one discovery configuration. The Variant in Config selects
// the method list; strictness, threshold and concurrency come from Config
// as well.
type Pipeline struct {
	Search    search.Backend
	Extractor *extract.Extractor

	// Validator filters ranked candidates. When nil a degraded validator
	// built from Config is used.
	Validator *Validator

	Config types.DiscoveryConfig

	// QueryDelay is the pause between sequential search queries.
	QueryDelay time.Duration

	Logger *zap.Logger

	// Progress, when set, receives one summary line per method.
	Progress io.Writer
}

// Discover runs every detection method for company and returns the
// ranked, validated competitors.
//
// Only configuration errors, cancellation, and (under fail-closed search
// strictness) failed searches are returned. Other failures leave the
// method's contribution empty and are recorded in its MethodOutcome.
func (p *Pipeline) Discover(ctx context.Context, company, industry string) (*types.DiscoveryRun, error) {
	company = strings.TrimSpace(company)
	industry = strings.TrimSpace(industry)
	if company == "" {
		return nil, eris.New("company name is required")
	}
	if p.Search == nil {
		return nil, types.ConfigurationError("discovery requires a search backend")
	}
	if p.Extractor == nil {
		return nil, types.ConfigurationError("discovery requires a name extraction backend")
	}

	cfg := p.config()
	log := logging.OrNop(p.Logger).With(zap.String("company", company), zap.String("variant", string(cfg.Variant)))

	run := &types.DiscoveryRun{
		ID:        uuid.NewString(),
		Company:   company,
		Industry:  industry,
		Variant:   cfg.Variant,
		StartedAt: time.Now().UTC(),
	}
	log.Info("discovery started", zap.String("run", run.ID))

	methods := query.Methods(cfg.Variant)
	outcomes := make([]types.MethodOutcome, len(methods))
	if cfg.Concurrent {
		g, gCtx := errgroup.WithContext(ctx)
		for i, m := range methods {
			g.Go(func() error {
				o, err := p.runMethod(gCtx, cfg, log, m, company, industry)
				outcomes[i] = o
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, m := range methods {
			o, err := p.runMethod(ctx, cfg, log, m, company, industry)
			if err != nil {
				return nil, err
			}
			outcomes[i] = o
		}
	}

	// Merge in method order so ties rank the same way on every run.
	acc := NewAccumulator()
	for _, o := range outcomes {
		acc.Add(o.Method, o.Names)
		p.progress(o)
	}
	run.Methods = outcomes
	run.Candidates = acc.Ranked()

	v := p.Validator
	if v == nil {
		v = NewValidator(nil, p.Extractor.Caller(), cfg, p.Logger)
	}
	competitors, err := v.Validate(ctx, company, industry, run.Candidates)
	if err != nil {
		return nil, eris.Wrap(err, "validating candidates")
	}
	run.Competitors = competitors
	run.FinishedAt = time.Now().UTC()

	log.Info("discovery finished",
		zap.String("run", run.ID),
		zap.Int("candidates", len(run.Candidates)),
		zap.Int("competitors", len(run.Competitors)),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return run, nil
}

// runMethod searches, deduplicates, and extracts names for one method.
func (p *Pipeline) runMethod(ctx context.Context, cfg types.DiscoveryConfig, log *zap.Logger, m query.Method, company, industry string) (types.MethodOutcome, error) {
	queries := query.Generate(m, company, industry)
	outcome := types.MethodOutcome{Method: string(m), Queries: queries, Names: []string{}}

	c := &search.Collector{
		Backend:    p.Search,
		Strictness: cfg.Strictness,
		Delay:      p.QueryDelay,
		Logger:     log,
	}
	var (
		results []types.SearchResult
		err     error
	)
	if cfg.Concurrent {
		results, err = c.Concurrent(ctx, queries)
	} else {
		results, err = c.Sequential(ctx, queries)
	}
	if err != nil {
		return outcome, eris.Wrapf(err, "method %s", m)
	}

	results, removed := search.Deduplicate(results)
	outcome.Results = len(results)
	log.Debug("method searched", zap.String("method", string(m)), zap.Int("results", len(results)), zap.Int("duplicates", removed))

	names, err := p.Extractor.Extract(ctx, company, industry, results)
	if err != nil {
		if errors.Is(err, types.ErrConfiguration) || ctx.Err() != nil {
			return outcome, eris.Wrapf(err, "method %s", m)
		}
		log.Warn("name extraction failed, method contributes nothing", zap.String("method", string(m)), zap.Error(err))
		outcome.Error = err.Error()
		return outcome, nil
	}
	if names != nil {
		outcome.Names = names
	}
	return outcome, nil
}

// config fills unset policy fields from the variant defaults. Delays are
// taken as given.
func (p *Pipeline) config() types.DiscoveryConfig {
	cfg := p.Config
	if cfg.Variant == "" {
		cfg.Variant = types.VariantComprehensive
	}
	def := types.DefaultDiscoveryConfig(cfg.Variant)
	if cfg.Strictness == "" {
		cfg.Strictness = def.Strictness
	}
	if cfg.ValidationStrictness == "" {
		cfg.ValidationStrictness = def.ValidationStrictness
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.MaxUnscored <= 0 {
		cfg.MaxUnscored = def.MaxUnscored
	}
	return cfg
}

func (p *Pipeline) progress(o types.MethodOutcome) {
	if p.Progress == nil {
		return
	}
	status := "ok"
	if o.Error != "" {
		status = "degraded"
	}
	fmt.Fprintf(p.Progress, "%-18s %2d queries  %3d results  %2d names  %s\n",
		o.Method, len(o.Queries), o.Results, len(o.Names), status)
}
