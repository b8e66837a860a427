// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

const defaultConcurrency = 4

// Engine asks every backend the question battery and scores each
// competitor's citations in the answers.
type Engine struct {
	Backends []llm.Backend
	Caller   llm.Caller

	// Concurrency bounds in-flight model calls (default 4).
	Concurrency int

	// Keywords confirm mentions of short, ambiguous names.
	Keywords []string

	Logger *zap.Logger
}

// NewEngine returns an Engine over backends configured from cfg.
func NewEngine(backends []llm.Backend, caller llm.Caller, cfg types.CitationConfig, logger *zap.Logger) *Engine {
	return &Engine{
		Backends:    backends,
		Caller:      caller,
		Concurrency: cfg.Concurrency,
		Keywords:    cfg.Keywords,
		Logger:      logger,
	}
}

// answer is one backend's reply to one question.
type answer struct {
	text   string
	failed bool
}

// Compute returns the citation metrics for each competitor.
func (e *Engine) Compute(ctx context.Context, competitors []string, industry string, fastMode bool) map[string]types.CitationMetric {
	return e.Run(ctx, competitors, industry, fastMode).Metrics
}

// Run asks each backend every question once and scores all competitors
// against the answers. It never fails: a failed call counts as an
// attempted query with no citation, and with no backends every competitor
// gets zero metrics.
func (e *Engine) Run(ctx context.Context, competitors []string, industry string, fastMode bool) *types.CitationRun {
	log := logging.OrNop(e.Logger)
	run := &types.CitationRun{
		ID:          uuid.NewString(),
		Industry:    strings.TrimSpace(industry),
		FastMode:    fastMode,
		Models:      make([]string, len(e.Backends)),
		Competitors: uniqueNames(competitors),
		Metrics:     make(map[string]types.CitationMetric),
		StartedAt:   time.Now().UTC(),
	}
	for i, b := range e.Backends {
		run.Models[i] = b.Name()
	}

	run.Queries = QueryBattery(industry)
	if fastMode && len(run.Queries) > FastQueryCount {
		run.Queries = run.Queries[:FastQueryCount]
	}

	answers := e.collect(ctx, log, run.Queries)
	for _, row := range answers {
		for _, a := range row {
			if a.failed {
				run.FailedCalls++
			}
		}
	}

	for _, name := range run.Competitors {
		perModel := make(map[string]types.ModelCitation, len(e.Backends))
		for bi, b := range e.Backends {
			var mc types.ModelCitation
			for _, a := range answers[bi] {
				mc.TotalQueries++
				if a.failed {
					continue
				}
				r := Score(a.text, name, e.Keywords)
				if !r.Detected {
					continue
				}
				mc.CitationCount++
				mc.RawCitationScore += Contribution(r)
			}
			mc.Finalize()
			perModel[b.Name()] = mc
		}
		run.Metrics[name] = types.CitationMetric{PerModel: perModel, Global: Aggregate(perModel)}
	}

	run.FinishedAt = time.Now().UTC()
	log.Info("citation scoring finished",
		zap.String("run", run.ID),
		zap.Int("models", len(run.Models)),
		zap.Int("queries", len(run.Queries)),
		zap.Int("competitors", len(run.Competitors)),
		zap.Int("failed_calls", run.FailedCalls),
	)
	return run
}

// collect fetches every (backend, question) answer once, bounded by
// Concurrency. answers[b][q] holds backend b's reply to question q.
func (e *Engine) collect(ctx context.Context, log *zap.Logger, queries []string) [][]answer {
	answers := make([][]answer, len(e.Backends))
	for i := range answers {
		answers[i] = make([]answer, len(queries))
	}

	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for bi, b := range e.Backends {
		for qi, q := range queries {
			g.Go(func() error {
				text, err := e.Caller.Generate(ctx, b, q)
				if err != nil {
					log.Warn("citation query failed, scoring as no citation",
						zap.String("backend", b.Name()),
						zap.String("query", q),
						zap.Error(err),
					)
					answers[bi][qi] = answer{failed: true}
					return nil
				}
				answers[bi][qi] = answer{text: text}
				return nil
			})
		}
	}
	g.Wait()
	return answers
}

// Aggregate combines per-model figures. Counters and raw scores are summed
// over models with at least one attempted query, and the global ratios are
// taken over those sums. EqualWeightedGlobal is the plain mean of the
// contributing models' CitationScore.
func Aggregate(perModel map[string]types.ModelCitation) types.GlobalCitation {
	names := make([]string, 0, len(perModel))
	for name := range perModel {
		names = append(names, name)
	}
	sort.Strings(names)

	var g types.GlobalCitation
	var sum float64
	var contributing int
	for _, name := range names {
		mc := perModel[name]
		if mc.TotalQueries <= 0 {
			continue
		}
		g.CitationCount += mc.CitationCount
		g.TotalQueries += mc.TotalQueries
		g.RawCitationScore += mc.RawCitationScore
		sum += mc.CitationScore
		contributing++
	}
	g.Finalize()
	if contributing > 0 {
		g.EqualWeightedGlobal = sum / float64(contributing)
	}
	return g
}

// uniqueNames trims names and drops blanks and case-insensitive repeats.
func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
