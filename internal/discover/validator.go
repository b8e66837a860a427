// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

const defaultMaxUnscored = 10

var scorePattern = regexp.MustCompile(`\d+`)

// Validator scores candidates for relevance and keeps those at or above
// Threshold.
type Validator struct {
	// Backend scores candidates. When nil the validator runs degraded and
	// returns the first MaxUnscored candidates unscored.
	Backend llm.Backend
	Caller  llm.Caller

	// Threshold is the inclusive minimum score.
	Threshold int

	// Strictness governs scoring call failures: fail-open keeps the
	// candidate unscored, fail-closed drops it.
	Strictness types.Strictness

	// Delay is the pause between sequential scoring calls.
	Delay time.Duration

	// Concurrent issues every scoring call at once.
	Concurrent bool

	MaxUnscored int

	Logger *zap.Logger
}

// NewValidator returns a Validator configured from cfg.
func NewValidator(backend llm.Backend, caller llm.Caller, cfg types.DiscoveryConfig, logger *zap.Logger) *Validator {
	return &Validator{
		Backend:     backend,
		Caller:      caller,
		Threshold:   cfg.Threshold,
		Strictness:  cfg.ValidationStrictness,
		Delay:       cfg.ValidationDelay,
		Concurrent:  cfg.Concurrent,
		MaxUnscored: cfg.MaxUnscored,
		Logger:      logger,
	}
}

// verdict is the outcome of scoring one candidate.
type verdict struct {
	score  int
	scored bool
	keep   bool
}

// Validate scores each candidate and returns the accepted ones in input
// order. Only cancellation of ctx is returned as an error; failed scoring
// calls are handled per Strictness.
func (v *Validator) Validate(ctx context.Context, company, industry string, candidates []types.CandidateCompetitor) ([]types.ValidatedCompetitor, error) {
	log := logging.OrNop(v.Logger)

	if v.Backend == nil {
		limit := v.MaxUnscored
		if limit <= 0 {
			limit = defaultMaxUnscored
		}
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
		log.Info("no validator backend configured, returning candidates unscored", zap.Int("count", len(candidates)))
		out := make([]types.ValidatedCompetitor, len(candidates))
		for i, c := range candidates {
			out[i] = types.ValidatedCompetitor{Name: c.Name, Frequency: c.Frequency}
		}
		return out, nil
	}

	verdicts := make([]verdict, len(candidates))
	if v.Concurrent {
		var g errgroup.Group
		for i, c := range candidates {
			g.Go(func() error {
				verdicts[i] = v.score(ctx, company, industry, c.Name)
				return nil
			})
		}
		g.Wait()
	} else {
		for i, c := range candidates {
			if i > 0 && v.Delay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(v.Delay):
				}
			}
			verdicts[i] = v.score(ctx, company, industry, c.Name)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]types.ValidatedCompetitor, 0, len(candidates))
	for i, c := range candidates {
		vd := verdicts[i]
		if !vd.keep {
			continue
		}
		out = append(out, types.ValidatedCompetitor{
			Name:           c.Name,
			Frequency:      c.Frequency,
			RelevanceScore: vd.score,
			Scored:         vd.scored,
		})
	}
	return out, nil
}

func (v *Validator) score(ctx context.Context, company, industry, candidate string) verdict {
	log := logging.OrNop(v.Logger)

	prompt, err := renderScorePrompt(candidate, company, industry)
	if err != nil {
		log.Error("rendering score prompt", zap.Error(eris.Wrap(err, candidate)))
		return verdict{}
	}

	raw, err := v.Caller.Generate(ctx, v.Backend, prompt)
	if err != nil {
		if v.Strictness == types.FailClosed {
			log.Error("relevance scoring failed, dropping candidate", zap.String("candidate", candidate), zap.Error(err))
			return verdict{}
		}
		log.Warn("relevance scoring failed, keeping candidate unscored", zap.String("candidate", candidate), zap.Error(err))
		return verdict{keep: true}
	}

	score, ok := ParseScore(raw)
	if !ok {
		log.Debug("no score in validator response", zap.String("candidate", candidate), zap.String("raw", raw))
	}
	return verdict{score: score, scored: true, keep: score >= v.Threshold}
}

// ParseScore returns the first integer in raw clamped to [0, 100]. The
// second result is false when raw holds no digits, in which case the score
// is 0.
func ParseScore(raw string) (int, bool) {
	m := scorePattern.FindString(raw)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil || n > 100 {
		// Only out-of-range digit runs fail to parse.
		return 100, true
	}
	return n, true
}
