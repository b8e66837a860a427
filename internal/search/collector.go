// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Collector runs batches of queries against a Backend and applies the
// pipeline strictness to failures.
type Collector struct {
	Backend    Backend
	Strictness types.Strictness

	// Delay is the pause between queries in Sequential.
	Delay time.Duration

	Logger *zap.Logger
}

// Sequential runs queries one at a time, pausing Delay between them.
//
// Under fail-closed strictness the first failing query aborts the batch and
// its error is returned. Under fail-open a failing query contributes no
// results and the batch continues.
func (c *Collector) Sequential(ctx context.Context, queries []string) ([]types.SearchResult, error) {
	var all []types.SearchResult
	for i, q := range queries {
		if i > 0 && c.Delay > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.Delay):
			}
		}
		results, err := c.run(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// Concurrent issues every query at once and waits for all of them. Results
// are joined in query order regardless of completion order.
//
// Under fail-closed strictness the first failure cancels the remaining
// queries and is returned; under fail-open each failing query contributes
// no results.
func (c *Collector) Concurrent(ctx context.Context, queries []string) ([]types.SearchResult, error) {
	perQuery := make([][]types.SearchResult, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			results, err := c.run(gCtx, q)
			if err != nil {
				return err
			}
			perQuery[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.SearchResult
	for _, r := range perQuery {
		all = append(all, r...)
	}
	return all, nil
}

// run executes one query and converts failures according to Strictness.
// Configuration errors and caller cancellation always propagate.
func (c *Collector) run(ctx context.Context, q string) ([]types.SearchResult, error) {
	results, err := c.Backend.Search(ctx, q)
	if err == nil {
		return results, nil
	}

	if errors.Is(err, types.ErrConfiguration) || ctx.Err() != nil {
		return nil, err
	}

	log := logging.OrNop(c.Logger)
	if c.Strictness == types.FailClosed {
		log.Error("search query failed", zap.String("backend", c.Backend.Name()), zap.String("query", q), zap.Error(err))
		return nil, eris.Wrapf(err, "search %q", q)
	}

	log.Warn("search query failed, continuing without results",
		zap.String("backend", c.Backend.Name()),
		zap.String("query", q),
		zap.Error(err),
	)
	return nil, nil
}
