// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns search result snippets into candidate competitor
// names with a single LLM call per detection method.
package extract

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/visibility-engine/internal/citation"
	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/internal/search"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Extractor asks one specific backend for competitor names.
type Extractor struct {
	backend llm.Backend
	caller  llm.Caller
	logger  *zap.Logger
}

// New returns an Extractor bound to backend. A nil backend is a
// configuration error: name extraction has no degraded mode.
func New(backend llm.Backend, caller llm.Caller, logger *zap.Logger) (*Extractor, error) {
	if backend == nil {
		return nil, types.ConfigurationError("name extraction requires a model backend")
	}
	return &Extractor{backend: backend, caller: caller, logger: logging.OrNop(logger)}, nil
}

// Backend returns the backend names are extracted with.
func (e *Extractor) Backend() llm.Backend { return e.backend }

// Caller returns the retry policy applied to extraction calls.
func (e *Extractor) Caller() llm.Caller { return e.caller }

// Extract returns the cleaned candidate names found in results, excluding
// the target company. Names may repeat.
//
// An unparseable model response is not an error: the raw text is logged and
// an empty list is returned. A failed model call is returned as a
// ModelCallError so the caller can apply its own strictness.
func (e *Extractor) Extract(ctx context.Context, company, industry string, results []types.SearchResult) ([]string, error) {
	if len(results) == 0 {
		return nil, nil
	}

	prompt, err := renderNamesPrompt(company, industry, search.Evidence(results))
	if err != nil {
		return nil, eris.Wrap(err, "rendering extraction prompt")
	}

	raw, err := e.caller.Generate(ctx, e.backend, prompt)
	if err != nil {
		return nil, err
	}

	values, err := ParseNameList(raw)
	if err != nil {
		var perr *types.ExtractionParseError
		if errors.As(err, &perr) {
			e.logger.Warn("could not parse extraction response",
				zap.String("backend", e.backend.Name()),
				zap.String("company", company),
				zap.String("reason", perr.Reason),
				zap.String("raw", perr.Raw),
			)
		}
		return []string{}, nil
	}

	return withoutCompany(CleanNames(values), company), nil
}

// withoutCompany drops spellings of the target company, such as "Semrush
// Inc" or "semrush.com" for "Semrush".
func withoutCompany(names []string, company string) []string {
	target := citation.Canonical(company)
	out := names[:0]
	for _, n := range names {
		if target == "" || citation.Canonical(n) != target {
			out = append(out, n)
		}
	}
	return out
}
