// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover runs competitor discovery: templated searches per
// detection method, LLM name extraction, cross-method frequency ranking,
// and LLM relevance validation.
package discover

import (
	"sort"
	"strings"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Accumulator counts, per candidate name, how many detection methods
// proposed it. Each discovery run owns its own Accumulator.
type Accumulator struct {
	index   map[string]int
	entries []types.CandidateCompetitor
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add merges one method's cleaned output. Every distinct name in names
// gains exactly 1, however often it repeats within the call. Names match
// case-insensitively and keep the spelling they were first seen with.
func (a *Accumulator) Add(method string, names []string) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		i, ok := a.index[key]
		if !ok {
			i = len(a.entries)
			a.index[key] = i
			a.entries = append(a.entries, types.CandidateCompetitor{Name: name})
		}
		a.entries[i].Frequency++
		if method != "" {
			a.entries[i].Methods = append(a.entries[i].Methods, method)
		}
	}
}

// Len returns the number of distinct names recorded.
func (a *Accumulator) Len() int { return len(a.entries) }

// Frequency returns the count for name, or 0 if it was never added.
func (a *Accumulator) Frequency(name string) int {
	i, ok := a.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0
	}
	return a.entries[i].Frequency
}

// Ranked returns the candidates by descending frequency. Ties keep
// first-seen order. The returned slice is a copy.
func (a *Accumulator) Ranked() []types.CandidateCompetitor {
	out := make([]types.CandidateCompetitor, len(a.entries))
	for i, e := range a.entries {
		e.Methods = append([]string(nil), e.Methods...)
		out[i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	return out
}
