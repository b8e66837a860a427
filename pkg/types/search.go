// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the visibility-engine pipelines:
// competitor discovery (SearchResult, CandidateCompetitor, ValidatedCompetitor,
// DiscoveryRun) and citation scoring (CitationQueryResult, CitationMetric,
// CitationRun).
package types

import "time"

// SearchResult is one hit returned by the web search API for a single query.
type SearchResult struct {
	// Name is the result title as returned by the search engine.
	Name string `json:"name" yaml:"name"`

	// Link is the result URL.
	Link string `json:"link" yaml:"link"`

	// Snippet is the short text excerpt shown under the result.
	Snippet string `json:"snippet" yaml:"snippet"`
}

// CandidateCompetitor is a company name proposed by one or more detection methods.
type CandidateCompetitor struct {
	// Name is the cleaned name, with the casing of its first occurrence.
	Name string `json:"name" yaml:"name"`

	// Frequency counts the distinct detection methods that proposed the name.
	Frequency int `json:"frequency" yaml:"frequency"`

	// Methods lists the proposing methods in the order they were merged.
	Methods []string `json:"methods,omitempty" yaml:"methods,omitempty"`
}

// ValidatedCompetitor is a candidate that passed (or bypassed) relevance scoring.
type ValidatedCompetitor struct {
	Name      string `json:"name" yaml:"name"`
	Frequency int    `json:"frequency" yaml:"frequency"`

	// RelevanceScore is the 0-100 score returned by the validator model.
	// It is meaningful only when Scored is true.
	RelevanceScore int `json:"relevance_score" yaml:"relevance_score"`

	// Scored is false when the candidate was kept without a score: no
	// validator backend was configured, or the scoring call failed.
	Scored bool `json:"scored" yaml:"scored"`
}

// MethodOutcome records what one detection method produced during a run.
type MethodOutcome struct {
	Method  string   `json:"method" yaml:"method"`
	Queries []string `json:"queries" yaml:"queries"`

	// Results is the number of search results fed to the extractor.
	Results int `json:"results" yaml:"results"`

	// Names is the cleaned extractor output for this method.
	Names []string `json:"names" yaml:"names"`

	// Error is set when the method degraded to an empty contribution.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// DiscoveryRun is the full output of one competitor discovery invocation.
type DiscoveryRun struct {
	ID         string                `json:"id" yaml:"id"`
	Company    string                `json:"company" yaml:"company"`
	Industry   string                `json:"industry,omitempty" yaml:"industry,omitempty"`
	Variant    Variant               `json:"variant" yaml:"variant"`
	Methods    []MethodOutcome       `json:"methods" yaml:"methods"`
	Candidates []CandidateCompetitor `json:"candidates" yaml:"candidates"`

	// Competitors is the ranked, deduplicated, validated list.
	Competitors []ValidatedCompetitor `json:"competitors" yaml:"competitors"`

	// Domain holds SEO metrics for the target domain when one was supplied.
	Domain *DomainMetrics `json:"domain,omitempty" yaml:"domain,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Names returns the validated competitor names in rank order.
func (r *DiscoveryRun) Names() []string {
	names := make([]string, len(r.Competitors))
	for i, c := range r.Competitors {
		names[i] = c.Name
	}
	return names
}

// DomainMetrics holds SEO and traffic figures for a domain as reported by
// an external metrics provider.
type DomainMetrics struct {
	Domain          string  `json:"domain" yaml:"domain"`
	DomainAuthority int     `json:"domain_authority" yaml:"domain_authority"`
	MonthlyVisits   int64   `json:"monthly_visits" yaml:"monthly_visits"`
	Rating          float64 `json:"rating" yaml:"rating"`

	// Source names the provider that produced the figures.
	Source string `json:"source" yaml:"source"`
}
