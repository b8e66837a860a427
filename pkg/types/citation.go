// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CitationQueryResult is the score of one competitor in one model's answer
// to one question.
type CitationQueryResult struct {
	Detected     bool `json:"detected" yaml:"detected"`
	MentionCount int  `json:"mention_count" yaml:"mention_count"`

	// SentimentScore is the lexical sentiment of the answer, in [-1, 1].
	SentimentScore float64 `json:"sentiment_score" yaml:"sentiment_score"`

	// ProminenceFactor is in (0, 1]; earlier and heading mentions score higher.
	ProminenceFactor float64 `json:"prominence_factor" yaml:"prominence_factor"`
}

// ModelCitation aggregates one competitor's citations for one model, or
// across models when embedded in GlobalCitation.
type ModelCitation struct {
	CitationCount    int     `json:"citation_count" yaml:"citation_count"`
	TotalQueries     int     `json:"total_queries" yaml:"total_queries"`
	CitationRate     float64 `json:"citation_rate" yaml:"citation_rate"`
	RawCitationScore float64 `json:"raw_citation_score" yaml:"raw_citation_score"`
	CitationScore    float64 `json:"citation_score" yaml:"citation_score"`
}

// Finalize recomputes CitationRate and CitationScore from the counters.
// Both are zero when no queries were attempted.
func (m *ModelCitation) Finalize() {
	if m.TotalQueries <= 0 {
		m.CitationRate = 0
		m.CitationScore = 0
		return
	}
	total := float64(m.TotalQueries)
	m.CitationRate = clampUnit(float64(m.CitationCount) / total)
	m.CitationScore = clampUnit(m.RawCitationScore / total)
}

// GlobalCitation is the volume-weighted aggregate over all contributing
// models plus the equal-weighted mean of their per-model scores.
type GlobalCitation struct {
	ModelCitation `yaml:",inline"`

	// EqualWeightedGlobal is the unweighted mean of CitationScore over models
	// with at least one attempted query; zero when there are none.
	EqualWeightedGlobal float64 `json:"equal_weighted_global" yaml:"equal_weighted_global"`
}

// CitationMetric holds per-model and global citation figures for one competitor.
type CitationMetric struct {
	PerModel map[string]ModelCitation `json:"per_model" yaml:"per_model"`
	Global   GlobalCitation           `json:"global" yaml:"global"`
}

// CitationRun is the full output of one citation scoring invocation.
type CitationRun struct {
	ID          string                    `json:"id" yaml:"id"`
	Industry    string                    `json:"industry" yaml:"industry"`
	FastMode    bool                      `json:"fast_mode" yaml:"fast_mode"`
	Models      []string                  `json:"models" yaml:"models"`
	Queries     []string                  `json:"queries" yaml:"queries"`
	Competitors []string                  `json:"competitors" yaml:"competitors"`
	Metrics     map[string]CitationMetric `json:"metrics" yaml:"metrics"`

	// FailedCalls counts model calls that errored and were scored as zero.
	FailedCalls int `json:"failed_calls" yaml:"failed_calls"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

func clampUnit(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
