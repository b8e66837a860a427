package discover

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/visibility-engine/internal/extract"
	"github.com/pdiddy/visibility-engine/internal/query"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

const (
	testCompany  = "Example Co"
	testIndustry = "SEO"
)

// --- fake search backend ---

// fakeSearch returns one result per query whose snippet names the method
// the query belongs to, so the scripted extractor can answer per method.
type fakeSearch struct {
	mu      sync.Mutex
	methods map[string]string // query → method
	fail    map[string]error  // method → forced error
	queries []string
}

func newFakeSearch(v types.Variant) *fakeSearch {
	f := &fakeSearch{methods: map[string]string{}, fail: map[string]error{}}
	for _, m := range query.Methods(v) {
		for _, q := range query.Generate(m, testCompany, testIndustry) {
			f.methods[q] = string(m)
		}
	}
	return f
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, q string) ([]types.SearchResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	m := f.methods[q]
	if err := f.fail[m]; err != nil {
		return nil, err
	}
	return []types.SearchResult{{
		Name:    q,
		Link:    "https://results.example/" + url.PathEscape(q),
		Snippet: "method=" + m,
	}}, nil
}

// modelAnswers answers extraction prompts from a method → JSON table and
// scoring prompts from a candidate → score table.
func modelAnswers(byMethod map[string]string, scores map[string]string) func(string) (string, error) {
	score := scoreAnswers(scores)
	return func(prompt string) (string, error) {
		if strings.Contains(prompt, "how likely is") {
			return score(prompt)
		}
		for m, answer := range byMethod {
			if strings.Contains(prompt, "method="+m+"\n") {
				if answer == "" {
					return "", errors.New("model unavailable")
				}
				return answer, nil
			}
		}
		return "[]", nil
	}
}

func newPipeline(t *testing.T, v types.Variant, s *fakeSearch, b *scriptedBackend) *Pipeline {
	t.Helper()
	ex, err := extract.New(b, noRetry, nil)
	require.NoError(t, err)
	cfg := types.DefaultDiscoveryConfig(v)
	cfg.ValidationDelay = 0
	return &Pipeline{Search: s, Extractor: ex, Config: cfg}
}

func TestDiscoverCountsEachMethodOnce(t *testing.T) {
	s := newFakeSearch(types.VariantComprehensive)
	b := &scriptedBackend{respond: modelAnswers(map[string]string{
		"industry-news":   `["Ahrefs", "Semrush", "Semrush"]`,
		"public-database": `["Moz"]`,
	}, nil)}
	p := newPipeline(t, types.VariantComprehensive, s, b)

	run, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.NoError(t, err)

	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.VariantComprehensive, run.Variant)
	assert.Len(t, run.Methods, 5)
	assert.Len(t, s.queries, 26, "5+5+6+5+5 templates")

	assert.Equal(t, []string{"Ahrefs", "Semrush", "Moz"}, candidateNames(run.Candidates))
	for _, c := range run.Candidates {
		assert.Equal(t, 1, c.Frequency, c.Name)
	}

	// No scorer configured: degraded mode keeps candidates unscored.
	assert.Equal(t, []string{"Ahrefs", "Semrush", "Moz"}, run.Names())
	for _, c := range run.Competitors {
		assert.False(t, c.Scored)
	}
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestDiscoverRanksAndValidates(t *testing.T) {
	s := newFakeSearch(types.VariantComprehensive)
	b := &scriptedBackend{respond: modelAnswers(
		map[string]string{
			"industry-news":     `["Ahrefs", "Semrush"]`,
			"direct-competitor": "```json\n[\"semrush\", \"Moz\"]\n```",
			"market-analysis":   `Here you go: ["Moz", "Wikipedia", "Example Co"]`,
		},
		map[string]string{"Semrush": "90", "Moz": "50", "Ahrefs": "20"},
	)}
	p := newPipeline(t, types.VariantComprehensive, s, b)
	p.Validator = NewValidator(b, noRetry, p.Config, nil)

	run, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.NoError(t, err)

	assert.Equal(t, []string{"Semrush", "Moz", "Ahrefs"}, candidateNames(run.Candidates))
	assert.Equal(t, 2, run.Candidates[0].Frequency)
	assert.Equal(t, []string{"industry-news", "direct-competitor"}, run.Candidates[0].Methods)

	require.Len(t, run.Competitors, 2)
	assert.Equal(t, types.ValidatedCompetitor{Name: "Semrush", Frequency: 2, RelevanceScore: 90, Scored: true}, run.Competitors[0])
	assert.Equal(t, types.ValidatedCompetitor{Name: "Moz", Frequency: 2, RelevanceScore: 50, Scored: true}, run.Competitors[1])
}

func TestDiscoverFailClosedSearchPropagates(t *testing.T) {
	s := newFakeSearch(types.VariantComprehensive)
	s.fail["public-database"] = eris.Wrap(types.ErrRateLimited, "google search")
	b := &scriptedBackend{respond: modelAnswers(nil, nil)}
	p := newPipeline(t, types.VariantComprehensive, s, b)

	_, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrRateLimited))
}

func TestDiscoverEnhancedFailOpen(t *testing.T) {
	s := newFakeSearch(types.VariantEnhanced)
	s.fail["direct-competitor"] = eris.Wrap(types.ErrRateLimited, "google search")
	b := &scriptedBackend{respond: modelAnswers(map[string]string{
		"direct-competitor": `["Never Seen"]`,
		"alternatives":      `["Ahrefs", "Moz"]`,
		"review-site":       `["Moz", "SE Ranking"]`,
	}, nil)}
	p := newPipeline(t, types.VariantEnhanced, s, b)

	run, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.NoError(t, err)
	assert.Len(t, run.Methods, 7)
	assert.Equal(t, 0, run.Methods[2].Results, "failed searches contribute no results")
	assert.Equal(t, []string{"Moz", "Ahrefs", "SE Ranking"}, candidateNames(run.Candidates))
}

func TestDiscoverConcurrentTieBreakIsDeterministic(t *testing.T) {
	answers := map[string]string{
		"industry-news":     `["Alpha"]`,
		"public-database":   `["Bravo"]`,
		"direct-competitor": `["Charlie"]`,
		"market-analysis":   `["Delta"]`,
		"wikipedia":         `["Echo"]`,
		"alternatives":      `["Foxtrot"]`,
		"review-site":       `["Golf"]`,
	}
	want := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"}

	for i := 0; i < 5; i++ {
		b := &scriptedBackend{respond: modelAnswers(answers, nil)}
		p := newPipeline(t, types.VariantEnhanced, newFakeSearch(types.VariantEnhanced), b)
		run, err := p.Discover(context.Background(), testCompany, testIndustry)
		require.NoError(t, err)
		assert.Equal(t, want, candidateNames(run.Candidates))
	}
}

func TestDiscoverExtractionFailureDegrades(t *testing.T) {
	s := newFakeSearch(types.VariantComprehensive)
	b := &scriptedBackend{respond: modelAnswers(map[string]string{
		"industry-news": `["Ahrefs"]`,
		"wikipedia":     "", // call fails
	}, nil)}
	p := newPipeline(t, types.VariantComprehensive, s, b)

	run, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ahrefs"}, run.Names())

	wiki := run.Methods[4]
	assert.Equal(t, "wikipedia", wiki.Method)
	assert.Contains(t, wiki.Error, "model call error")
	assert.Empty(t, wiki.Names)
}

func TestDiscoverConfigurationErrorAlwaysPropagates(t *testing.T) {
	s := newFakeSearch(types.VariantEnhanced)
	s.fail["wikipedia"] = types.ConfigurationError("google search: api key not set")
	b := &scriptedBackend{respond: modelAnswers(nil, nil)}
	p := newPipeline(t, types.VariantEnhanced, s, b)

	_, err := p.Discover(context.Background(), testCompany, testIndustry)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestDiscoverRequiresCollaborators(t *testing.T) {
	b := &scriptedBackend{respond: modelAnswers(nil, nil)}
	ex, err := extract.New(b, noRetry, nil)
	require.NoError(t, err)

	_, err = (&Pipeline{Extractor: ex}).Discover(context.Background(), testCompany, "")
	assert.ErrorIs(t, err, types.ErrConfiguration)

	_, err = (&Pipeline{Search: newFakeSearch(types.VariantComprehensive)}).Discover(context.Background(), testCompany, "")
	assert.ErrorIs(t, err, types.ErrConfiguration)

	_, err = (&Pipeline{Search: newFakeSearch(types.VariantComprehensive), Extractor: ex}).Discover(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestDiscoverProgress(t *testing.T) {
	var buf bytes.Buffer
	s := newFakeSearch(types.VariantComprehensive)
	b := &scriptedBackend{respond: modelAnswers(map[string]string{
		"industry-news": `["Ahrefs"]`,
		"wikipedia":     "",
	}, nil)}
	p := newPipeline(t, types.VariantComprehensive, s, b)
	p.Progress = &buf

	_, err := p.Discover(context.Background(), testCompany, testIndustry)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "industry-news"))
	assert.Contains(t, lines[0], " 1 names  ok")
	assert.True(t, strings.HasSuffix(lines[4], "degraded"))
}

func TestPipelineConfigDefaults(t *testing.T) {
	p := &Pipeline{}
	cfg := p.config()
	assert.Equal(t, types.VariantComprehensive, cfg.Variant)
	assert.Equal(t, types.FailClosed, cfg.Strictness)
	assert.Equal(t, types.FailOpen, cfg.ValidationStrictness)
	assert.Equal(t, 50, cfg.Threshold)
	assert.Equal(t, 10, cfg.MaxUnscored)

	p.Config = types.DiscoveryConfig{Variant: types.VariantEnhanced, Threshold: 75}
	cfg = p.config()
	assert.Equal(t, types.FailOpen, cfg.Strictness)
	assert.Equal(t, 75, cfg.Threshold)
	assert.False(t, cfg.Concurrent, "concurrency is taken as given")
}
