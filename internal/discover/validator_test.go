package discover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// --- scripted model backend ---

type scriptedBackend struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (s *scriptedBackend) Name() string { return "scripted" }

func (s *scriptedBackend) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.respond(prompt)
}

func (s *scriptedBackend) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// scoreAnswers answers scoring prompts from a candidate → reply table.
// Candidates missing from the table fail the call.
func scoreAnswers(replies map[string]string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		for name, reply := range replies {
			if strings.Contains(prompt, fmt.Sprintf("how likely is %q", name)) {
				return reply, nil
			}
		}
		return "", errors.New("upstream unavailable")
	}
}

var noRetry = llm.Caller{MaxRetries: -1}

func candidates(names ...string) []types.CandidateCompetitor {
	out := make([]types.CandidateCompetitor, len(names))
	for i, n := range names {
		out[i] = types.CandidateCompetitor{Name: n, Frequency: 1}
	}
	return out
}

func validatedNames(vs []types.ValidatedCompetitor) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return out
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		found bool
	}{
		{"85", 85, true},
		{"Score: 50/100", 50, true},
		{"  0\n", 0, true},
		{"I would rate this 72 out of 100.", 72, true},
		{"250", 100, true},
		{"99999999999999999999999", 100, true},
		{"-5", 5, true},
		{"not a competitor", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseScore(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, ok)
		})
	}
}

func TestValidateInclusiveThreshold(t *testing.T) {
	b := &scriptedBackend{respond: scoreAnswers(map[string]string{
		"Above": "90",
		"Exact": "50",
		"Below": "49",
		"Vague": "definitely a competitor",
	})}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: types.ComprehensiveThreshold, Strictness: types.FailOpen}

	got, err := v.Validate(context.Background(), "Example Co", "SEO", candidates("Below", "Exact", "Vague", "Above"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Exact", "Above"}, validatedNames(got), "input order kept, score >= 50")
	assert.Equal(t, 50, got[0].RelevanceScore)
	assert.True(t, got[0].Scored)
	assert.Equal(t, 4, b.calls())
}

func TestValidateEnhancedThreshold(t *testing.T) {
	b := &scriptedBackend{respond: scoreAnswers(map[string]string{"Fifty": "50", "Sixty": "60"})}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: types.EnhancedThreshold}

	got, err := v.Validate(context.Background(), "Example Co", "", candidates("Fifty", "Sixty"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sixty"}, validatedNames(got))
}

func TestValidatePromptContents(t *testing.T) {
	b := &scriptedBackend{respond: func(string) (string, error) { return "80", nil }}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 50}

	_, err := v.Validate(context.Background(), "Example Co", "SEO", candidates("Ahrefs"))
	require.NoError(t, err)
	require.Len(t, b.prompts, 1)
	assert.Contains(t, b.prompts[0], `how likely is "Ahrefs" to be a direct competitor of "Example Co" in the SEO industry`)
	assert.Contains(t, b.prompts[0], "single integer")
}

func TestValidateDegradedWithoutBackend(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("Company %02d", i)
	}
	v := &Validator{Threshold: 50}

	got, err := v.Validate(context.Background(), "Example Co", "SEO", candidates(names...))
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, names[:10], validatedNames(got))
	for _, c := range got {
		assert.False(t, c.Scored)
		assert.Equal(t, 1, c.Frequency)
	}

	v.MaxUnscored = 3
	got, err = v.Validate(context.Background(), "Example Co", "SEO", candidates(names...))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestValidateCallFailureFailOpen(t *testing.T) {
	b := &scriptedBackend{respond: scoreAnswers(map[string]string{"Low": "10"})}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 50, Strictness: types.FailOpen}

	got, err := v.Validate(context.Background(), "Example Co", "SEO", candidates("Unreachable", "Low"))
	require.NoError(t, err)
	require.Equal(t, []string{"Unreachable"}, validatedNames(got))
	assert.False(t, got[0].Scored, "kept without a score")
	assert.Equal(t, 0, got[0].RelevanceScore)
}

func TestValidateCallFailureFailClosed(t *testing.T) {
	b := &scriptedBackend{respond: scoreAnswers(map[string]string{"High": "95"})}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 50, Strictness: types.FailClosed}

	got, err := v.Validate(context.Background(), "Example Co", "SEO", candidates("Unreachable", "High"))
	require.NoError(t, err)
	assert.Equal(t, []string{"High"}, validatedNames(got))
}

func TestValidateConcurrentKeepsInputOrder(t *testing.T) {
	replies := map[string]string{}
	var names []string
	for i := 0; i < 8; i++ {
		n := fmt.Sprintf("C%d", i)
		names = append(names, n)
		replies[n] = "75"
	}
	b := &scriptedBackend{respond: scoreAnswers(replies)}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 60, Concurrent: true, Delay: time.Hour}

	got, err := v.Validate(context.Background(), "Example Co", "SEO", candidates(names...))
	require.NoError(t, err)
	assert.Equal(t, names, validatedNames(got))
	assert.Equal(t, 8, b.calls())
}

func TestValidateSequentialDelay(t *testing.T) {
	b := &scriptedBackend{respond: func(string) (string, error) { return "70", nil }}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 50, Delay: 5 * time.Millisecond}

	start := time.Now()
	got, err := v.Validate(context.Background(), "Example Co", "", candidates("A", "B", "C"))
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestValidateCancelled(t *testing.T) {
	b := &scriptedBackend{respond: func(string) (string, error) { return "70", nil }}
	v := &Validator{Backend: b, Caller: noRetry, Threshold: 50, Delay: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := v.Validate(ctx, "Example Co", "", candidates("A", "B"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewValidatorFromConfig(t *testing.T) {
	cfg := types.DefaultDiscoveryConfig(types.VariantEnhanced)
	v := NewValidator(nil, noRetry, cfg, nil)
	assert.Equal(t, 60, v.Threshold)
	assert.True(t, v.Concurrent)
	assert.Equal(t, types.FailOpen, v.Strictness)
	assert.Equal(t, 10, v.MaxUnscored)
}
