package types

import "time"

// Strictness selects how a pipeline reacts to exhausted retries and other
// per-unit failures.
type Strictness string

const (
	// FailOpen substitutes an empty result, logs, and continues.
	FailOpen Strictness = "fail-open"

	// FailClosed surfaces the error to the caller.
	FailClosed Strictness = "fail-closed"
)

// Variant selects one of the two discovery pipeline configurations.
type Variant string

const (
	// VariantComprehensive searches sequentially with delays, fails closed on
	// search errors, and keeps candidates scoring 50 or more.
	VariantComprehensive Variant = "comprehensive"

	// VariantEnhanced fans out methods and validations concurrently, fails
	// open on search errors, and keeps candidates scoring 60 or more.
	VariantEnhanced Variant = "enhanced"
)

// Relevance thresholds per variant. Comparison is inclusive.
const (
	ComprehensiveThreshold = 50
	EnhancedThreshold      = 60
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds each outbound request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "visibility-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the web search collector.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey and EngineID authenticate against Google Programmable Search.
	// Both are required.
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	EngineID string `json:"engine_id,omitempty" yaml:"engine_id,omitempty"`

	// PageSize is the number of results requested per query (max 10).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxAttempts is the total number of attempts per query when the API
	// answers HTTP 429 (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// QueryDelay is the pause between sequential queries (default 1s).
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay"`
}

// ModelSet names the model used by each LLM backend.
type ModelSet struct {
	Gemini     string `json:"gemini" yaml:"gemini"`
	ChatGPT    string `json:"chatgpt" yaml:"chatgpt"`
	Claude     string `json:"claude" yaml:"claude"`
	Perplexity string `json:"perplexity" yaml:"perplexity"`
}

// AIConfig holds shared settings for components that call LLM backends.
type AIConfig struct {
	Models ModelSet `json:"models" yaml:"models"`

	// ExtractionBackend is the backend required for name extraction and
	// relevance scoring (default "gemini").
	ExtractionBackend string `json:"extraction_backend" yaml:"extraction_backend"`

	// MaxRetries is the number of retry attempts for failed calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single model call (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DiscoveryConfig holds settings for one competitor discovery run.
type DiscoveryConfig struct {
	Variant Variant `json:"variant" yaml:"variant"`

	// Strictness governs search failures.
	Strictness Strictness `json:"strictness" yaml:"strictness"`

	// ValidationStrictness governs validator call failures. Fail-open keeps
	// the candidate unscored; fail-closed drops it.
	ValidationStrictness Strictness `json:"validation_strictness" yaml:"validation_strictness"`

	// Threshold is the inclusive minimum relevance score.
	Threshold int `json:"threshold" yaml:"threshold"`

	// Concurrent fans out methods, queries, and validations instead of
	// running them one at a time.
	Concurrent bool `json:"concurrent" yaml:"concurrent"`

	// ValidationDelay is the pause between sequential scoring calls (default 500ms).
	ValidationDelay time.Duration `json:"validation_delay" yaml:"validation_delay"`

	// MaxUnscored caps the list returned when no validator is configured (default 10).
	MaxUnscored int `json:"max_unscored" yaml:"max_unscored"`
}

// DefaultDiscoveryConfig returns the fixed policy for a pipeline variant.
// Unknown variants get the comprehensive policy.
func DefaultDiscoveryConfig(v Variant) DiscoveryConfig {
	cfg := DiscoveryConfig{
		Variant:              VariantComprehensive,
		Strictness:           FailClosed,
		ValidationStrictness: FailOpen,
		Threshold:            ComprehensiveThreshold,
		ValidationDelay:      500 * time.Millisecond,
		MaxUnscored:          10,
	}
	if v == VariantEnhanced {
		cfg.Variant = VariantEnhanced
		cfg.Strictness = FailOpen
		cfg.Threshold = EnhancedThreshold
		cfg.Concurrent = true
	}
	return cfg
}

// CitationConfig holds settings for citation scoring.
type CitationConfig struct {
	// FastMode restricts the question battery to its first few questions.
	FastMode bool `json:"fast_mode" yaml:"fast_mode"`

	// Concurrency bounds in-flight model calls (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Keywords are domain terms whose co-occurrence confirms ambiguous
	// short-name mentions.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// StoreConfig selects the report database.
type StoreConfig struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string `json:"driver" yaml:"driver"`

	// DSN is the connection string. For sqlite3 it defaults to
	// <Dir>/index/visibility.db.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// Dir is the base directory for the sqlite database and exports
	// (default "visibility").
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all configurations for the CLI.
type PipelineConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Citation  CitationConfig  `json:"citation" yaml:"citation"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}
