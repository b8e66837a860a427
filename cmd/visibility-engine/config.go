package main

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/visibility-engine/internal/llm"
	"github.com/pdiddy/visibility-engine/internal/secrets"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

func setDefaults() {
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.user_agent", "visibility-engine/"+version)
	viper.SetDefault("search.page_size", 10)
	viper.SetDefault("search.max_attempts", 3)
	viper.SetDefault("search.query_delay", "1s")

	viper.SetDefault("ai.extraction_backend", llm.Gemini)
	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("ai.timeout", "30s")

	viper.SetDefault("discovery.variant", string(types.VariantComprehensive))

	viper.SetDefault("citation.fast_mode", false)
	viper.SetDefault("citation.concurrency", 4)

	viper.SetDefault("store.driver", "sqlite3")
	viper.SetDefault("store.dir", "visibility")
}

// pipelineConfig assembles the configuration from viper, the loaded
// secrets, and the flags of cmd that override them.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	variant := types.Variant(viper.GetString("discovery.variant"))
	if cmd.Flags().Lookup("variant") != nil && cmd.Flags().Changed("variant") {
		v, _ := cmd.Flags().GetString("variant")
		variant = types.Variant(v)
	}
	discovery := types.DefaultDiscoveryConfig(variant)
	if viper.IsSet("discovery.threshold") {
		discovery.Threshold = viper.GetInt("discovery.threshold")
	}
	if viper.IsSet("discovery.validation_strictness") {
		discovery.ValidationStrictness = types.Strictness(viper.GetString("discovery.validation_strictness"))
	}

	fastMode := viper.GetBool("citation.fast_mode")
	if cmd.Flags().Lookup("fast") != nil && cmd.Flags().Changed("fast") {
		fastMode, _ = cmd.Flags().GetBool("fast")
	}

	apiKey, _ := secrets.Get(loadedSecrets, secrets.GoogleSearchAPIKey)
	engineID, _ := secrets.Get(loadedSecrets, secrets.GoogleSearchEngineID)

	keywords := viper.GetStringSlice("citation.keywords")
	if cmd.Flags().Lookup("keywords") != nil {
		if raw, _ := cmd.Flags().GetString("keywords"); raw != "" {
			keywords = splitList(raw)
		}
	}

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			APIKey:      apiKey,
			EngineID:    engineID,
			PageSize:    viper.GetInt("search.page_size"),
			MaxAttempts: viper.GetInt("search.max_attempts"),
			QueryDelay:  viper.GetDuration("search.query_delay"),
		},
		AI: types.AIConfig{
			Models: types.ModelSet{
				Gemini:     viper.GetString("ai.models.gemini"),
				ChatGPT:    viper.GetString("ai.models.chatgpt"),
				Claude:     viper.GetString("ai.models.claude"),
				Perplexity: viper.GetString("ai.models.perplexity"),
			},
			ExtractionBackend: viper.GetString("ai.extraction_backend"),
			MaxRetries:        viper.GetInt("ai.max_retries"),
			Timeout:           viper.GetDuration("ai.timeout"),
		},
		Discovery: discovery,
		Citation: types.CitationConfig{
			FastMode:    fastMode,
			Concurrency: viper.GetInt("citation.concurrency"),
			Keywords:    keywords,
		},
		Store: types.StoreConfig{
			Driver: viper.GetString("store.driver"),
			DSN:    viper.GetString("store.dsn"),
			Dir:    viper.GetString("store.dir"),
		},
	}
}

// backends builds the model registry from the loaded secrets.
func backends(cfg types.AIConfig) *llm.Registry {
	return llm.FromSecrets(loadedSecrets, cfg, &http.Client{Timeout: cfg.Timeout})
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
