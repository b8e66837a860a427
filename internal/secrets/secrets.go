// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and from the process environment. Each file in the directory represents one secret:
// the filename is the key name and the file contents (trimmed) are the value.
//
// Supported key files: google-search-api-key, google-search-engine-id, gemini-api-key,
// openai-api-key, anthropic-api-key, perplexity-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Key names, as used for files under .secrets/.
const (
	GoogleSearchAPIKey   = "google-search-api-key"
	GoogleSearchEngineID = "google-search-engine-id"
	GeminiAPIKey         = "gemini-api-key"
	OpenAIAPIKey         = "openai-api-key"
	AnthropicAPIKey      = "anthropic-api-key"
	PerplexityAPIKey     = "perplexity-api-key"
)

// envNames maps each key to the environment variable that overrides it.
var envNames = map[string]string{
	GoogleSearchAPIKey:   "GOOGLE_SEARCH_API_KEY",
	GoogleSearchEngineID: "GOOGLE_SEARCH_ENGINE_ID",
	GeminiAPIKey:         "GEMINI_API_KEY",
	OpenAIAPIKey:         "OPENAI_API_KEY",
	AnthropicAPIKey:      "ANTHROPIC_API_KEY",
	PerplexityAPIKey:     "PERPLEXITY_API_KEY",
}

// placeholderPrefixes and placeholderValues match values copied from
// example config files rather than real credentials. Matching is on the
// whole value so random key material is never mistaken for a template.
var (
	placeholderPrefixes = []string{"your-", "your_", "<"}
	placeholderValues   = map[string]bool{
		"placeholder": true, "changeme": true, "replace-me": true, "todo": true,
	}
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv loads KEY=value pairs from the given dotenv files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// WithEnv returns a copy of s in which every known key that has a non-empty
// environment variable takes the environment value.
func WithEnv(s map[string]string) map[string]string {
	out := make(map[string]string, len(s)+len(envNames))
	for k, v := range s {
		out[k] = v
	}
	for key, env := range envNames {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out[key] = v
		}
	}
	return out
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return envNames[key]
}

// Usable reports whether value looks like a real credential: non-empty and
// not a placeholder copied from a template.
func Usable(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || placeholderValues[v] || strings.HasSuffix(v, "...") {
		return false
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(v, p) {
			return false
		}
	}
	// "xxxx", "sk-xxxxxxxx": the key body is nothing but filler.
	body := v[strings.LastIndex(v, "-")+1:]
	return strings.Trim(body, "x*.") != ""
}

// Get returns the value for key when it is usable.
func Get(s map[string]string, key string) (string, bool) {
	v, ok := s[key]
	if !ok || !Usable(v) {
		return "", false
	}
	return v, true
}
