// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"net/http"
	"sort"

	"github.com/pdiddy/visibility-engine/internal/secrets"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// order is the canonical backend order used for listing and scoring.
var order = []string{Gemini, ChatGPT, Claude, Perplexity}

// keyFor maps each backend to the secret that enables it.
var keyFor = map[string]string{
	Gemini:     secrets.GeminiAPIKey,
	ChatGPT:    secrets.OpenAIAPIKey,
	Claude:     secrets.AnthropicAPIKey,
	Perplexity: secrets.PerplexityAPIKey,
}

// Registry holds the backends that are usable for one invocation.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// FromSecrets builds a registry containing every backend whose secret is
// present and not a placeholder. Backends without a usable secret are
// skipped rather than treated as errors.
func FromSecrets(s map[string]string, cfg types.AIConfig, client *http.Client) *Registry {
	r := NewRegistry()
	if key, ok := secrets.Get(s, keyFor[Gemini]); ok {
		r.Register(&GeminiBackend{APIKey: key, Model: cfg.Models.Gemini, Client: client})
	}
	if key, ok := secrets.Get(s, keyFor[ChatGPT]); ok {
		r.Register(NewChatGPT(key, cfg.Models.ChatGPT))
	}
	if key, ok := secrets.Get(s, keyFor[Claude]); ok {
		r.Register(NewClaude(key, cfg.Models.Claude))
	}
	if key, ok := secrets.Get(s, keyFor[Perplexity]); ok {
		r.Register(NewPerplexity(key, cfg.Models.Perplexity))
	}
	return r
}

// Register adds or replaces b under b.Name().
func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
}

// Get returns the named backend, or a configuration error naming the
// missing secret.
func (r *Registry) Get(name string) (Backend, error) {
	if b, ok := r.backends[name]; ok {
		return b, nil
	}
	if key, ok := keyFor[name]; ok {
		return nil, types.ConfigurationError("%s backend requires %s (or %s)", name, key, secrets.EnvName(key))
	}
	return nil, types.ConfigurationError("unknown backend %q", name)
}

// Available returns the registered backends, known ones in canonical order
// followed by any others in name order.
func (r *Registry) Available() []Backend {
	out := make([]Backend, 0, len(r.backends))
	seen := make(map[string]bool, len(r.backends))
	for _, name := range order {
		if b, ok := r.backends[name]; ok {
			out = append(out, b)
			seen[name] = true
		}
	}
	var extra []string
	for name := range r.backends {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, r.backends[name])
	}
	return out
}

// Select returns the available backends restricted to names. An empty
// names list selects all of them. Unknown or unavailable names are skipped.
func (r *Registry) Select(names []string) []Backend {
	if len(names) == 0 {
		return r.Available()
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Backend
	for _, b := range r.Available() {
		if want[b.Name()] {
			out = append(out, b)
		}
	}
	return out
}

// Names returns the names of Available backends.
func (r *Registry) Names() []string {
	avail := r.Available()
	names := make([]string, len(avail))
	for i, b := range avail {
		names[i] = b.Name()
	}
	return names
}
