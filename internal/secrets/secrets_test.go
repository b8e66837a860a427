// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GoogleSearchAPIKey, "  AIzaSyD-abc123  \n")
				writeFile(t, dir, GoogleSearchEngineID, "017576662512468239146:omuauf_lfve")
				writeFile(t, dir, GeminiAPIKey, "gm-real\n")
				return dir
			},
			want: map[string]string{
				GoogleSearchAPIKey:   "AIzaSyD-abc123",
				GoogleSearchEngineID: "017576662512468239146:omuauf_lfve",
				GeminiAPIKey:         "gm-real",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, AnthropicAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				AnthropicAPIKey: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, OpenAIAPIKey, "sk-proj-real")
				return dir
			},
			want: map[string]string{
				OpenAIAPIKey: "sk-proj-real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, PerplexityAPIKey, "pplx-123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				PerplexityAPIKey: "pplx-123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "GEMINI_API_KEY=from-dotenv\nOPENAI_API_KEY=also-dotenv\n")

	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")
	t.Setenv("OPENAI_API_KEY", "already-set")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), filepath.Join(dir, ".env")))
	assert.Equal(t, "from-dotenv", os.Getenv("GEMINI_API_KEY"))
	assert.Equal(t, "already-set", os.Getenv("OPENAI_API_KEY"), "existing variables win")
}

func TestWithEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-value")
	t.Setenv("GEMINI_API_KEY", "")

	in := map[string]string{
		AnthropicAPIKey: "file-value",
		GeminiAPIKey:    "file-gemini",
	}
	got := WithEnv(in)

	assert.Equal(t, "env-value", got[AnthropicAPIKey])
	assert.Equal(t, "file-gemini", got[GeminiAPIKey], "empty env var does not override")
	assert.Equal(t, "file-value", in[AnthropicAPIKey], "input is not modified")
	assert.Equal(t, "ANTHROPIC_API_KEY", EnvName(AnthropicAPIKey))
}

func TestUsable(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"   ", false},
		{"your-api-key-here", false},
		{"YOUR_GEMINI_KEY", false},
		{"placeholder", false},
		{"changeme", false},
		{"sk-...", false},
		{"<openai key>", false},
		{"sk-proj-9fJ2kLq", true},
		{"AIzaSyD-abc123", true},
		{"xxxxxxxx", false},
		{"sk-XXXXXXXXXXXX", false},
		{"AIzaSyB3kXxXq9Lm2Zt8Wv0Yp4Rc7Nd1Fh6Gj5", true},
		{"sk-proj-AbCdXXx12345678901234567890", true},
		{"sk-ant-REDACTED", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Usable(tt.value))
		})
	}
}

func TestGet(t *testing.T) {
	s := map[string]string{
		GeminiAPIKey: "real-key",
		OpenAIAPIKey: "your-openai-key",
	}

	v, ok := Get(s, GeminiAPIKey)
	assert.True(t, ok)
	assert.Equal(t, "real-key", v)

	_, ok = Get(s, OpenAIAPIKey)
	assert.False(t, ok)

	_, ok = Get(s, AnthropicAPIKey)
	assert.False(t, ok)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
