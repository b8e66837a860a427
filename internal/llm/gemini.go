// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/visibility-engine/internal/httputil"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// geminiAPIBase is the Generative Language API models endpoint. Package-level
// var for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend calls the Gemini generateContent REST endpoint.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// Name returns the backend identifier.
func (g *GeminiBackend) Name() string { return Gemini }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// Generate sends prompt as a single user turn and joins the text parts of
// the first candidate.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.Model
	if model == "" {
		model = defaultGeminiModel
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", geminiAPIBase, url.PathEscape(model), url.QueryEscape(g.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, g.Client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if httputil.IsRateLimited(resp) {
		return "", eris.Wrap(types.ErrRateLimited, "gemini")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading Gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, gjson.GetBytes(data, "error.message").String())
	}

	var b strings.Builder
	for _, part := range gjson.GetBytes(data, "candidates.0.content.parts").Array() {
		b.WriteString(part.Get("text").String())
	}
	if b.Len() == 0 {
		reason := gjson.GetBytes(data, "promptFeedback.blockReason").String()
		if reason == "" {
			reason = gjson.GetBytes(data, "candidates.0.finishReason").String()
		}
		return "", fmt.Errorf("Gemini API returned no text (reason %q)", reason)
	}
	return b.String(), nil
}
