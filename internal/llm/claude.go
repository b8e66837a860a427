// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeBackend calls the Anthropic Messages API.
type ClaudeBackend struct {
	model  string
	client anthropic.Client
}

// NewClaude returns a backend for the Anthropic API.
func NewClaude(apiKey, model string, opts ...option.RequestOption) *ClaudeBackend {
	if model == "" {
		model = defaultClaudeModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeBackend{model: model, client: anthropic.NewClient(opts...)}
}

// Name returns the backend identifier.
func (c *ClaudeBackend) Name() string { return Claude }

// Generate sends prompt as a single user message and joins the text blocks
// of the reply.
func (c *ClaudeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
		}},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("messages: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			parts = append(parts, v.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("messages: no text content in response")
	}
	return strings.Join(parts, ""), nil
}
