// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// perplexityBaseURL serves an OpenAI-compatible chat completions API.
const perplexityBaseURL = "https://api.perplexity.ai/"

const (
	defaultChatGPTModel    = "gpt-4.1-mini"
	defaultPerplexityModel = "sonar"
)

// ChatBackend calls an OpenAI-compatible Chat Completions API. It serves
// both ChatGPT and Perplexity.
type ChatBackend struct {
	name   string
	model  string
	client openai.Client
}

// NewChatGPT returns a backend for the OpenAI API.
func NewChatGPT(apiKey, model string, opts ...option.RequestOption) *ChatBackend {
	if model == "" {
		model = defaultChatGPTModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ChatBackend{name: ChatGPT, model: model, client: openai.NewClient(opts...)}
}

// NewPerplexity returns a backend for the Perplexity API.
func NewPerplexity(apiKey, model string, opts ...option.RequestOption) *ChatBackend {
	if model == "" {
		model = defaultPerplexityModel
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(perplexityBaseURL),
	}, opts...)
	return &ChatBackend{name: Perplexity, model: model, client: openai.NewClient(opts...)}
}

// Name returns the backend identifier.
func (c *ChatBackend) Name() string { return c.name }

// Generate sends prompt as a single user message and returns the first choice.
func (c *ChatBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
