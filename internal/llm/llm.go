// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the language model backends (Gemini, ChatGPT, Claude,
// Perplexity) behind a single prompt-in, text-out interface.
package llm

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Backend names.
const (
	Gemini     = "gemini"
	ChatGPT    = "chatgpt"
	Claude     = "claude"
	Perplexity = "perplexity"
)

// Backend sends one prompt to a model and returns its free-text answer.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// backoffBase is the base delay between retries. Tests override it.
var backoffBase = time.Second

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
)

// Caller applies a per-attempt timeout and exponential backoff retries to
// Backend calls.
type Caller struct {
	// MaxRetries is the number of retries after the first attempt.
	// Negative disables retries; 0 selects the default (2).
	MaxRetries int

	// Timeout bounds each attempt (default 30s).
	Timeout time.Duration

	Logger *zap.Logger
}

// NewCaller returns a Caller configured from cfg.
func NewCaller(cfg types.AIConfig, logger *zap.Logger) Caller {
	return Caller{MaxRetries: cfg.MaxRetries, Timeout: cfg.Timeout, Logger: logger}
}

// Generate calls b with prompt, retrying failed attempts with a delay of
// 2^(attempt-1) * backoffBase. The final failure is returned as a
// ModelCallError naming the backend.
func (c Caller) Generate(ctx context.Context, b Backend, prompt string) (string, error) {
	maxRetries := c.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = defaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	log := logging.OrNop(c.Logger)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			log.Debug("retrying model call",
				zap.String("backend", b.Name()),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", types.ModelCallError(b.Name(), ctx.Err())
			case <-time.After(backoff):
			}
		}

		text, err := c.attempt(ctx, b, prompt, timeout)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", types.ModelCallError(b.Name(), lastErr)
}

func (c Caller) attempt(ctx context.Context, b Backend, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.Generate(ctx, prompt)
}
