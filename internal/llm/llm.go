// Package llm provides the text completion capability used for analysis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brevity/internal/config"
)

const (
	// DefaultGeminiModel is used when ai.gemini.model is empty.
	DefaultGeminiModel = "gemini-flash-lite-latest"
	// DefaultOpenAIModel is used when ai.openai.model is empty.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the chat completions API root.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	DefaultTemperature = float32(0.3)
	DefaultMaxTokens   = int32(1000)
)

// ErrEmptyCompletion is returned when the service answers without text.
var ErrEmptyCompletion = errors.New("empty completion")

// Request is a single system+user completion.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
}

// Completer sends one completion request and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewCompleter builds the completer selected by ai.provider.
func NewCompleter(ctx context.Context, cfg config.AI) (Completer, error) {
	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ai.timeout %q: %w", cfg.Timeout, err)
		}
		timeout = d
	}

	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiCompleter(ctx, GeminiOptions{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: timeout,
		})
	case "openai":
		return NewOpenAICompleter(OpenAIOptions{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
