// Package summarize requests the thematic analysis from the completion
// service.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"brevity/internal/core"
	"brevity/internal/llm"
	"brevity/internal/logger"
)

// Options configures a Requester.
type Options struct {
	Temperature float32
	MaxTokens   int32
	Log         *slog.Logger
}

// DefaultOptions returns the settings used for every analysis request.
func DefaultOptions() Options {
	return Options{
		Temperature: llm.DefaultTemperature,
		MaxTokens:   llm.DefaultMaxTokens,
	}
}

// Requester issues exactly one completion per analysis. It never retries.
type Requester struct {
	completer llm.Completer
	options   Options
	log       *slog.Logger
}

// NewRequester creates a Requester. Zero option values fall back to
// DefaultOptions.
func NewRequester(completer llm.Completer, options Options) *Requester {
	defaults := DefaultOptions()
	if options.Temperature <= 0 {
		options.Temperature = defaults.Temperature
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = defaults.MaxTokens
	}
	log := options.Log
	if log == nil {
		log = logger.Get()
	}
	return &Requester{completer: completer, options: options, log: log}
}

// RequestAnalysis sends the content to the completion service and returns
// the raw reply text. Any failure, including an empty reply, is returned as
// *core.AnalysisServiceError.
func (r *Requester) RequestAnalysis(ctx context.Context, content core.NormalizedContent, contentType string) (string, error) {
	prompt, err := BuildPrompt(content, contentType)
	if err != nil {
		return "", err
	}

	start := time.Now()
	text, err := r.completer.Complete(ctx, llm.Request{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: r.options.Temperature,
		MaxTokens:   r.options.MaxTokens,
	})
	if err != nil {
		return "", &core.AnalysisServiceError{Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &core.AnalysisServiceError{Cause: fmt.Errorf("completion service returned %w", llm.ErrEmptyCompletion)}
	}

	r.log.Debug("analysis received",
		"content_type", contentType,
		"source", content.Source,
		"prompt_chars", len(prompt.User),
		"reply_chars", len(text),
		"duration", time.Since(start))
	return text, nil
}
