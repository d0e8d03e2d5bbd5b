// Package observability sends product usage events to PostHog.
package observability

import (
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"brevity/internal/config"
	"brevity/internal/core"
	"brevity/internal/logger"
)

// EventSummaryCreated is captured once per stored analysis result.
const EventSummaryCreated = "summary_created"

// enqueuer is the part of posthog.Client the recorder uses.
type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Recorder captures usage events. A disabled or nil Recorder drops events.
// Capture failures are logged and never reach the caller.
type Recorder struct {
	client  enqueuer
	enabled bool
	log     *slog.Logger
}

// NewRecorder creates a Recorder from the posthog config section.
func NewRecorder(cfg config.PostHog) (*Recorder, error) {
	if !cfg.Enabled {
		return &Recorder{log: logger.Get()}, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{Endpoint: cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}
	return newRecorder(client, logger.Get()), nil
}

func newRecorder(client enqueuer, log *slog.Logger) *Recorder {
	return &Recorder{client: client, enabled: client != nil, log: log}
}

// IsEnabled reports whether events are sent.
func (r *Recorder) IsEnabled() bool { return r != nil && r.enabled }

// SummaryCreated records that userID produced an analysis result.
func (r *Recorder) SummaryCreated(userID string, result *core.AnalysisResult) {
	if !r.IsEnabled() || result == nil {
		return
	}
	if userID == "" {
		userID = "anonymous"
	}

	props := posthog.NewProperties().
		Set("summary_id", result.ID).
		Set("source_kind", string(result.SourceKind)).
		Set("content_type", result.ContentType).
		Set("truncated", result.Truncated).
		Set("generated_sections", len(result.Generated))

	err := r.client.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      EventSummaryCreated,
		Properties: props,
	})
	if err != nil {
		r.log.Warn("Failed to capture analytics event", "event", EventSummaryCreated, "error", err)
	}
}

// Close flushes queued events.
func (r *Recorder) Close() error {
	if !r.IsEnabled() {
		return nil
	}
	return r.client.Close()
}
