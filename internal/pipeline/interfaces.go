package pipeline

import (
	"context"

	"brevity/internal/core"
)

// ContentFetcher retrieves content for a URL using the adapter for its
// source kind. *fetch.Router implements it.
type ContentFetcher interface {
	Fetch(ctx context.Context, kind core.SourceKind, url string) (*core.ExtractedContent, error)
}

// ContentNormalizer cleans and bounds extracted content.
type ContentNormalizer interface {
	Normalize(in core.ExtractedContent) (core.NormalizedContent, error)
}

// AnalysisRequester obtains the raw model reply for normalized content.
type AnalysisRequester interface {
	// RequestAnalysis makes exactly one completion call.
	RequestAnalysis(ctx context.Context, content core.NormalizedContent, contentType string) (string, error)
}
