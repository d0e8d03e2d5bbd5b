package core

import (
	"strings"
	"time"
)

// SourceKind identifies which acquisition adapter handles a reference.
type SourceKind string

const (
	SourceVideoPlatform  SourceKind = "video_platform"
	SourcePodcastCatalog SourceKind = "podcast_catalog"
	SourcePodcastFeed    SourceKind = "podcast_feed"
	SourceGenericWeb     SourceKind = "generic_web"
	SourceRawText        SourceKind = "raw_text"
)

// AllSourceKinds lists every kind in classifier order.
var AllSourceKinds = []SourceKind{
	SourceVideoPlatform,
	SourcePodcastCatalog,
	SourcePodcastFeed,
	SourceGenericWeb,
	SourceRawText,
}

// String returns the wire name of the kind.
func (k SourceKind) String() string { return string(k) }

// Valid reports whether k is one of the known kinds.
func (k SourceKind) Valid() bool {
	for _, known := range AllSourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// TruncationMarker is appended to bodies cut at the configured ceiling.
const TruncationMarker = "\n\n[content truncated]"

// ContentReference is what a caller hands in: a URL, raw text, or both.
type ContentReference struct {
	URL        string `json:"url,omitempty"`     // Link to the content
	RawContent string `json:"content,omitempty"` // Text supplied directly by the caller
	Title      string `json:"title,omitempty"`   // Optional caller-supplied title
}

// HasURL reports whether the reference carries a non-blank URL.
func (r ContentReference) HasURL() bool { return strings.TrimSpace(r.URL) != "" }

// HasRawContent reports whether the reference carries non-blank raw text.
func (r ContentReference) HasRawContent() bool { return strings.TrimSpace(r.RawContent) != "" }

// Validate checks that at least one of URL or raw content is present.
func (r ContentReference) Validate() error {
	if !r.HasURL() && !r.HasRawContent() {
		return &InvalidReferenceError{Reason: "either a URL or raw content is required"}
	}
	return nil
}

// ExtractedContent is the output of a source adapter.
type ExtractedContent struct {
	Title    string            `json:"title"`              // Title discovered by the adapter (may be a placeholder)
	Body     string            `json:"body"`               // Extracted text, passed the adapter's quality gate
	Source   SourceKind        `json:"source"`             // Kind of the adapter that produced it
	Strategy string            `json:"strategy,omitempty"` // Name of the strategy that succeeded
	Metadata map[string]string `json:"metadata,omitempty"` // Adapter specific extras (show name, duration, ...)
}

// NormalizedContent is cleaned, bounded text ready for analysis.
type NormalizedContent struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Truncated bool              `json:"truncated"`
	Source    SourceKind        `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AnalysisResult is the final product of a summarize request.
type AnalysisResult struct {
	ID           string     `json:"id"`                    // Unique identifier for the result
	Title        string     `json:"title"`                 // Caller title, extracted title, or a placeholder
	URL          string     `json:"url,omitempty"`         // Source URL when one was given
	RawContent   string     `json:"raw_content,omitempty"` // Caller supplied text when no URL was given
	AnalysisText string     `json:"analysis"`              // Thematic analysis body
	EmailDraft   string     `json:"email_draft"`           // Email draft, from the model or generated
	SocialShare  string     `json:"social_share"`          // Social post, from the model or generated
	SourceKind   SourceKind `json:"source_kind"`           // Classifier output
	ContentType  string     `json:"content_type"`          // Label used to phrase the prompt
	Truncated    bool       `json:"truncated"`             // Whether the body was cut before analysis
	Generated    []string   `json:"generated,omitempty"`   // Sections produced by the fallback generators
	CreatedAt    time.Time  `json:"created_at"`
}

// UsageStats summarises a user's stored results.
type UsageStats struct {
	TotalSummaries int                `json:"total_summaries"`
	BySource       map[SourceKind]int `json:"by_source"`
	Recent         []RecentActivity   `json:"recent_activity"`
}

// RecentActivity is one row of the usage feed.
type RecentActivity struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	SourceKind SourceKind `json:"source_kind"`
	CreatedAt  time.Time  `json:"created_at"`
}
