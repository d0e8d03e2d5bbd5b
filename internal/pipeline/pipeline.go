// Package pipeline turns a content reference into an AnalysisResult:
// classify, acquire, normalize, analyze, parse and backfill drafts.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"brevity/internal/core"
	"brevity/internal/drafts"
	"brevity/internal/logger"
	"brevity/internal/parser"
	"brevity/internal/reply"
	"brevity/internal/sources"
)

// DefaultResultTitle is used when neither the caller nor the adapter
// supplied a title.
const DefaultResultTitle = "Untitled Analysis"

// Generated section names recorded on AnalysisResult.Generated.
const (
	SectionEmailDraft  = "email_draft"
	SectionSocialShare = "social_share"
)

// Pipeline runs one summarize request at a time per call; it holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	fetcher    ContentFetcher
	normalizer ContentNormalizer
	requester  AnalysisRequester
	urls       *parser.Parser
	log        *slog.Logger
	now        func() time.Time
	newID      func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator sets the result ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// NewPipeline creates a pipeline from its collaborators.
func NewPipeline(fetcher ContentFetcher, normalizer ContentNormalizer, requester AnalysisRequester, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		normalizer: normalizer,
		requester:  requester,
		urls:       parser.NewParser(),
		log:        logger.Get(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SummarizeContent runs the whole pipeline for ref. Failures are returned as
// *core.StageError naming the stage and source kind; a reply without section
// markers is not a failure and is completed by the draft generators.
func (p *Pipeline) SummarizeContent(ctx context.Context, ref core.ContentReference) (*core.AnalysisResult, error) {
	if err := ref.Validate(); err != nil {
		return nil, p.fail(core.StageValidate, "", err)
	}

	kind := sources.Classify(ref)
	log := p.log.With("source", kind)

	extracted, err := p.acquire(ctx, kind, ref)
	if err != nil {
		return nil, p.fail(core.StageAcquire, kind, err)
	}

	normalized, err := p.normalizer.Normalize(*extracted)
	if err != nil {
		return nil, p.fail(core.StageNormalize, kind, err)
	}

	title := strings.TrimSpace(ref.Title)
	if title == "" {
		title = normalized.Title
	}
	normalized.Title = title
	label := sources.ContentTypeLabel(ref, normalized.Body)

	raw, err := p.requester.RequestAnalysis(ctx, normalized, label)
	if err != nil {
		return nil, p.fail(core.StageAnalyze, kind, err)
	}

	sections := reply.Parse(raw)
	if sections.MissingMarkers() {
		log.Warn("reply has no section markers, generating drafts", "reply_chars", len(raw))
	}
	sections = sections.Clean()
	analysis := reply.FormatAnalysis(sections.Analysis)

	var generated []string
	email := sections.EmailDraft
	if email == "" {
		email = drafts.GenerateEmailDraft(analysis, title)
		generated = append(generated, SectionEmailDraft)
	}
	social := sections.SocialShare
	if social == "" {
		social = drafts.GenerateSocialShare(analysis, title)
		generated = append(generated, SectionSocialShare)
	}

	result := &core.AnalysisResult{
		ID:           p.newID(),
		Title:        title,
		AnalysisText: analysis,
		EmailDraft:   email,
		SocialShare:  social,
		SourceKind:   kind,
		ContentType:  label,
		Truncated:    normalized.Truncated,
		Generated:    generated,
		CreatedAt:    p.now().UTC(),
	}
	if result.Title == "" {
		result.Title = DefaultResultTitle
	}
	if ref.HasURL() {
		result.URL = p.urls.CanonicalURL(ref.URL)
	}
	if ref.HasRawContent() {
		result.RawContent = ref.RawContent
	}

	log.Info("analysis complete",
		"id", result.ID,
		"strategy", extracted.Strategy,
		"content_type", label,
		"truncated", result.Truncated,
		"generated", generated)
	return result, nil
}

// acquire uses supplied text when present and fetches the URL only
// otherwise. A URL next to supplied text still decides the source kind.
func (p *Pipeline) acquire(ctx context.Context, kind core.SourceKind, ref core.ContentReference) (*core.ExtractedContent, error) {
	if ref.HasRawContent() {
		return &core.ExtractedContent{
			Title:    strings.TrimSpace(ref.Title),
			Body:     ref.RawContent,
			Source:   kind,
			Strategy: "raw-content",
		}, nil
	}
	return p.fetcher.Fetch(ctx, kind, strings.TrimSpace(ref.URL))
}

func (p *Pipeline) fail(stage string, kind core.SourceKind, err error) error {
	p.log.Error("summarize failed", "stage", stage, "source", kind, "error", err)
	return &core.StageError{Stage: stage, Source: kind, Err: err}
}
