// Package normalize cleans extracted text and bounds it for analysis.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"brevity/internal/core"
)

// Defaults applied when Limits fields are zero.
const (
	DefaultMaxLength = 16000
	DefaultMinLength = 50
)

// Limits bounds normalized bodies.
type Limits struct {
	MaxLength int // characters kept before the truncation marker
	MinLength int // bodies shorter than this are rejected
}

// Normalizer strips markup, collapses whitespace and truncates.
type Normalizer struct {
	limits Limits
	policy *bluemonday.Policy
}

// New creates a Normalizer.
func New(limits Limits) *Normalizer {
	if limits.MaxLength <= 0 {
		limits.MaxLength = DefaultMaxLength
	}
	if limits.MinLength <= 0 {
		limits.MinLength = DefaultMinLength
	}
	return &Normalizer{limits: limits, policy: bluemonday.StrictPolicy()}
}

var (
	markupHint      = regexp.MustCompile(`(?i)<\s*/?\s*(p|div|br|span|a|b|i|em|strong|li|ul|ol|h[1-6]|script|style|html|body|article|section)\b[^>]*>`)
	blockBoundary   = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6]|/article|/section)\s*/?>`)
	dropElements    = regexp.MustCompile(`(?is)<(script|style|noscript)\b.*?</(script|style|noscript)\s*>`)
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\r\x{00a0}]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Normalize returns cleaned, bounded content. Bodies below the minimum
// length fail with *core.EmptyContentError. Bodies above the maximum are cut
// at exactly MaxLength characters and core.TruncationMarker is appended.
func (n *Normalizer) Normalize(in core.ExtractedContent) (core.NormalizedContent, error) {
	body := Clean(in.Body, n.policy)

	length := utf8.RuneCountInString(body)
	if length < n.limits.MinLength {
		return core.NormalizedContent{}, &core.EmptyContentError{Length: length, Min: n.limits.MinLength}
	}

	out := core.NormalizedContent{
		Title:    strings.TrimSpace(in.Title),
		Body:     body,
		Source:   in.Source,
		Metadata: in.Metadata,
	}
	if length > n.limits.MaxLength {
		out.Body = truncateRunes(body, n.limits.MaxLength) + core.TruncationMarker
		out.Truncated = true
	}
	return out, nil
}

// Clean strips markup when the text looks like HTML, then collapses
// horizontal whitespace to single spaces and blank-line runs to one blank
// line.
func Clean(text string, policy *bluemonday.Policy) string {
	if markupHint.MatchString(text) {
		if policy == nil {
			policy = bluemonday.StrictPolicy()
		}
		text = dropElements.ReplaceAllString(text, "")
		text = blockBoundary.ReplaceAllString(text, "\n$0")
		text = html.UnescapeString(policy.Sanitize(text))
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
