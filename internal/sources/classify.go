// Package sources maps content references to source kinds and prompt labels.
package sources

import (
	"regexp"
	"strings"

	"brevity/internal/core"
)

// rule is one row of the classification table. Rules are evaluated in
// order and the first match wins.
type rule struct {
	kind    core.SourceKind
	label   string
	pattern *regexp.Regexp
}

var rules = []rule{
	{
		kind:    core.SourceVideoPlatform,
		label:   "video transcript",
		pattern: regexp.MustCompile(`(?i)^(?:[a-z]+://)?(?:[a-z0-9-]+\.)*(?:youtube\.com|youtu\.be|youtube-nocookie\.com)(?:[/?#:]|$)`),
	},
	{
		kind:    core.SourcePodcastCatalog,
		label:   "podcast transcript",
		pattern: regexp.MustCompile(`(?i)^(?:[a-z]+://)?(?:[a-z0-9-]+\.)*spotify\.com/(?:intl-[a-z]{2}(?:-[a-z]{2})?/)?episode/`),
	},
	{
		kind:    core.SourcePodcastFeed,
		label:   "podcast transcript",
		pattern: regexp.MustCompile(`(?i)^(?:[a-z]+://)?podcasts\.apple\.com(?:[/?#:]|$)`),
	},
}

// genericLabels refine the label of generic web pages, checked in order.
var genericLabels = []struct {
	label   string
	needles []string
}{
	{"research", []string{"arxiv.org", "researchgate.net", "ncbi.nlm.nih.gov"}},
	{"opinion", []string{"medium.com", "substack.com", "blog."}},
	{"news", []string{"news.", ".news", "cnn.com", "bbc.", "reuters.com", "nytimes.com"}},
}

const defaultLabel = "article"

// ClassifyURL returns the source kind for a URL string. It is a pure
// function of its input; anything not matching a platform rule is GenericWeb.
func ClassifyURL(rawURL string) core.SourceKind {
	u := strings.TrimSpace(rawURL)
	for _, r := range rules {
		if r.pattern.MatchString(u) {
			return r.kind
		}
	}
	return core.SourceGenericWeb
}

// Classify returns the source kind for a reference. A reference with only
// raw content is RawText; a URL always takes precedence.
func Classify(ref core.ContentReference) core.SourceKind {
	if ref.HasURL() {
		return ClassifyURL(ref.URL)
	}
	return core.SourceRawText
}

// ContentTypeLabel returns the phrase used in the prompt to describe the
// content ("video transcript", "research", "news", ...). body is only
// consulted for raw text.
func ContentTypeLabel(ref core.ContentReference, body string) string {
	kind := Classify(ref)
	switch kind {
	case core.SourceRawText:
		return rawTextLabel(body)
	case core.SourceGenericWeb:
		lower := strings.ToLower(ref.URL)
		for _, g := range genericLabels {
			for _, needle := range g.needles {
				if strings.Contains(lower, needle) {
					return g.label
				}
			}
		}
		return defaultLabel
	}
	for _, r := range rules {
		if r.kind == kind {
			return r.label
		}
	}
	return defaultLabel
}

var bracketedSpeaker = regexp.MustCompile(`\[[^\]\n]{1,40}\][^\n]*:`)

func rawTextLabel(body string) string {
	if strings.Contains(body, "Abstract") &&
		strings.Contains(body, "methodology") &&
		strings.Contains(body, "conclusion") {
		return "research"
	}
	if bracketedSpeaker.MatchString(body) {
		return "transcript"
	}
	return defaultLabel
}
