// Package reply splits a model reply into its analysis, email draft and
// social share sections and normalizes the analysis text for display.
package reply

import (
	"regexp"
	"strings"
)

// Section markers and the canonical analysis header.
const (
	EmailMarker    = "Email Draft"
	SocialMarker   = "Social Share"
	AnalysisHeader = "Thematic Analysis"
	Bullet         = "•"
	Separator      = "---"
)

var (
	emailPattern  = regexp.MustCompile(`(?i)email draft`)
	socialPattern = regexp.MustCompile(`(?i)social share`)
)

// Sections holds the pieces of a reply exactly as they appeared between the
// markers. Concatenating Analysis, EmailDraft and SocialShare yields the
// original reply without the marker keywords.
type Sections struct {
	Analysis    string
	EmailDraft  string
	SocialShare string
	FoundEmail  bool
	FoundSocial bool
}

// MissingMarkers reports that neither section marker was present, so the
// whole reply is analysis text.
func (s Sections) MissingMarkers() bool { return !s.FoundEmail && !s.FoundSocial }

// Missing lists the sections that were not found.
func (s Sections) Missing() []string {
	var missing []string
	if !s.FoundEmail {
		missing = append(missing, "email_draft")
	}
	if !s.FoundSocial {
		missing = append(missing, "social_share")
	}
	return missing
}

// Parse locates the "Email Draft" marker and then, inside the remainder, the
// "Social Share" marker. Without an email marker the social marker is looked
// up in the whole reply. Matching is case-insensitive.
func Parse(text string) Sections {
	var s Sections

	if loc := emailPattern.FindStringIndex(text); loc != nil {
		s.FoundEmail = true
		s.Analysis = text[:loc[0]]
		rest := text[loc[1]:]
		if sloc := socialPattern.FindStringIndex(rest); sloc != nil {
			s.FoundSocial = true
			s.EmailDraft = rest[:sloc[0]]
			s.SocialShare = rest[sloc[1]:]
		} else {
			s.EmailDraft = rest
		}
		return s
	}

	if loc := socialPattern.FindStringIndex(text); loc != nil {
		s.FoundSocial = true
		s.Analysis = text[:loc[0]]
		s.SocialShare = text[loc[1]:]
		return s
	}

	s.Analysis = text
	return s
}

// Clean returns a copy with every section trimmed of surrounding whitespace
// and stray separator lines left between sections.
func (s Sections) Clean() Sections {
	s.Analysis = cleanPiece(s.Analysis)
	s.EmailDraft = cleanPiece(s.EmailDraft)
	s.SocialShare = cleanPiece(s.SocialShare)
	return s
}

func cleanPiece(piece string) string {
	piece = strings.TrimPrefix(strings.TrimLeft(piece, " \t"), ":")
	lines := strings.Split(piece, "\n")
	for len(lines) > 0 && isDecoration(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isDecoration(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// isDecoration matches blank lines and lines made only of markdown
// punctuation, such as separators or heading marks left behind a marker.
func isDecoration(line string) bool {
	return strings.Trim(line, " \t\r#*-_=:") == ""
}
