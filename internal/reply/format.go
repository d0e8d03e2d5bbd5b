package reply

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	bulletPrefix   = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])\s+`)
	headingPrefix  = regexp.MustCompile(`^(?:#+\s*)+`)
	boldHeading    = regexp.MustCompile(`^\*\*([^*\n]+?):?\*\*:?$`)
	colonHeading   = regexp.MustCompile(`^(\p{Lu}[^:\n]*):$`)
	bracketHeading = regexp.MustCompile(`^\[(\p{Lu}[^\]\n]*)\]$`)
)

// FormatAnalysis normalizes analysis text: the canonical header first, list
// markers rewritten to "•", heading markup removed and a blank line before
// every theme heading. Applying it to its own output changes nothing.
func FormatAnalysis(text string) string {
	var out []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := normalizeHeading(strings.TrimSpace(raw))
		if line == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}

		if m := bulletPrefix.FindString(line); m != "" {
			out = append(out, Bullet+" "+strings.TrimSpace(line[len(m):]))
			continue
		}
		if IsThemeLine(line) && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	switch {
	case len(out) == 0:
		return AnalysisHeader
	case !strings.EqualFold(out[0], AnalysisHeader):
		out = append([]string{AnalysisHeader, ""}, out...)
	default:
		out[0] = AnalysisHeader
		if len(out) > 1 && out[1] != "" {
			out = append([]string{AnalysisHeader, ""}, out[1:]...)
		}
	}
	return strings.Join(out, "\n")
}

func normalizeHeading(line string) string {
	for {
		next := stripHeadingMarkup(line)
		if next == line {
			return line
		}
		line = next
	}
}

func stripHeadingMarkup(line string) string {
	line = headingPrefix.ReplaceAllString(line, "")
	if m := boldHeading.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(m[1])
	}
	if m := bracketHeading.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(m[1])
	}
	if m := colonHeading.FindStringSubmatch(line); m != nil {
		line = strings.TrimSpace(m[1])
	}
	if strings.EqualFold(strings.TrimSuffix(line, ":"), AnalysisHeader) {
		line = AnalysisHeader
	}
	return line
}

// IsThemeLine reports whether a formatted analysis line starts a theme: it
// begins with an upper-case letter, is not a bullet and is not the header.
func IsThemeLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, Bullet) || strings.EqualFold(line, AnalysisHeader) {
		return false
	}
	r := []rune(line)[0]
	return unicode.IsUpper(r)
}

// Format rebuilds a whole reply: the formatted analysis followed by each
// recovered section behind a "---" separator and its heading.
func Format(text string) string {
	s := Parse(text).Clean()

	var b strings.Builder
	b.WriteString(FormatAnalysis(s.Analysis))
	if s.FoundEmail {
		writeSection(&b, EmailMarker, s.EmailDraft)
	}
	if s.FoundSocial {
		writeSection(&b, SocialMarker, s.SocialShare)
	}
	return b.String()
}

func writeSection(b *strings.Builder, heading, body string) {
	b.WriteString("\n\n")
	b.WriteString(Separator)
	b.WriteString("\n\n")
	b.WriteString(heading)
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
}
