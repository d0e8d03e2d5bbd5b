// Package drafts builds email and social drafts from analysis text when the
// model reply did not include them.
package drafts

import (
	"fmt"
	"strings"
	"unicode"

	"brevity/internal/reply"
)

const (
	genericEmail = "Subject: Analysis Summary\n\n" +
		"Dear [Recipient],\n\n" +
		"I've analyzed the content you requested. Please review the attached analysis for details.\n\n" +
		"Best regards,\n\n[Your Name]"

	genericSocial = "Just analyzed some important content that's highly relevant to our community. " +
		"Check out the full analysis for key insights."

	genericHashtags = "#Analysis #Insights #Research #Community #MustRead"

	maxHashtags = 5
)

var stopWords = map[string]bool{
	"with": true, "that": true, "this": true, "from": true, "have": true, "will": true,
	"been": true, "were": true, "they": true, "their": true, "about": true,
}

// Theme is a heading line from an analysis and the bullets under it.
type Theme struct {
	Name    string
	Bullets []string
}

// ExtractThemes scans analysis text: a capitalized line without a bullet
// starts a theme and bullet lines attach to the current theme.
func ExtractThemes(analysis string) []Theme {
	var themes []Theme
	for _, line := range strings.Split(reply.FormatAnalysis(analysis), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case reply.IsThemeLine(line):
			themes = append(themes, Theme{Name: line})
		case strings.HasPrefix(line, reply.Bullet) && len(themes) > 0:
			point := strings.TrimSpace(strings.TrimPrefix(line, reply.Bullet))
			if point != "" {
				last := &themes[len(themes)-1]
				last.Bullets = append(last.Bullets, point)
			}
		}
	}
	return themes
}

// GenerateEmailDraft writes an email summarizing each theme with its first
// one or two points. It never returns an empty string.
func GenerateEmailDraft(analysis, title string) string {
	title = strings.TrimSpace(title)

	var withBullets []Theme
	for _, t := range ExtractThemes(analysis) {
		if len(t.Bullets) > 0 {
			withBullets = append(withBullets, t)
		}
	}
	if len(withBullets) == 0 {
		return genericEmail
	}

	subject := "Subject: Analysis of Recent Content"
	if title != "" {
		subject = "Subject: " + title
	}

	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\nDear [Recipient],\n\n")
	fmt.Fprintf(&b, "I wanted to inform you about the recent %s I analyzed. Here are the key points:\n\n", lowerOr(title, "content"))
	for _, t := range withBullets {
		points := t.Bullets[0]
		if len(t.Bullets) > 1 {
			points += " " + t.Bullets[1]
		}
		fmt.Fprintf(&b, "%s **%s**: %s\n", reply.Bullet, t.Name, points)
	}
	b.WriteString("\nLet's discuss how we can address these challenges in our upcoming meeting.\n\n")
	b.WriteString("Best regards,\n\n[Your Name]")
	return b.String()
}

// GenerateSocialShare writes one sentence and a hashtag line built from the
// theme headings and the title. It never returns an empty string.
func GenerateSocialShare(analysis, title string) string {
	title = strings.TrimSpace(title)

	themes := ExtractThemes(analysis)
	if len(themes) == 0 {
		return genericSocial + "\n\nHashtags: " + genericHashtags
	}

	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}

	sentence := fmt.Sprintf(
		"Just analyzed this important %s that reveals critical insights for our community. "+
			"The findings highlight %s that will impact how we approach this topic going forward.",
		lowerOr(title, "content"), lowerOr(names[0], "key issues"))

	tags := Hashtags(names, title)
	line := genericHashtags
	if len(tags) > 0 {
		line = strings.Join(tags, " ")
	}
	return sentence + "\n\nHashtags: " + line
}

// Hashtags returns up to five tags from capitalized words in the theme names
// and then the title, skipping stop words and words of three or fewer
// characters, in order of first appearance.
func Hashtags(themeNames []string, title string) []string {
	words := strings.Fields(strings.Join(themeNames, " "))
	words = append(words, strings.Fields(title)...)

	seen := make(map[string]bool)
	var tags []string
	for _, w := range words {
		w = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, w)
		if len([]rune(w)) <= 3 || stopWords[strings.ToLower(w)] {
			continue
		}
		if !unicode.IsUpper([]rune(w)[0]) || seen[w] {
			continue
		}
		seen[w] = true
		tags = append(tags, "#"+w)
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

func lowerOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.ToLower(s)
}
