// Package render turns an analysis result into markdown, HTML or styled
// terminal text.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"brevity/internal/core"
	"brevity/internal/reply"
)

// Supported output formats.
const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const timeLayout = "2006-01-02 15:04 UTC"

// Markdown renders the result as a markdown document. Theme headings
// become level three headings and "•" bullets become list items.
func Markdown(result *core.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", result.Title)
	fmt.Fprintf(&b, "**Source:** %s  \n", sourceLine(result))
	fmt.Fprintf(&b, "**Type:** %s  \n", result.ContentType)
	if !result.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "**Created:** %s  \n", result.CreatedAt.UTC().Format(timeLayout))
	}
	if result.Truncated {
		b.WriteString("**Note:** content was truncated before analysis  \n")
	}

	b.WriteString("\n## " + reply.AnalysisHeader + "\n\n")
	b.WriteString(analysisMarkdown(result.AnalysisText))

	b.WriteString("\n\n---\n\n## " + reply.EmailMarker + "\n\n")
	b.WriteString(strings.TrimSpace(result.EmailDraft))

	b.WriteString("\n\n---\n\n## " + reply.SocialMarker + "\n\n")
	b.WriteString(strings.TrimSpace(result.SocialShare))
	b.WriteString("\n")

	return b.String()
}

func analysisMarkdown(analysis string) string {
	var out []string
	for _, line := range strings.Split(reply.FormatAnalysis(analysis), "\n") {
		switch {
		case line == reply.AnalysisHeader:
			continue
		case strings.HasPrefix(line, reply.Bullet):
			out = append(out, "- "+strings.TrimSpace(strings.TrimPrefix(line, reply.Bullet)))
		case reply.IsThemeLine(line):
			out = append(out, "### "+line)
		default:
			out = append(out, line)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func sourceLine(result *core.AnalysisResult) string {
	if result.URL != "" {
		return fmt.Sprintf("<%s>", result.URL)
	}
	return "Pasted text"
}

// HTML renders the markdown form to an HTML fragment. Single newlines in
// drafts are kept as line breaks and links open in a new tab.
func HTML(result *core.AnalysisResult) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return string(markdown.ToHTML([]byte(Markdown(result)), p, renderer))
}

// WriteFile writes rendered content to path, creating parent directories.
func WriteFile(content, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return path, nil
}
