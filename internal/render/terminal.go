package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"brevity/internal/core"
	"brevity/internal/reply"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	metaStyle    = lipgloss.NewStyle().Faint(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1)
	themeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	bulletStyle  = lipgloss.NewStyle().PaddingLeft(2)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Terminal renders the result for a terminal. A positive width wraps the
// draft boxes to that many columns.
func Terminal(result *core.AnalysisResult, width int) string {
	box := boxStyle
	if width > 4 {
		box = box.Width(width - 2)
	}

	meta := string(result.SourceKind) + " · " + result.ContentType
	if result.URL != "" {
		meta = result.URL + " · " + meta
	}
	if result.Truncated {
		meta += " · truncated"
	}

	blocks := []string{
		titleStyle.Render(result.Title),
		metaStyle.Render(meta),
		sectionStyle.Render(reply.AnalysisHeader),
		analysisTerminal(result.AnalysisText),
		sectionStyle.Render(reply.EmailMarker),
		box.Render(strings.TrimSpace(result.EmailDraft)),
		sectionStyle.Render(reply.SocialMarker),
		box.Render(strings.TrimSpace(result.SocialShare)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

func analysisTerminal(analysis string) string {
	var lines []string
	for _, line := range strings.Split(reply.FormatAnalysis(analysis), "\n") {
		switch {
		case line == reply.AnalysisHeader:
		case strings.HasPrefix(line, reply.Bullet):
			lines = append(lines, bulletStyle.Render(line))
		case reply.IsThemeLine(line):
			lines = append(lines, themeStyle.Render(line))
		default:
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
