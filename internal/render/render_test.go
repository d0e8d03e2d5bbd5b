package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
)

func sampleResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		ID:           "sum-1",
		Title:        "Budget Cuts",
		URL:          "https://news.example.com/budget",
		AnalysisText: "Thematic Analysis\n\nFunding Pressure\n• Districts lose aid\n• Rural schools suffer\n\nPublic Response\n• Parents organise",
		EmailDraft:   "Subject: Budget Cuts\n\nDear [Recipient],\n\nBest regards,\n\n[Your Name]",
		SocialShare:  "Budget cuts reshape schools.\n\nHashtags: #Budget #Schools",
		SourceKind:   core.SourceGenericWeb,
		ContentType:  "news",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	assert.True(t, strings.HasPrefix(md, "# Budget Cuts\n\n"))
	assert.Contains(t, md, "**Source:** <https://news.example.com/budget>")
	assert.Contains(t, md, "**Created:** 2026-03-01 12:00 UTC")
	assert.Contains(t, md, "## Thematic Analysis\n\n### Funding Pressure\n- Districts lose aid\n- Rural schools suffer\n\n### Public Response\n- Parents organise")
	assert.Contains(t, md, "---\n\n## Email Draft\n\nSubject: Budget Cuts")
	assert.Contains(t, md, "## Social Share\n\nBudget cuts reshape schools.")
	assert.NotContains(t, md, "Note:")
}

func TestMarkdownRawText(t *testing.T) {
	r := sampleResult()
	r.URL = ""
	r.RawContent = "pasted"
	r.Truncated = true

	md := Markdown(r)
	assert.Contains(t, md, "**Source:** Pasted text")
	assert.Contains(t, md, "truncated before analysis")
}

func TestHTML(t *testing.T) {
	out := HTML(sampleResult())

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Budget Cuts</h1>")
	assert.Contains(t, out, "Funding Pressure</h3>")
	assert.Contains(t, out, "<li>Districts lose aid</li>")
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, "<br")
}

func TestTerminal(t *testing.T) {
	out := Terminal(sampleResult(), 0)

	for _, want := range []string{
		"Budget Cuts", "generic_web", "news", "Thematic Analysis", "Funding Pressure",
		"• Districts lose aid", "Email Draft", "Dear [Recipient],", "Social Share", "#Budget",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "summary.md")

	got, err := WriteFile("# hi\n", path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# hi\n", string(data))
}
