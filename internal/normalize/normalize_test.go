package normalize

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	n := New(Limits{})
	in := core.ExtractedContent{
		Title:  "  Budget Cuts ",
		Body:   "The   council\tmet today.   \n\n\n\n  It voted on   the budget and several amendments.  ",
		Source: core.SourceRawText,
	}

	out, err := n.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "The council met today.\n\nIt voted on the budget and several amendments.", out.Body)
	assert.Equal(t, "Budget Cuts", out.Title)
	assert.False(t, out.Truncated)
	assert.Equal(t, core.SourceRawText, out.Source)
}

func TestNormalizeStripsMarkup(t *testing.T) {
	n := New(Limits{})
	in := core.ExtractedContent{Body: `<div><p>First paragraph with enough words to count.</p>` +
		`<script>alert("x")</script><p>Second &amp; final paragraph.</p></div>`}

	out, err := n.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph with enough words to count.\nSecond & final paragraph.", out.Body)
}

func TestNormalizeLeavesPlainAngleBrackets(t *testing.T) {
	n := New(Limits{})
	body := "If x < 3 and y > 4 then the inequality holds for every value we tested."
	out, err := n.Normalize(core.ExtractedContent{Body: body})
	require.NoError(t, err)
	assert.Equal(t, body, out.Body)
}

func TestNormalizeTooShort(t *testing.T) {
	n := New(Limits{})
	_, err := n.Normalize(core.ExtractedContent{Body: "   too short   "})

	var empty *core.EmptyContentError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, 9, empty.Length)
	assert.Equal(t, 50, empty.Min)
}

func TestNormalizeTruncation(t *testing.T) {
	n := New(Limits{})

	tests := []struct {
		name          string
		length        int
		wantTruncated bool
	}{
		{"at limit", 16000, false},
		{"one over", 16001, true},
		{"far over", 40000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.Repeat("a", tt.length)
			out, err := n.Normalize(core.ExtractedContent{Body: body})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTruncated, out.Truncated)
			if tt.wantTruncated {
				assert.Equal(t, 16000+utf8.RuneCountInString(core.TruncationMarker), utf8.RuneCountInString(out.Body))
				assert.True(t, strings.HasSuffix(out.Body, core.TruncationMarker))
			} else {
				assert.Equal(t, body, out.Body)
			}
		})
	}
}

func TestNormalizeTruncatesOnRuneBoundary(t *testing.T) {
	n := New(Limits{MaxLength: 60})
	body := strings.Repeat("é", 100)

	out, err := n.Normalize(core.ExtractedContent{Body: body})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(out.Body))
	assert.Equal(t, strings.Repeat("é", 60)+core.TruncationMarker, out.Body)
}
