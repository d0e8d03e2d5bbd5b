package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
	"brevity/internal/llm"
	"brevity/internal/logger"
)

// mockCompleter records requests and returns a canned reply.
type mockCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.reply, m.err
}

func TestBuildPrompt(t *testing.T) {
	content := core.NormalizedContent{
		Title:  "Budget Cuts",
		Body:   "The council voted to reduce school funding.",
		Source: core.SourceGenericWeb,
	}

	p, err := BuildPrompt(content, "news")
	require.NoError(t, err)

	assert.Equal(t, SystemPrompt, p.System)
	assert.Equal(t, UserPromptTemplate, p.Template)
	assert.Equal(t, map[string]string{
		"content_type":   "news",
		"title":          "Budget Cuts",
		"source_context": `This is an article titled "Budget Cuts".`,
		"body":           "The council voted to reduce school funding.",
	}, p.Params)
	assert.Equal(t, "Please provide a thematic analysis of the following news content:\n\n"+
		"This is an article titled \"Budget Cuts\".\n\n"+
		"Title: Budget Cuts\n\n"+
		"Content:\nThe council voted to reduce school funding.", p.User)
}

func TestBuildPromptRawTextWithoutTitle(t *testing.T) {
	p, err := BuildPrompt(core.NormalizedContent{Body: "body text", Source: core.SourceRawText}, "")
	require.NoError(t, err)

	assert.Equal(t, "article", p.Params["content_type"])
	assert.Equal(t, DefaultTitle, p.Params["title"])
	assert.Empty(t, p.Params["source_context"])
	assert.Equal(t, "Please provide a thematic analysis of the following article content:\n\n"+
		"Title: Untitled Content\n\nContent:\nbody text", p.User)
}

func TestSourceContext(t *testing.T) {
	tests := []struct {
		name    string
		content core.NormalizedContent
		want    string
	}{
		{
			name:    "video",
			content: core.NormalizedContent{Title: "Talk", Source: core.SourceVideoPlatform},
			want:    `This is a YouTube video titled "Talk".`,
		},
		{
			name: "spotify with show and duration",
			content: core.NormalizedContent{Title: "Ep 1", Source: core.SourcePodcastCatalog,
				Metadata: map[string]string{"show": "Money Talk", "duration": "30m0s"}},
			want: `This is a Spotify podcast episode titled "Ep 1" from the show "Money Talk". Duration: 30m0s.`,
		},
		{
			name:    "feed without show",
			content: core.NormalizedContent{Title: "Ep 2", Source: core.SourcePodcastFeed},
			want:    `This is a podcast episode titled "Ep 2".`,
		},
		{
			name:    "raw text",
			content: core.NormalizedContent{Title: "Notes", Source: core.SourceRawText},
			want:    "",
		},
		{
			name:    "untitled",
			content: core.NormalizedContent{Source: core.SourceGenericWeb},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceContext(tt.content))
		})
	}
}

func TestRequestAnalysis(t *testing.T) {
	mock := &mockCompleter{reply: "Thematic Analysis\n\nTheme\n• point"}
	r := NewRequester(mock, Options{Log: logger.Discard()})

	text, err := r.RequestAnalysis(context.Background(), core.NormalizedContent{Title: "T", Body: "B"}, "article")
	require.NoError(t, err)
	assert.Equal(t, mock.reply, text)

	require.Len(t, mock.requests, 1, "exactly one completion per analysis")
	req := mock.requests[0]
	assert.Equal(t, SystemPrompt, req.System)
	assert.InDelta(t, 0.3, req.Temperature, 0.0001)
	assert.Equal(t, int32(1000), req.MaxTokens)
	assert.True(t, strings.HasSuffix(req.User, "Content:\nB"))
}

func TestRequestAnalysisFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"transport failure", "", errors.New("connection reset")},
		{"empty reply", "  \n ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCompleter{reply: tt.reply, err: tt.err}
			r := NewRequester(mock, Options{Log: logger.Discard()})

			_, err := r.RequestAnalysis(context.Background(), core.NormalizedContent{Body: "B"}, "article")

			var svc *core.AnalysisServiceError
			require.ErrorAs(t, err, &svc)
			assert.Len(t, mock.requests, 1, "no retry")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
			}
		})
	}
}
