package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"brevity/internal/core"
)

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		url  string
		want core.SourceKind
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", core.SourceVideoPlatform},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", core.SourceVideoPlatform},
		{"https://youtu.be/dQw4w9WgXcQ", core.SourceVideoPlatform},
		{"youtube.com/shorts/dQw4w9WgXcQ", core.SourceVideoPlatform},
		{"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", core.SourceVideoPlatform},
		{"https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk", core.SourcePodcastCatalog},
		{"https://open.spotify.com/intl-de/episode/4rOoJ6Egrf8K2IrywzwOMk", core.SourcePodcastCatalog},
		{"https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk", core.SourceGenericWeb},
		{"https://podcasts.apple.com/us/podcast/the-daily/id1200361736?i=1000", core.SourcePodcastFeed},
		{"https://example.com/article", core.SourceGenericWeb},
		{"https://notyoutube.com.evil.net/watch", core.SourceGenericWeb},
		{"https://example.com/?next=youtube.com", core.SourceGenericWeb},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyURL(tt.url))
			assert.Equal(t, tt.want, ClassifyURL(tt.url), "classification must be stable")
		})
	}
}

func TestClassifyReference(t *testing.T) {
	assert.Equal(t, core.SourceRawText, Classify(core.ContentReference{RawContent: "text"}))
	assert.Equal(t, core.SourceVideoPlatform, Classify(core.ContentReference{
		URL:        "https://youtu.be/dQw4w9WgXcQ",
		RawContent: "ignored",
	}))
}

func TestContentTypeLabel(t *testing.T) {
	tests := []struct {
		name string
		ref  core.ContentReference
		body string
		want string
	}{
		{"video", core.ContentReference{URL: "https://youtu.be/abc"}, "", "video transcript"},
		{"catalog", core.ContentReference{URL: "https://open.spotify.com/episode/x"}, "", "podcast transcript"},
		{"feed", core.ContentReference{URL: "https://podcasts.apple.com/us/podcast/x/id1"}, "", "podcast transcript"},
		{"research host", core.ContentReference{URL: "https://arxiv.org/abs/2401.00001"}, "", "research"},
		{"opinion host", core.ContentReference{URL: "https://someone.substack.com/p/post"}, "", "opinion"},
		{"news host", core.ContentReference{URL: "https://www.reuters.com/world/story"}, "", "news"},
		{"plain article", core.ContentReference{URL: "https://example.com/page"}, "", "article"},
		{"raw research", core.ContentReference{RawContent: "x"}, "Abstract. Our methodology ... in conclusion", "research"},
		{"raw transcript", core.ContentReference{RawContent: "x"}, "[00:01] Host: welcome back", "transcript"},
		{"raw article", core.ContentReference{RawContent: "x"}, "Congress voted on the budget today.", "article"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeLabel(tt.ref, tt.body))
		})
	}
}
