package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
	"brevity/internal/logger"
)

func newSpotifyServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			atomic.AddInt32(tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			if !ok {
				require.NoError(t, r.ParseForm())
				user, pass = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
			}
			assert.Equal(t, "id", user)
			assert.Equal(t, "secret", pass)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/v1/episodes/4rOoJ6Egrf8K2IrywzwOMk":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "US", r.URL.Query().Get("market"))
			_, _ = w.Write([]byte(`{"name":"Episode 12","description":"We talk about budgets.","duration_ms":1800000,"release_date":"2024-03-01","show":{"name":"Money Talk","publisher":"Pod Co"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestExtractEpisodeID(t *testing.T) {
	id, err := ExtractEpisodeID("https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk?si=abc")
	require.NoError(t, err)
	assert.Equal(t, "4rOoJ6Egrf8K2IrywzwOMk", id)

	_, err = ExtractEpisodeID("https://open.spotify.com/show/4rOoJ6Egrf8K2IrywzwOMk")
	assert.ErrorIs(t, err, core.ErrInvalidReference)
}

func TestSpotifyAdapterCatalogAPI(t *testing.T) {
	var tokenCalls int32
	server := newSpotifyServer(t, &tokenCalls)
	defer server.Close()

	a := NewSpotifyAdapter(newFakeFetcher(), SpotifyOptions{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/token",
		APIBaseURL:   server.URL + "/v1",
		HTTPClient:   server.Client(),
		Log:          logger.Discard(),
	})

	for i := 0; i < 2; i++ {
		content, err := a.Fetch(context.Background(), "https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk")
		require.NoError(t, err)
		assert.Equal(t, "Money Talk - Episode 12", content.Title)
		assert.Equal(t, "We talk about budgets.", content.Body)
		assert.Equal(t, "catalog-api", content.Strategy)
		assert.Equal(t, "30m0s", content.Metadata["duration"])
		assert.Equal(t, "Pod Co", content.Metadata["publisher"])
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls), "a token is requested on every call")
}

func TestSpotifyAdapterFallsBackToPage(t *testing.T) {
	desc := strings.Repeat("An episode about household budgets and saving. ", 3)
	f := newFakeFetcher()
	f.html("https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk", `<html><head>
<meta property="og:title" content="Episode 12">
<meta property="og:description" content="`+desc+`"></head></html>`)

	a := NewSpotifyAdapter(f, SpotifyOptions{Log: logger.Discard()})
	content, err := a.Fetch(context.Background(), "https://open.spotify.com/episode/4rOoJ6Egrf8K2IrywzwOMk")
	require.NoError(t, err)
	assert.Equal(t, "page-description", content.Strategy)
	assert.Equal(t, "Episode 12", content.Title)
}

func TestSpotifyAdapterBothStrategiesFail(t *testing.T) {
	var tokenCalls int32
	server := newSpotifyServer(t, &tokenCalls)
	defer server.Close()

	f := newFakeFetcher()
	a := NewSpotifyAdapter(f, SpotifyOptions{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/token",
		APIBaseURL:   server.URL + "/v1",
		HTTPClient:   server.Client(),
		Log:          logger.Discard(),
	})

	_, err := a.Fetch(context.Background(), "https://open.spotify.com/episode/7makk4oTQel546B0PZlDM5")

	var acq *core.AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, core.SourcePodcastCatalog, acq.Source)
	assert.Equal(t, []string{"catalog-api", "page-description"}, acq.Strategies())
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
	assert.Len(t, f.requests, 1)
}

type fakeDirectory struct {
	feedURL string
	err     error
}

func (d fakeDirectory) LookupFeedURL(context.Context, string) (string, error) {
	return d.feedURL, d.err
}

type fakeFeeds struct {
	feed *gofeed.Feed
	err  error
}

func (f fakeFeeds) FetchFeed(context.Context, string) (*gofeed.Feed, error) { return f.feed, f.err }

func TestParseApplePodcastURL(t *testing.T) {
	ref, err := ParseApplePodcastURL("https://podcasts.apple.com/us/podcast/the-daily/id1200361736?i=1000650000000")
	require.NoError(t, err)
	assert.Equal(t, ApplePodcastRef{ShowID: "1200361736", EpisodeID: "1000650000000", Slug: "the-daily"}, ref)

	_, err = ParseApplePodcastURL("https://podcasts.apple.com/us/browse")
	assert.ErrorIs(t, err, core.ErrInvalidReference)
}

func TestApplePodcastAdapterFeed(t *testing.T) {
	feed := &gofeed.Feed{
		Title: "The Daily",
		Items: []*gofeed.Item{
			{Title: "Other", GUID: "guid-1", Description: "nope"},
			{Title: "Budget Day", GUID: "tag:1000650000000", Content: "<p>The full episode notes.</p>"},
		},
	}
	a := NewApplePodcastAdapter(fakeDirectory{feedURL: "https://feeds.test/daily.xml"}, fakeFeeds{feed: feed}, newFakeFetcher(), 0, logger.Discard())

	content, err := a.Fetch(context.Background(), "https://podcasts.apple.com/us/podcast/the-daily/id1200361736?i=1000650000000")
	require.NoError(t, err)
	assert.Equal(t, "The Daily - Budget Day", content.Title)
	assert.Equal(t, "The full episode notes.", content.Body)
	assert.Equal(t, "feed", content.Strategy)
	assert.Equal(t, core.SourcePodcastFeed, content.Source)
	assert.Equal(t, "The Daily", content.Metadata["show"])
}

func TestApplePodcastAdapterPageScrape(t *testing.T) {
	desc := strings.Repeat("In this episode we look at the state budget and what it means. ", 3)
	pageURL := "https://podcasts.apple.com/us/podcast/the-daily/id1200361736"
	f := newFakeFetcher()
	f.html(pageURL, `<html><head><title>The Daily on Apple Podcasts</title>
<meta name="description" content="short"></head>
<body><div class="product-hero-desc__section">`+desc+`</div></body></html>`)

	a := NewApplePodcastAdapter(fakeDirectory{err: errors.New("lookup down")}, fakeFeeds{}, f, 100, logger.Discard())
	content, err := a.Fetch(context.Background(), "podcasts.apple.com/us/podcast/the-daily/id1200361736")
	require.NoError(t, err)
	assert.Equal(t, "page-scrape", content.Strategy)
	assert.Equal(t, "The Daily", content.Title)
	assert.Equal(t, strings.TrimSpace(desc), content.Body)
}

func TestApplePodcastAdapterFeedWithoutShowTitle(t *testing.T) {
	feed := &gofeed.Feed{Items: []*gofeed.Item{{Title: "Budget Day", Description: "Notes."}}}
	a := NewApplePodcastAdapter(fakeDirectory{feedURL: "https://feeds.test/daily.xml"}, fakeFeeds{feed: feed}, newFakeFetcher(), 0, logger.Discard())

	content, err := a.Fetch(context.Background(), "https://podcasts.apple.com/us/podcast/the-daily/id1200361736")
	require.NoError(t, err)
	assert.Equal(t, "Budget Day", content.Title)
	assert.Empty(t, content.Metadata["show"])
}

func TestApplePodcastAdapterBothStrategiesFail(t *testing.T) {
	f := newFakeFetcher()
	a := NewApplePodcastAdapter(fakeDirectory{err: errors.New("lookup down")}, fakeFeeds{}, f, 0, logger.Discard())

	_, err := a.Fetch(context.Background(), "https://podcasts.apple.com/us/podcast/the-daily/id1200361736?i=1000650000000")

	var acq *core.AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, core.SourcePodcastFeed, acq.Source)
	assert.Equal(t, []string{"feed", "page-scrape"}, acq.Strategies())
	assert.ErrorContains(t, acq.Attempts[0].Err, "lookup down")

	var status *StatusError
	require.ErrorAs(t, acq.Attempts[1].Err, &status)
	assert.Equal(t, http.StatusNotFound, status.Code)
	assert.Equal(t, []string{"https://podcasts.apple.com/us/podcast/the-daily/id1200361736?i=1000650000000"}, f.requests)
}
