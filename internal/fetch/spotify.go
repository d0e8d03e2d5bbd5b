package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"brevity/internal/core"
	"brevity/internal/logger"
)

var episodeIDPattern = regexp.MustCompile(`(?:/episode/|spotify:episode:)([A-Za-z0-9]{10,})`)

// ExtractEpisodeID returns the catalog id of a Spotify episode URL or URI.
func ExtractEpisodeID(rawURL string) (string, error) {
	m := episodeIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", &core.InvalidReferenceError{Reason: "could not extract episode ID", Input: rawURL}
	}
	return m[1], nil
}

// SpotifyOptions configures a SpotifyAdapter.
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	Market       string
	TokenURL     string
	APIBaseURL   string
	PageBaseURL  string
	MinLength    int
	HTTPClient   *http.Client
	Log          *slog.Logger
}

// SpotifyAdapter reads episode descriptions from the Spotify Web API, with
// the public episode page as a fallback.
type SpotifyAdapter struct {
	opts    SpotifyOptions
	fetcher PageFetcher
	chain   Chain
}

// NewSpotifyAdapter creates a catalog adapter.
func NewSpotifyAdapter(fetcher PageFetcher, opts SpotifyOptions) *SpotifyAdapter {
	if opts.TokenURL == "" {
		opts.TokenURL = "https://accounts.spotify.com/api/token"
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = "https://api.spotify.com/v1"
	}
	if opts.PageBaseURL == "" {
		opts.PageBaseURL = "https://open.spotify.com"
	}
	if opts.Market == "" {
		opts.Market = "US"
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinExtractLength
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Log == nil {
		opts.Log = logger.Get()
	}
	return &SpotifyAdapter{
		opts:    opts,
		fetcher: fetcher,
		chain:   Chain{Source: core.SourcePodcastCatalog, Log: opts.Log},
	}
}

// Kind implements Adapter.
func (a *SpotifyAdapter) Kind() core.SourceKind { return core.SourcePodcastCatalog }

type spotifyEpisode struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	HTMLDescription string `json:"html_description"`
	DurationMS      int64  `json:"duration_ms"`
	ReleaseDate     string `json:"release_date"`
	Show            struct {
		Name      string `json:"name"`
		Publisher string `json:"publisher"`
	} `json:"show"`
}

// Fetch implements Adapter.
func (a *SpotifyAdapter) Fetch(ctx context.Context, rawURL string) (*core.ExtractedContent, error) {
	episodeID, err := ExtractEpisodeID(rawURL)
	if err != nil {
		return nil, err
	}

	return a.chain.Run(ctx, []Strategy{
		{
			Name: "catalog-api",
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				return a.fromAPI(ctx, episodeID)
			},
		},
		{
			Name:      "page-description",
			MinLength: a.opts.MinLength,
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				return a.fromPage(ctx, episodeID)
			},
		},
	})
}

// fromAPI exchanges client credentials for a token on every call and reads
// the episode resource.
func (a *SpotifyAdapter) fromAPI(ctx context.Context, episodeID string) (*core.ExtractedContent, error) {
	if a.opts.ClientID == "" || a.opts.ClientSecret == "" {
		return nil, errors.New("spotify client credentials not configured")
	}

	cc := clientcredentials.Config{
		ClientID:     a.opts.ClientID,
		ClientSecret: a.opts.ClientSecret,
		TokenURL:     a.opts.TokenURL,
	}
	client := cc.Client(context.WithValue(ctx, oauth2.HTTPClient, a.opts.HTTPClient))

	endpoint := fmt.Sprintf("%s/episodes/%s?market=%s", strings.TrimSuffix(a.opts.APIBaseURL, "/"),
		url.PathEscape(episodeID), url.QueryEscape(a.opts.Market))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create episode request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("episode request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: endpoint, Code: resp.StatusCode}
	}

	var ep spotifyEpisode
	if err := json.NewDecoder(resp.Body).Decode(&ep); err != nil {
		return nil, fmt.Errorf("failed to decode episode: %w", err)
	}

	body := ep.Description
	if strings.TrimSpace(body) == "" {
		body = ep.HTMLDescription
	}

	title := ep.Name
	if ep.Show.Name != "" {
		title = ep.Show.Name + " - " + ep.Name
	}

	meta := map[string]string{"episode_id": episodeID}
	if ep.Show.Name != "" {
		meta["show"] = ep.Show.Name
	}
	if ep.Show.Publisher != "" {
		meta["publisher"] = ep.Show.Publisher
	}
	if ep.DurationMS > 0 {
		meta["duration"] = (time.Duration(ep.DurationMS) * time.Millisecond).String()
		meta["duration_ms"] = strconv.FormatInt(ep.DurationMS, 10)
	}
	if ep.ReleaseDate != "" {
		meta["release_date"] = ep.ReleaseDate
	}

	return &core.ExtractedContent{Title: title, Body: body, Metadata: meta}, nil
}

func (a *SpotifyAdapter) fromPage(ctx context.Context, episodeID string) (*core.ExtractedContent, error) {
	pageURL := strings.TrimSuffix(a.opts.PageBaseURL, "/") + "/episode/" + url.PathEscape(episodeID)
	page, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(page.Body)
	if err != nil {
		return nil, err
	}
	title := ogTitle(doc)
	if title == "" {
		title = "Spotify Episode"
	}
	return &core.ExtractedContent{
		Title:    title,
		Body:     metaDescription(doc),
		Metadata: map[string]string{"episode_id": episodeID},
	}, nil
}
