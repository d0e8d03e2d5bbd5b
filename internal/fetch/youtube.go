package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"brevity/internal/core"
	"brevity/internal/logger"
)

// DefaultVideoTitle is used when no title lookup succeeds.
const DefaultVideoTitle = "YouTube Video"

// ErrNoTranscript is returned when a video has no caption track.
var ErrNoTranscript = errors.New("no transcript available")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID returns the 11-character video id from watch, short-link,
// embed, shorts and live URL forms.
func ExtractVideoID(rawURL string) (string, error) {
	candidate := strings.TrimSpace(rawURL)
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", &core.InvalidReferenceError{Reason: "unparsable video URL", Input: rawURL}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch {
	case host == "youtu.be":
		id = segments[0]
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "live" || segments[0] == "v"):
		id = segments[1]
	}

	if !videoIDPattern.MatchString(id) {
		return "", &core.InvalidReferenceError{Reason: "could not extract video ID", Input: rawURL}
	}
	return id, nil
}

// Caption is one timed transcript segment.
type Caption struct {
	Start    float64
	Duration float64
	Text     string
}

// TranscriptProvider returns the caption segments of a video.
type TranscriptProvider interface {
	FetchTranscript(ctx context.Context, videoID string) ([]Caption, error)
}

// VideoMetadata resolves a video's title.
type VideoMetadata interface {
	Title(ctx context.Context, videoID string) (string, error)
}

// joinCaptions orders segments by start time and joins their text.
func joinCaptions(captions []Caption) string {
	sorted := make([]Caption, len(captions))
	copy(sorted, captions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	parts := make([]string, 0, len(sorted))
	for _, c := range sorted {
		if text := collapseSpace(strings.ReplaceAll(c.Text, "\n", " ")); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// WatchPageTranscripts reads the caption track list embedded in the watch
// page and downloads the timed-text document of the preferred language.
type WatchPageTranscripts struct {
	fetcher  PageFetcher
	watchURL string
	language string
}

// NewWatchPageTranscripts creates a caption scraper.
func NewWatchPageTranscripts(fetcher PageFetcher, watchURL, language string) *WatchPageTranscripts {
	if watchURL == "" {
		watchURL = "https://www.youtube.com/watch"
	}
	if language == "" {
		language = "en"
	}
	return &WatchPageTranscripts{fetcher: fetcher, watchURL: watchURL, language: language}
}

var captionTracksKey = []byte(`"captionTracks":`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedText struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript implements TranscriptProvider.
func (w *WatchPageTranscripts) FetchTranscript(ctx context.Context, videoID string) ([]Caption, error) {
	page, err := w.fetcher.Fetch(ctx, watchPageURL(w.watchURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("failed to load watch page: %w", err)
	}

	idx := bytes.Index(page.Body, captionTracksKey)
	if idx < 0 {
		return nil, ErrNoTranscript
	}
	var tracks []captionTrack
	if err := json.NewDecoder(bytes.NewReader(page.Body[idx+len(captionTracksKey):])).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("failed to decode caption tracks: %w", err)
	}
	track := w.pickTrack(tracks)
	if track == nil {
		return nil, ErrNoTranscript
	}

	doc, err := w.fetcher.Fetch(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download captions: %w", err)
	}
	var tt timedText
	if err := xml.Unmarshal(doc.Body, &tt); err != nil {
		return nil, fmt.Errorf("failed to decode captions: %w", err)
	}

	captions := make([]Caption, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		captions = append(captions, Caption{Start: t.Start, Duration: t.Dur, Text: html.UnescapeString(t.Body)})
	}
	if len(captions) == 0 {
		return nil, ErrNoTranscript
	}
	return captions, nil
}

// pickTrack prefers a manual track in the configured language, then an
// auto-generated one, then whatever comes first.
func (w *WatchPageTranscripts) pickTrack(tracks []captionTrack) *captionTrack {
	var auto *captionTrack
	for i := range tracks {
		t := &tracks[i]
		if t.BaseURL == "" || !strings.HasPrefix(t.LanguageCode, w.language) {
			continue
		}
		if t.Kind != "asr" {
			return t
		}
		if auto == nil {
			auto = t
		}
	}
	if auto != nil {
		return auto
	}
	for i := range tracks {
		if tracks[i].BaseURL != "" {
			return &tracks[i]
		}
	}
	return nil
}

// OEmbedMetadata looks titles up through the public oEmbed endpoint.
type OEmbedMetadata struct {
	fetcher  PageFetcher
	endpoint string
	watchURL string
}

// NewOEmbedMetadata creates an oEmbed title resolver.
func NewOEmbedMetadata(fetcher PageFetcher, endpoint, watchURL string) *OEmbedMetadata {
	if endpoint == "" {
		endpoint = "https://www.youtube.com/oembed"
	}
	if watchURL == "" {
		watchURL = "https://www.youtube.com/watch"
	}
	return &OEmbedMetadata{fetcher: fetcher, endpoint: endpoint, watchURL: watchURL}
}

// Title implements VideoMetadata.
func (o *OEmbedMetadata) Title(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("url", watchPageURL(o.watchURL, videoID))
	q.Set("format", "json")

	var oembed struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := getJSON(ctx, o.fetcher, o.endpoint+"?"+q.Encode(), &oembed); err != nil {
		return "", err
	}
	if oembed.Title == "" {
		return "", errors.New("oEmbed response has no title")
	}
	return oembed.Title, nil
}

// DataAPIMetadata uses the YouTube Data API v3.
type DataAPIMetadata struct {
	service *youtube.Service
}

// NewDataAPIMetadata creates a Data API client authenticated by API key.
// endpoint overrides the API base URL and may be empty.
func NewDataAPIMetadata(ctx context.Context, apiKey, endpoint string) (*DataAPIMetadata, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return &DataAPIMetadata{service: svc}, nil
}

// Title implements VideoMetadata.
func (d *DataAPIMetadata) Title(ctx context.Context, videoID string) (string, error) {
	resp, err := d.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("videos.list failed: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", fmt.Errorf("video %s not found", videoID)
	}
	return resp.Items[0].Snippet.Title, nil
}

// MetadataChain tries resolvers in order and returns the first title.
type MetadataChain []VideoMetadata

// Title implements VideoMetadata.
func (m MetadataChain) Title(ctx context.Context, videoID string) (string, error) {
	var errs []error
	for _, r := range m {
		title, err := r.Title(ctx, videoID)
		if err == nil && strings.TrimSpace(title) != "" {
			return strings.TrimSpace(title), nil
		}
		if err == nil {
			err = errors.New("empty title")
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("no metadata resolvers configured")
	}
	return "", errors.Join(errs...)
}

// VideoAdapter acquires video transcripts, falling back to the page
// description.
type VideoAdapter struct {
	transcripts TranscriptProvider
	metadata    VideoMetadata
	fetcher     PageFetcher
	watchURL    string
	minLength   int
	log         *slog.Logger
	chain       Chain
}

// VideoOptions configures a VideoAdapter.
type VideoOptions struct {
	WatchURL  string
	MinLength int
	Log       *slog.Logger
}

// NewVideoAdapter creates a video adapter.
func NewVideoAdapter(transcripts TranscriptProvider, metadata VideoMetadata, fetcher PageFetcher, opts VideoOptions) *VideoAdapter {
	if opts.WatchURL == "" {
		opts.WatchURL = "https://www.youtube.com/watch"
	}
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinExtractLength
	}
	if opts.Log == nil {
		opts.Log = logger.Get()
	}
	return &VideoAdapter{
		transcripts: transcripts,
		metadata:    metadata,
		fetcher:     fetcher,
		watchURL:    opts.WatchURL,
		minLength:   opts.MinLength,
		log:         opts.Log,
		chain:       Chain{Source: core.SourceVideoPlatform, Log: opts.Log},
	}
}

// Kind implements Adapter.
func (a *VideoAdapter) Kind() core.SourceKind { return core.SourceVideoPlatform }

// Fetch implements Adapter.
func (a *VideoAdapter) Fetch(ctx context.Context, rawURL string) (*core.ExtractedContent, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	content, err := a.chain.Run(ctx, []Strategy{
		{
			Name: "transcript",
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				captions, err := a.transcripts.FetchTranscript(ctx, videoID)
				if err != nil {
					return nil, err
				}
				return &core.ExtractedContent{Body: joinCaptions(captions)}, nil
			},
		},
		{
			Name:      "page-description",
			MinLength: a.minLength,
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				page, err := a.fetcher.Fetch(ctx, watchPageURL(a.watchURL, videoID))
				if err != nil {
					return nil, err
				}
				doc, err := parseHTML(page.Body)
				if err != nil {
					return nil, err
				}
				title := strings.TrimSuffix(ogTitle(doc), " - YouTube")
				return &core.ExtractedContent{Title: title, Body: metaDescription(doc)}, nil
			},
		},
	})
	if err != nil {
		return nil, err
	}

	content.Title = a.resolveTitle(ctx, videoID, content.Title)
	content.Metadata = map[string]string{"video_id": videoID}
	return content, nil
}

func (a *VideoAdapter) resolveTitle(ctx context.Context, videoID, pageTitle string) string {
	if a.metadata != nil {
		title, err := a.metadata.Title(ctx, videoID)
		if err == nil && title != "" {
			return title
		}
		a.log.Debug("Video title lookup failed", "video_id", videoID, "error", fmt.Sprint(err))
	}
	if pageTitle != "" {
		return pageTitle
	}
	return DefaultVideoTitle
}

func watchPageURL(base, videoID string) string {
	return base + "?v=" + url.QueryEscape(videoID)
}
