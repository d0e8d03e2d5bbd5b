package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"brevity/internal/core"
	"brevity/internal/feeds"
	"brevity/internal/logger"
)

var (
	showIDPattern   = regexp.MustCompile(`/id(\d+)`)
	showSlugPattern = regexp.MustCompile(`/podcast/([^/]+)/id\d+`)
)

// ApplePodcastRef holds the identifiers parsed from an Apple Podcasts URL.
type ApplePodcastRef struct {
	ShowID    string
	EpisodeID string
	Slug      string
}

// ParseApplePodcastURL extracts show id, episode id (?i=) and title slug.
func ParseApplePodcastURL(rawURL string) (ApplePodcastRef, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ApplePodcastRef{}, &core.InvalidReferenceError{Reason: "unparsable podcast URL", Input: rawURL}
	}
	m := showIDPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return ApplePodcastRef{}, &core.InvalidReferenceError{Reason: "could not extract podcast show ID", Input: rawURL}
	}
	ref := ApplePodcastRef{ShowID: m[1], EpisodeID: u.Query().Get("i")}
	if s := showSlugPattern.FindStringSubmatch(u.Path); s != nil {
		if unescaped, err := url.PathUnescape(s[1]); err == nil {
			ref.Slug = unescaped
		} else {
			ref.Slug = s[1]
		}
	}
	return ref, nil
}

// pageDescriptionSelectors are read by the page-scrape strategy in order.
var pageDescriptionSelectors = []string{
	`div[class*="product-hero-desc"]`,
	`div[class*="product-description"]`,
}

// ApplePodcastAdapter resolves the show feed and reads the episode from it,
// falling back to scraping the public episode page.
type ApplePodcastAdapter struct {
	directory feeds.Directory
	feeds     feeds.Fetcher
	fetcher   PageFetcher
	minLength int
	chain     Chain
}

// NewApplePodcastAdapter creates a feed-based podcast adapter.
func NewApplePodcastAdapter(directory feeds.Directory, feedFetcher feeds.Fetcher, fetcher PageFetcher, minLength int, log *slog.Logger) *ApplePodcastAdapter {
	if minLength <= 0 {
		minLength = DefaultMinExtractLength
	}
	if log == nil {
		log = logger.Get()
	}
	return &ApplePodcastAdapter{
		directory: directory,
		feeds:     feedFetcher,
		fetcher:   fetcher,
		minLength: minLength,
		chain:     Chain{Source: core.SourcePodcastFeed, Log: log},
	}
}

// Kind implements Adapter.
func (a *ApplePodcastAdapter) Kind() core.SourceKind { return core.SourcePodcastFeed }

// Fetch implements Adapter.
func (a *ApplePodcastAdapter) Fetch(ctx context.Context, rawURL string) (*core.ExtractedContent, error) {
	ref, err := ParseApplePodcastURL(rawURL)
	if err != nil {
		return nil, err
	}
	pageURL := strings.TrimSpace(rawURL)
	if !strings.Contains(pageURL, "://") {
		pageURL = "https://" + pageURL
	}

	return a.chain.Run(ctx, []Strategy{
		{
			Name: "feed",
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				return a.fromFeed(ctx, ref)
			},
		},
		{
			Name:      "page-scrape",
			MinLength: a.minLength,
			Run: func(ctx context.Context) (*core.ExtractedContent, error) {
				return a.fromPage(ctx, pageURL)
			},
		},
	})
}

func (a *ApplePodcastAdapter) fromFeed(ctx context.Context, ref ApplePodcastRef) (*core.ExtractedContent, error) {
	feedURL, err := a.directory.LookupFeedURL(ctx, ref.ShowID)
	if err != nil {
		return nil, err
	}
	feed, err := a.feeds.FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	item := feeds.SelectEpisode(feed, ref.EpisodeID, ref.Slug)
	if item == nil {
		return nil, fmt.Errorf("feed %s has no episodes", feedURL)
	}

	meta := map[string]string{"show_id": ref.ShowID, "feed_url": feedURL}
	if feed.Title != "" {
		meta["show"] = feed.Title
	}
	if ref.EpisodeID != "" {
		meta["episode_id"] = ref.EpisodeID
	}
	if item.PublishedParsed != nil {
		meta["published"] = item.PublishedParsed.Format("2006-01-02")
	}

	title := strings.TrimSpace(item.Title)
	if show := strings.TrimSpace(feed.Title); show != "" {
		title = show + " - " + title
	}

	return &core.ExtractedContent{
		Title:    title,
		Body:     feeds.ItemContent(item),
		Metadata: meta,
	}, nil
}

func (a *ApplePodcastAdapter) fromPage(ctx context.Context, pageURL string) (*core.ExtractedContent, error) {
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
		title = collapseSpace(doc.Find("title").First().Text())
	}
	title = strings.TrimSpace(strings.TrimSuffix(title, " on Apple Podcasts"))

	body := metaDescription(doc)
	if len([]rune(body)) <= a.minLength {
		body = firstText(doc, pageDescriptionSelectors, body)
	}
	if body == "" {
		return nil, errors.New("no episode description on page")
	}
	return &core.ExtractedContent{Title: title, Body: body}, nil
}

// firstText returns the text of the first selector whose content is longer
// than current.
func firstText(doc *goquery.Document, selectors []string, current string) string {
	for _, sel := range selectors {
		text := collapseSpace(doc.Find(sel).First().Text())
		if len([]rune(text)) > len([]rune(current)) {
			return text
		}
	}
	return current
}
