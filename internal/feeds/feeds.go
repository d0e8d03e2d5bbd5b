// Package feeds fetches podcast RSS/Atom feeds and picks episodes out of them.
package feeds

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves and parses a feed.
type Fetcher interface {
	FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error)
}

// FeedManager manages RSS/Atom feed operations
type FeedManager struct {
	client    *http.Client
	userAgent string
}

// NewFeedManager creates a new feed manager. A nil client gets a 30s default.
func NewFeedManager(client *http.Client, userAgent string) *FeedManager {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = "Brevity Feed Reader/1.0"
	}
	return &FeedManager{client: client, userAgent: userAgent}
}

// FetchFeed fetches and parses a feed from the given URL
func (fm *FeedManager) FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fm.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := fm.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return fm.Parse(resp.Body)
}

// Parse parses an RSS or Atom document.
func (fm *FeedManager) Parse(r io.Reader) (*gofeed.Feed, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	blockTags    = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6])\s*/?>`)
)

// PlainText strips all markup from an HTML fragment and unescapes entities.
// Block-level closing tags become line breaks so paragraphs survive.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	withBreaks := blockTags.ReplaceAllString(fragment, "\n$0")
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(withBreaks)))
}

// ItemContent returns the richest text field of an item: full content,
// then the iTunes summary, then the iTunes subtitle, then the description.
func ItemContent(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	candidates := []string{item.Content}
	if item.ITunesExt != nil {
		candidates = append(candidates, item.ITunesExt.Summary, item.ITunesExt.Subtitle)
	}
	candidates = append(candidates, item.Description)

	for _, c := range candidates {
		if text := PlainText(c); text != "" {
			return text
		}
	}
	return ""
}

// SelectEpisode picks the item matching episodeID (in GUID or link), then
// the item whose title contains titleHint, then the most recent item.
func SelectEpisode(feed *gofeed.Feed, episodeID, titleHint string) *gofeed.Item {
	if feed == nil || len(feed.Items) == 0 {
		return nil
	}

	if episodeID != "" {
		for _, item := range feed.Items {
			if strings.Contains(item.GUID, episodeID) || strings.Contains(item.Link, episodeID) {
				return item
			}
		}
	}

	if hint := normalizeTitle(titleHint); hint != "" {
		for _, item := range feed.Items {
			if strings.Contains(normalizeTitle(item.Title), hint) {
				return item
			}
		}
	}

	return latest(feed.Items)
}

func latest(items []*gofeed.Item) *gofeed.Item {
	sorted := make([]*gofeed.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PublishedParsed, sorted[j].PublishedParsed
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return sorted[0]
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTitle lowercases and replaces punctuation runs with single spaces,
// so "the-daily" and "The Daily:" compare equal.
func normalizeTitle(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}
