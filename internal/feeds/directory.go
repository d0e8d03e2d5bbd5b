package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrFeedNotFound is returned when the directory has no feed for a show.
var ErrFeedNotFound = errors.New("podcast feed not found")

// Directory resolves a podcast show identifier to its feed URL.
type Directory interface {
	LookupFeedURL(ctx context.Context, showID string) (string, error)
}

// ITunesDirectory queries the iTunes lookup API.
type ITunesDirectory struct {
	client    *http.Client
	lookupURL string
}

// NewITunesDirectory creates a directory client. lookupURL defaults to the
// public endpoint.
func NewITunesDirectory(client *http.Client, lookupURL string) *ITunesDirectory {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if lookupURL == "" {
		lookupURL = "https://itunes.apple.com/lookup"
	}
	return &ITunesDirectory{client: client, lookupURL: lookupURL}
}

type lookupResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		CollectionName string `json:"collectionName"`
		FeedURL        string `json:"feedUrl"`
	} `json:"results"`
}

// LookupFeedURL returns the RSS feed of the show.
func (d *ITunesDirectory) LookupFeedURL(ctx context.Context, showID string) (string, error) {
	u, err := url.Parse(d.lookupURL)
	if err != nil {
		return "", fmt.Errorf("invalid lookup URL: %w", err)
	}
	q := u.Query()
	q.Set("id", showID)
	q.Set("entity", "podcast")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("podcast lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("podcast lookup returned status %d", resp.StatusCode)
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode lookup response: %w", err)
	}
	for _, r := range parsed.Results {
		if r.FeedURL != "" {
			return r.FeedURL, nil
		}
	}
	return "", fmt.Errorf("%w for show %s", ErrFeedNotFound, showID)
}
