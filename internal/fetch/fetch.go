// Package fetch acquires text from content references. Each source kind has
// an adapter that runs an ordered chain of extraction strategies.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brevity/internal/core"
)

// Adapter turns a URL of one source kind into extracted content.
type Adapter interface {
	Kind() core.SourceKind
	Fetch(ctx context.Context, rawURL string) (*core.ExtractedContent, error)
}

// Page is a fetched HTTP resource.
type Page struct {
	URL         string // final URL after redirects
	ContentType string
	Body        []byte
}

// IsPDF reports whether the page is a PDF document.
func (p *Page) IsPDF() bool {
	return strings.Contains(strings.ToLower(p.ContentType), "application/pdf") ||
		bytes.HasPrefix(p.Body, []byte("%PDF-"))
}

// PageFetcher retrieves a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	Client       *http.Client
}

const (
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 5 * 1024 * 1024
)

// HTTPFetcher fetches pages with browser-like headers and a body ceiling.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPFetcher creates a fetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPFetcher{client: client, userAgent: opts.UserAgent, maxBytes: opts.MaxBodyBytes}
}

// Client exposes the underlying HTTP client for callers that speak JSON APIs.
func (f *HTTPFetcher) Client() *http.Client { return f.client }

// Fetch performs a GET and returns the body, failing on non-2xx statuses
// and on bodies larger than the configured ceiling.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", rawURL, f.maxBytes)
	}

	return &Page{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// getJSON fetches rawURL and decodes a JSON body into out.
func getJSON(ctx context.Context, fetcher PageFetcher, rawURL string, out any) error {
	page, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(page.Body, out); err != nil {
		return fmt.Errorf("failed to decode JSON from %s: %w", rawURL, err)
	}
	return nil
}
