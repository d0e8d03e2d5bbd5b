package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
	"brevity/internal/logger"
)

var longParagraph = strings.Repeat("Public schools across the state are preparing for a leaner year. ", 4)

func TestWebAdapterMainContainer(t *testing.T) {
	f := newFakeFetcher()
	f.html("https://example.com/news/budget", `<html><head>
<title>Budget | Example</title>
<meta property="og:title" content="Budget Cuts Explained">
<script>var tracking = "ignore me";</script>
</head><body>
<nav>Home About Contact</nav>
<header><h1>Site Header</h1></header>
<article><h2>Overview</h2><p>`+longParagraph+`</p><p>Second paragraph.</p></article>
<footer>Copyright</footer>
</body></html>`)

	content, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "example.com/news/budget")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/news/budget"}, f.requests, "scheme is added before fetching")
	assert.Equal(t, "Budget Cuts Explained", content.Title)
	assert.Equal(t, "main-container", content.Strategy)
	assert.Equal(t, core.SourceGenericWeb, content.Source)
	assert.True(t, strings.HasPrefix(content.Body, "Overview\n\nPublic schools"))
	assert.Contains(t, content.Body, "Second paragraph.")
	assert.NotContains(t, content.Body, "ignore me")
	assert.NotContains(t, content.Body, "Home About")
}

func TestWebAdapterParagraphFallback(t *testing.T) {
	f := newFakeFetcher()
	f.html("https://example.com/post", `<html><head><title>Plain Post</title></head><body>
<div><p>`+longParagraph+`</p></div><div><p>More text here.</p></div></body></html>`)

	content, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "paragraphs", content.Strategy)
	assert.Equal(t, "Plain Post", content.Title)
	assert.True(t, strings.HasSuffix(content.Body, "\n\nMore text here."))
}

func TestWebAdapterMetaDescriptionFallback(t *testing.T) {
	desc := strings.Repeat("A description that is long enough to pass the gate. ", 3)
	f := newFakeFetcher()
	f.html("https://example.com/app", `<html><head>
<meta name="description" content="`+desc+`"></head>
<body><h1>App Shell</h1><p>Loading</p></body></html>`)

	content, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "https://example.com/app")
	require.NoError(t, err)
	assert.Equal(t, "meta-description", content.Strategy)
	assert.Equal(t, strings.TrimSpace(desc), content.Body)
	assert.Equal(t, "App Shell", content.Title, "first heading is used when there is no title element")
}

func TestWebAdapterBodyTextFallback(t *testing.T) {
	f := newFakeFetcher()
	f.html("https://example.com/raw/notes-page", `<html><body><div>`+longParagraph+`</div></body></html>`)

	content, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "https://example.com/raw/notes-page")
	require.NoError(t, err)
	assert.Equal(t, "body-text", content.Strategy)
	assert.Equal(t, "notes-page", content.Title)
}

func TestWebAdapterExhausted(t *testing.T) {
	f := newFakeFetcher()
	f.html("https://example.com/", `<html><body><p>Too short.</p></body></html>`)

	_, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "https://example.com/")

	var acq *core.AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, []string{"main-container", "paragraphs", "meta-description", "body-text"}, acq.Strategies())
}

func TestWebAdapterFetchFailure(t *testing.T) {
	f := newFakeFetcher()
	f.errs["https://down.example.com"] = errors.New("connection refused")

	_, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "https://down.example.com")

	var acq *core.AcquisitionError
	require.ErrorAs(t, err, &acq)
	assert.Equal(t, []string{"fetch-page"}, acq.Strategies())
}

func TestWebAdapterInvalidReference(t *testing.T) {
	f := newFakeFetcher()
	_, err := NewWebAdapter(f, 100, logger.Discard()).Fetch(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, core.ErrInvalidReference)
	assert.Empty(t, f.requests, "no request is made for an invalid reference")
}
