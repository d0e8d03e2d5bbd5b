package fetch

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"brevity/internal/core"
	"brevity/internal/logger"
	"brevity/internal/parser"
)

// mainContentSelectors are tried in order by the main-container strategy.
var mainContentSelectors = []string{
	"article",
	"main",
	".article-content",
	".post-content",
	".entry-content",
	"[role='main']",
	"#content",
	".content",
}

// DefaultMinExtractLength is the gate for scraped text strategies.
const DefaultMinExtractLength = 100

// WebAdapter extracts article text from arbitrary web pages and PDFs.
type WebAdapter struct {
	fetcher   PageFetcher
	parser    *parser.Parser
	minLength int
	chain     Chain
}

// NewWebAdapter creates a generic web adapter.
func NewWebAdapter(fetcher PageFetcher, minLength int, log *slog.Logger) *WebAdapter {
	if minLength <= 0 {
		minLength = DefaultMinExtractLength
	}
	if log == nil {
		log = logger.Get()
	}
	return &WebAdapter{
		fetcher:   fetcher,
		parser:    parser.NewParser(),
		minLength: minLength,
		chain:     Chain{Source: core.SourceGenericWeb, Log: log},
	}
}

// Kind implements Adapter.
func (a *WebAdapter) Kind() core.SourceKind { return core.SourceGenericWeb }

// Fetch retrieves the page once and runs the extraction strategies over it.
func (a *WebAdapter) Fetch(ctx context.Context, rawURL string) (*core.ExtractedContent, error) {
	u, err := a.parser.ParseReference(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := a.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, &core.AcquisitionError{
			Source:   core.SourceGenericWeb,
			Attempts: []core.Attempt{{Strategy: "fetch-page", Err: err}},
		}
	}

	if page.IsPDF() {
		return a.chain.Run(ctx, []Strategy{a.pdfStrategy(u, page)})
	}

	doc, err := parseHTML(page.Body)
	if err != nil {
		return nil, &core.AcquisitionError{
			Source:   core.SourceGenericWeb,
			Attempts: []core.Attempt{{Strategy: "parse-html", Err: err}},
		}
	}

	title := a.pageTitle(doc, u)
	description := metaDescription(doc)
	stripNoise(doc)

	return a.chain.Run(ctx, a.htmlStrategies(doc, title, description))
}

func (a *WebAdapter) htmlStrategies(doc *goquery.Document, title, description string) []Strategy {
	result := func(body string) *core.ExtractedContent {
		return &core.ExtractedContent{Title: title, Body: body}
	}

	return []Strategy{
		{
			Name:      "main-container",
			MinLength: a.minLength,
			Run: func(context.Context) (*core.ExtractedContent, error) {
				for _, sel := range mainContentSelectors {
					container := doc.Find(sel).First()
					if container.Length() == 0 {
						continue
					}
					if text := blockText(container); len([]rune(text)) > a.minLength {
						return result(text), nil
					}
				}
				return nil, errors.New("no main content container found")
			},
		},
		{
			Name:      "paragraphs",
			MinLength: a.minLength,
			Run: func(context.Context) (*core.ExtractedContent, error) {
				var parts []string
				doc.Find("p").Each(func(_ int, p *goquery.Selection) {
					if text := collapseSpace(p.Text()); text != "" {
						parts = append(parts, text)
					}
				})
				return result(strings.Join(parts, "\n\n")), nil
			},
		},
		{
			Name:      "meta-description",
			MinLength: a.minLength,
			Run: func(context.Context) (*core.ExtractedContent, error) {
				return result(description), nil
			},
		},
		{
			Name:      "body-text",
			MinLength: a.minLength,
			Run: func(context.Context) (*core.ExtractedContent, error) {
				return result(collapseSpace(doc.Find("body").Text())), nil
			},
		},
	}
}

func (a *WebAdapter) pdfStrategy(u *url.URL, page *Page) Strategy {
	return Strategy{
		Name:      "pdf-text",
		MinLength: a.minLength,
		Run: func(context.Context) (*core.ExtractedContent, error) {
			text, pages, err := extractPDFText(page.Body)
			if err != nil {
				return nil, err
			}
			title := pdfTitle(text)
			if title == "" {
				title = a.fallbackTitle(u)
			}
			return &core.ExtractedContent{
				Title:    title,
				Body:     text,
				Metadata: map[string]string{"format": "pdf", "pages": strconv.Itoa(pages)},
			}, nil
		},
	}
}

// pageTitle prefers social-preview metadata, then <title>, then the first
// heading, then the URL.
func (a *WebAdapter) pageTitle(doc *goquery.Document, u *url.URL) string {
	if t := ogTitle(doc); t != "" {
		return t
	}
	if t := collapseSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := collapseSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return a.fallbackTitle(u)
}

func (a *WebAdapter) fallbackTitle(u *url.URL) string {
	if seg := a.parser.LastPathSegment(u); seg != "" {
		return seg
	}
	return "Web Page"
}
