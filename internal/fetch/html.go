package fetch

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector lists elements that never carry article text.
const noiseSelector = "script, style, noscript, iframe, nav, footer, header, aside, svg, form"

// blockSelector lists text-bearing block elements inside a container.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n+`)
)

func parseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// metaContent returns the first non-empty content attribute among the
// given meta selectors.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func ogTitle(doc *goquery.Document) string {
	return metaContent(doc, `meta[property="og:title"]`, `meta[name="twitter:title"]`)
}

func metaDescription(doc *goquery.Document) string {
	return metaContent(doc, `meta[property="og:description"]`, `meta[name="description"]`, `meta[name="twitter:description"]`)
}

func stripNoise(doc *goquery.Document) {
	doc.Find(noiseSelector).Remove()
}

// blockText joins the block elements of s with blank lines. Containers
// without block children fall back to their flat text.
func blockText(s *goquery.Selection) string {
	var parts []string
	s.Find(blockSelector).Each(func(_ int, item *goquery.Selection) {
		if item.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if text := collapseSpace(item.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return collapseSpace(s.Text())
	}
	return strings.Join(parts, "\n\n")
}

// collapseSpace squeezes horizontal whitespace and blank-line runs.
func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(joined, "\n\n"))
}
