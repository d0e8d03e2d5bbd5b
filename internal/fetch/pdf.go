package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText returns the plain text of every readable page.
func extractPDFText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return cleanPDFText(textBuilder.String()), pageCount, nil
}

// cleanPDFText drops empty and very short lines, which are mostly page
// numbers and layout noise.
func cleanPDFText(rawText string) string {
	var cleanLines []string
	for _, line := range strings.Split(rawText, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 2 {
			cleanLines = append(cleanLines, trimmed)
		}
	}
	return strings.TrimSpace(strings.Join(cleanLines, "\n"))
}

// pdfTitle picks the first line that looks like a heading.
func pdfTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 10 || len(trimmed) >= 200 || strings.Contains(trimmed, "http") {
			continue
		}
		if len(trimmed) < 50 || !isAllUpperCase(trimmed) {
			return trimmed
		}
	}
	return ""
}

func isAllUpperCase(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}
