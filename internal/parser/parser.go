package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"brevity/internal/core"
)

// schemeRegex matches an explicit scheme such as "https://" or "ftp://".
var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// clickIDs are query keys added by ad and social platforms. Keys that the
// source adapters read (v, i, si, t) never appear here.
var clickIDs = map[string]bool{
	"fbclid": true, "gclid": true, "msclkid": true, "dclid": true, "yclid": true,
	"mc_eid": true, "igshid": true,
}

func isTrackingKey(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || clickIDs[k]
}

// Parser validates and normalizes content reference URLs
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// EnsureScheme prefixes https:// when the input has no scheme.
func (p *Parser) EnsureScheme(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" || schemeRegex.MatchString(trimmed) {
		return trimmed
	}
	return "https://" + strings.TrimPrefix(trimmed, "//")
}

// ValidateURL checks that a URL is absolute http(s) with a host
func (p *Parser) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (must be http or https)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL missing host")
	}
	if strings.ContainsAny(parsed.Host, " \t") {
		return fmt.Errorf("URL host contains whitespace")
	}

	return nil
}

// ParseReference adds a missing scheme, validates the result and returns
// the parsed URL. Failures match core.ErrInvalidReference.
func (p *Parser) ParseReference(rawURL string) (*url.URL, error) {
	candidate := p.EnsureScheme(rawURL)
	if err := p.ValidateURL(candidate); err != nil {
		return nil, &core.InvalidReferenceError{Reason: err.Error(), Input: rawURL}
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return nil, &core.InvalidReferenceError{Reason: err.Error(), Input: rawURL}
	}
	return parsed, nil
}

// CanonicalURL returns the form of a reference URL that is stored with a
// result: scheme added when missing, scheme and host lower-cased, default
// port dropped, tracking keys and fragment removed and a trailing slash
// trimmed from non-root paths. Input that does not parse is returned
// trimmed and otherwise unchanged.
func (p *Parser) CanonicalURL(rawURL string) string {
	u, err := url.Parse(p.EnsureScheme(rawURL))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if isTrackingKey(key) {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}

// LastPathSegment returns the final non-empty path element, unescaped.
func (p *Parser) LastPathSegment(u *url.URL) string {
	if u == nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if unescaped, err := url.PathUnescape(last); err == nil {
		return unescaped
	}
	return last
}
