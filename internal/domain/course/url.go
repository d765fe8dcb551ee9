package course

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// FallbackURL is the last-resort course URL.
const FallbackURL = "https://www.coursera.org/courses"

// URLSource tags how a course URL was produced.
type URLSource string

const (
	// SourcePassthrough means the model's URL was already on an allowed provider.
	SourcePassthrough URLSource = "passthrough"
	// SourceProviderSearch means a provider search URL was built from the text.
	SourceProviderSearch URLSource = "provider_search"
	// SourceFallback means nothing usable was found; URL is FallbackURL.
	SourceFallback URLSource = "fallback"
)

// URLResult is a normalized course URL with its provenance.
type URLResult struct {
	URL    string
	Source URLSource
}

type provider struct {
	name   string // matched case-insensitively inside free text
	domain string // registrable domain for the allow-list
	search string // search URL template, the term is appended
}

// providers are matched in order; the first one is the default.
var providers = []provider{
	{name: "coursera", domain: "coursera.org", search: "https://www.coursera.org/search?query="},
	{name: "edx", domain: "edx.org", search: "https://www.edx.org/search?q="},
	{name: "udacity", domain: "udacity.com", search: "https://www.udacity.com/course/search?search="},
	{name: "linkedin learning", domain: "linkedin.com", search: "https://www.linkedin.com/learning/search?keywords="},
}

var (
	nonTermChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)

	errEmptyTerm = errors.New("empty search term")
)

// NormalizeURL maps untrusted model output to a URL on a known course provider.
// It is total: every input yields a valid absolute URL.
func NormalizeURL(raw string) URLResult {
	raw = strings.TrimSpace(raw)

	if u, ok := parseAbsolute(raw); ok && allowedHost(u.Hostname()) {
		return URLResult{URL: raw, Source: SourcePassthrough}
	}

	built, err := providerSearchURL(raw)
	if err != nil {
		return URLResult{URL: FallbackURL, Source: SourceFallback}
	}
	return URLResult{URL: built, Source: SourceProviderSearch}
}

func providerSearchURL(raw string) (string, error) {
	lower := strings.ToLower(raw)

	p := providers[0]
	for _, candidate := range providers {
		if strings.Contains(lower, candidate.name) {
			p = candidate
			break
		}
	}

	term := lower
	if p.name == "linkedin learning" {
		term = strings.Replace(term, p.name, "", 1)
	}
	term = nonTermChars.ReplaceAllString(term, "")
	term = whitespace.ReplaceAllString(strings.TrimSpace(term), "+")
	if strings.Trim(term, "+-") == "" {
		return "", errEmptyTerm
	}

	built := p.search + url.QueryEscape(term)
	if _, ok := parseAbsolute(built); !ok {
		return "", errors.New("invalid search url")
	}
	return built, nil
}

// parseAbsolute accepts only absolute http(s) URLs with a host.
func parseAbsolute(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func allowedHost(host string) bool {
	host = strings.ToLower(host)
	for _, p := range providers {
		if host == p.domain || strings.HasSuffix(host, "."+p.domain) {
			return true
		}
	}
	return false
}
