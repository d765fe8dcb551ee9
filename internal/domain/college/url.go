package college

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kailas-cloud/pathwise/internal/domain"
	"github.com/kailas-cloud/pathwise/internal/domain/reply"
)

// URLCriteria is a college website lookup request.
type URLCriteria struct {
	CollegeName string `json:"collegeName"`
	Location    string `json:"location"`
}

// Validate checks both fields are present.
func (c URLCriteria) Validate() error {
	if strings.TrimSpace(c.CollegeName) == "" {
		return domain.NewValidationError("collegeName", "collegeName is required")
	}
	if strings.TrimSpace(c.Location) == "" {
		return domain.NewValidationError("location", "location is required")
	}
	return nil
}

// ParseURLReply extracts the website from a plain-text lookup reply.
// A reply that is not an absolute http(s) URL is domain.ErrInvalidValue.
func ParseURLReply(raw string) (string, error) {
	text := strings.TrimSpace(reply.StripCodeFences(strings.TrimSpace(raw)))
	text = strings.Trim(text, "<>\"'`")
	if _, ok := absoluteURL(text); !ok {
		return "", fmt.Errorf("lookup reply is not a URL: %w", domain.ErrInvalidValue)
	}
	return text, nil
}

// NormalizeWebsite keeps valid http(s) URLs, upgrades bare domains to https,
// and drops anything else.
func NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, ok := absoluteURL(raw); ok {
		return raw
	}
	if !strings.Contains(raw, "://") && !strings.ContainsAny(raw, " \t") && strings.Contains(raw, ".") {
		candidate := "https://" + raw
		if _, ok := absoluteURL(candidate); ok {
			return candidate
		}
	}
	return ""
}

func absoluteURL(raw string) (*url.URL, bool) {
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return nil, false
	}
	return u, true
}
