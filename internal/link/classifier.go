// Package link decides whether message text is a supported video link.
package link

import (
	"net/url"
	"strings"
)

// DefaultDomains are the hosts accepted when no allow-list is configured.
var DefaultDomains = []string{"twitter.com", "x.com"}

// Classifier checks links against an allow-list of domain substrings.
type Classifier struct {
	domains []string
}

// NewClassifier creates a Classifier. An empty list falls back to DefaultDomains.
func NewClassifier(domains []string) *Classifier {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, DefaultDomains...)
	}
	return &Classifier{domains: cleaned}
}

// IsAcceptable reports whether text parses as a URL whose host contains an allowed domain.
func (c *Classifier) IsAcceptable(text string) bool {
	u, err := url.Parse(text)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, d := range c.domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// IsThread reports whether the link path has a "status" segment followed by a non-empty one,
// e.g. /user/status/12345. Bare /user/status or /i/web/status paths are not threads.
func (c *Classifier) IsThread(text string) bool {
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	segments := strings.Split(u.Path, "/")
	if len(segments) <= 3 {
		return false
	}
	for i, s := range segments {
		if s == "status" && i+1 < len(segments) && segments[i+1] != "" {
			return true
		}
	}
	return false
}
