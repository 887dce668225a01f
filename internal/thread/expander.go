// Package thread turns a thread link into the ordered list of post links it contains.
package thread

import (
	"context"
	"net/url"
	"strings"
)

// Expander defines the interface for expanding a thread link.
type Expander interface {
	// Expand returns the thread's item links in thread order.
	// A successful result is never empty.
	Expand(ctx context.Context, link string) ([]string, error)
}

// Single treats every thread as containing only the linked post.
type Single struct{}

// Expand returns link unchanged as a one element list.
func (Single) Expand(_ context.Context, link string) ([]string, error) {
	return []string{link}, nil
}

// collectThreadLinks keeps the status links written by the origin's author, in the order
// they were found, with origin first and duplicates dropped.
func collectThreadLinks(origin string, hrefs []string) []string {
	base, err := url.Parse(origin)
	if err != nil {
		return []string{origin}
	}
	author, originID, ok := statusParts(base)
	if !ok {
		return []string{origin}
	}

	links := []string{origin}
	seen := map[string]bool{originID: true}
	for _, href := range hrefs {
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		u := base.ResolveReference(ref)
		if !strings.EqualFold(u.Host, base.Host) {
			continue
		}
		user, id, ok := statusParts(u)
		if !ok || !strings.EqualFold(user, author) || seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, base.Scheme+"://"+base.Host+"/"+user+"/status/"+id)
	}
	return links
}

// statusParts extracts author and numeric post id from a /<user>/status/<id> path.
func statusParts(u *url.URL) (user, id string, ok bool) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 || segments[1] != "status" || segments[0] == "" {
		return "", "", false
	}
	id = segments[2]
	if id == "" {
		return "", "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return segments[0], id, true
}
