// Package github is the issue-tracker gateway. All operations shell out to
// the gh CLI so authentication, pagination, and API versioning stay gh's
// problem; this package owns argument construction and response decoding.
package github

import (
	"regexp"
	"sort"
)

// Issue is the full record fetched for a single issue.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	Author    Author    `json:"author"`
	Labels    []Label   `json:"labels"`
	Comments  []Comment `json:"comments"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// IssueSummary is the reduced shape returned by open-issue listings.
type IssueSummary struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	Labels    []Label `json:"labels"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Comment is a single issue comment.
type Comment struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	Author    Author `json:"author"`
	CreatedAt string `json:"createdAt"`
}

// Author identifies the user who wrote an issue or comment.
type Author struct {
	Login string `json:"login"`
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

var (
	reHTMLImage     = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)
	reMarkdownImage = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)
)

// ExtractImageURLs scans an issue body for image references, both HTML
// <img src> tags and markdown image syntax. URLs are returned in first-seen
// order with duplicates removed, regardless of which syntax carried them.
// The scan is purely lexical.
func ExtractImageURLs(body string) []string {
	type match struct {
		pos int
		url string
	}

	var matches []match
	for _, re := range []*regexp.Regexp{reHTMLImage, reMarkdownImage} {
		for _, m := range re.FindAllStringSubmatchIndex(body, -1) {
			matches = append(matches, match{pos: m[0], url: body[m[2]:m[3]]})
		}
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].pos < matches[b].pos })

	var urls []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if !seen[m.url] {
			seen[m.url] = true
			urls = append(urls, m.url)
		}
	}
	return urls
}
