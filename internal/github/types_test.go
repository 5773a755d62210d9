package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ---- ExtractImageURLs tests -------------------------------------------------

func TestExtractImageURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "html img tag",
			body: `before <img src="https://x/y.png"> after`,
			want: []string{"https://x/y.png"},
		},
		{
			name: "markdown image",
			body: `![screenshot](https://x/y.png)`,
			want: []string{"https://x/y.png"},
		},
		{
			name: "same url in both syntaxes deduplicates",
			body: `<img src="https://x/y.png"> and ![alt](https://x/y.png)`,
			want: []string{"https://x/y.png"},
		},
		{
			name: "first seen order preserved across syntaxes",
			body: "<img src='https://a/1.png'>\n![two](https://b/2.png)\n<img src=\"https://c/3.png\">",
			want: []string{"https://a/1.png", "https://b/2.png", "https://c/3.png"},
		},
		{
			name: "markdown link without bang is not an image",
			body: `[readme](https://x/readme.md)`,
			want: nil,
		},
		{
			name: "empty body",
			body: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractImageURLs(tt.body))
		})
	}
}

// ---- remote URL parsing tests -----------------------------------------------

func TestRemoteURLRegex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		remote string
		owner  string
		repo   string
	}{
		{"https://github.com/acme/widgets.git", "acme", "widgets"},
		{"https://github.com/acme/widgets", "acme", "widgets"},
		{"git@github.com:acme/widgets.git", "acme", "widgets"},
		{"git@github.com:acme/widgets", "acme", "widgets"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.remote, func(t *testing.T) {
			t.Parallel()
			m := reRemoteURL.FindStringSubmatch(tt.remote)
			assert.NotNil(t, m)
			assert.Equal(t, tt.owner, m[1])
			assert.Equal(t, tt.repo, m[2])
		})
	}
}
