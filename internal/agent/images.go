package agent

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const imageDownloadTimeout = 30 * time.Second

// DownloadIssueImages fetches issue attachment images into
// agents/<adw-id>/images/ and returns their local paths in input order.
// Each URL is first fetched over plain HTTP; GitHub user-content URLs that
// require authentication fall back to gh's API client. URLs that fail both
// ways are skipped with a warning rather than failing the workflow.
func DownloadIssueImages(agentsDir, adwID string, urls []string, logger *log.Logger) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = log.WithPrefix("agent")
	}

	dir := filepath.Join(agentsDir, adwID, "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("agent: creating images directory %q: %w", dir, err)
	}

	client := &http.Client{Timeout: imageDownloadTimeout}

	var paths []string
	for i, rawURL := range urls {
		dest := filepath.Join(dir, fmt.Sprintf("issue_image_%d%s", i+1, imageExt(rawURL)))

		if err := downloadDirect(client, rawURL, dest); err != nil {
			logger.Debug("direct image download failed, trying gh api", "url", rawURL, "error", err)
			if err := downloadViaGH(rawURL, dest); err != nil {
				logger.Warn("skipping undownloadable image", "url", rawURL, "error", err)
				continue
			}
		}
		logger.Debug("downloaded issue image", "url", rawURL, "path", dest)
		paths = append(paths, dest)
	}
	return paths, nil
}

func downloadDirect(client *http.Client, rawURL, dest string) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("agent: building image request: %w", err)
	}
	req.Header.Set("User-Agent", "adw-image-fetch")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("agent: fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent: fetching image: unexpected status %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("agent: creating image file %q: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("agent: writing image file %q: %w", dest, err)
	}
	return nil
}

// downloadViaGH fetches an authenticated GitHub asset with gh, which attaches
// the caller's token. gh writes the response body to stdout.
func downloadViaGH(rawURL, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("agent: creating image file %q: %w", dest, err)
	}
	defer f.Close()

	cmd := exec.Command("gh", "api", rawURL)
	cmd.Stdout = f
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("agent: gh api %q: %s: %w", rawURL, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// imageExt extracts a usable file extension from the URL path, defaulting
// to .png when the URL carries none.
func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".png"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp":
		return ext
	}
	return ".png"
}
