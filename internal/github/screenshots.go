package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// screenshotBranch is the dedicated branch holding uploaded review
// screenshots, kept out of the working branches entirely.
const screenshotBranch = "screenshots"

// UploadScreenshot stores a local image on the screenshots branch at
// screenshots/issue-<number>/<filename> via the contents API and returns its
// download URL. If the branch does not exist yet, it is created from the
// default branch head and the upload is retried once.
func (c *Client) UploadScreenshot(ctx context.Context, number int, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("github: reading screenshot %q: %w", path, err)
	}

	repoPath := fmt.Sprintf("screenshots/issue-%d/%s", number, filepath.Base(path))

	url, err := c.putContents(ctx, repoPath, data, number)
	if err == nil {
		return url, nil
	}
	if !strings.Contains(err.Error(), "Branch") && !strings.Contains(err.Error(), "404") {
		return "", err
	}

	if err := c.ensureScreenshotBranch(ctx); err != nil {
		return "", err
	}
	return c.putContents(ctx, repoPath, data, number)
}

// putContents issues one contents-API PUT for the given repository path.
func (c *Client) putContents(ctx context.Context, repoPath string, data []byte, number int) (string, error) {
	out, err := c.run(ctx, "api",
		"--method", "PUT",
		fmt.Sprintf("repos/%s/contents/%s", c.Repo, repoPath),
		"-f", fmt.Sprintf("message=Add screenshot for issue #%d", number),
		"-f", "content="+base64.StdEncoding.EncodeToString(data),
		"-f", "branch="+screenshotBranch,
	)
	if err != nil {
		return "", fmt.Errorf("github: uploading %q: %w", repoPath, err)
	}

	var resp struct {
		Content struct {
			DownloadURL string `json:"download_url"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return "", fmt.Errorf("github: decoding upload response: %w", err)
	}
	if resp.Content.DownloadURL == "" {
		return "", fmt.Errorf("github: upload of %q returned no download URL", repoPath)
	}
	return resp.Content.DownloadURL, nil
}

// ensureScreenshotBranch creates the screenshots branch from the default
// branch head. Racing creators are tolerated: an already-exists error is
// treated as success.
func (c *Client) ensureScreenshotBranch(ctx context.Context) error {
	defaultBranch, err := c.DefaultBranch(ctx)
	if err != nil {
		return err
	}

	sha, err := c.run(ctx, "api",
		fmt.Sprintf("repos/%s/git/ref/heads/%s", c.Repo, defaultBranch),
		"--jq", ".object.sha",
	)
	if err != nil {
		return fmt.Errorf("github: reading %s head: %w", defaultBranch, err)
	}

	_, err = c.run(ctx, "api",
		"--method", "POST",
		fmt.Sprintf("repos/%s/git/refs", c.Repo),
		"-f", "ref=refs/heads/"+screenshotBranch,
		"-f", "sha="+strings.TrimSpace(sha),
	)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("github: creating %s branch: %w", screenshotBranch, err)
	}
	return nil
}

// PostReviewCommentWithScreenshots posts a review comment with each
// successfully-uploaded screenshot embedded as a markdown image under a
// "### Screenshots" heading. Upload failures degrade to a body-only comment.
func (c *Client) PostReviewCommentWithScreenshots(ctx context.Context, number int, body string, paths []string, logger *log.Logger) error {
	if logger == nil {
		logger = log.WithPrefix("github")
	}

	var urls []string
	for _, p := range paths {
		url, err := c.UploadScreenshot(ctx, number, p)
		if err != nil {
			logger.Warn("screenshot upload failed", "path", p, "error", err)
			continue
		}
		urls = append(urls, url)
	}

	if len(urls) > 0 {
		var sb strings.Builder
		sb.WriteString(body)
		sb.WriteString("\n\n### Screenshots\n")
		for _, u := range urls {
			fmt.Fprintf(&sb, "\n![screenshot](%s)\n", u)
		}
		body = sb.String()
	}

	return c.PostComment(ctx, number, body)
}
