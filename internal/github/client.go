package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// reRemoteURL matches both remote URL shapes gh and git produce:
// https://github.com/owner/repo(.git) and git@github.com:owner/repo(.git).
var reRemoteURL = regexp.MustCompile(`github\.com[:/]([^/\s]+)/([^/\s]+?)(?:\.git)?$`)

// Client wraps gh CLI operations against one repository. All methods use
// os/exec to call the gh binary, following the same pattern as the git
// client: argument construction here, transport and auth in gh.
type Client struct {
	// Repo is the "owner/repo" identity all operations target.
	Repo string

	// WorkDir is the working directory for gh commands. If empty, commands
	// run in the current directory.
	WorkDir string

	// GhBin is the path to the gh binary. Defaults to "gh".
	GhBin string
}

// NewClient creates a Client bound to the repository identified by the
// local git remote. It verifies gh is installed and authenticated.
func NewClient(ctx context.Context, workDir string) (*Client, error) {
	c := &Client{WorkDir: workDir, GhBin: "gh"}

	if err := c.CheckAuth(ctx); err != nil {
		return nil, err
	}

	repo, err := ResolveRepo(ctx, workDir)
	if err != nil {
		return nil, err
	}
	c.Repo = repo
	return c, nil
}

// CheckAuth verifies the gh CLI is installed and holds valid credentials.
func (c *Client) CheckAuth(ctx context.Context) error {
	bin := c.GhBin
	if bin == "" {
		bin = "gh"
	}
	cmd := exec.CommandContext(ctx, bin, "auth", "status")
	cmd.Dir = c.WorkDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("github: gh auth status: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// ResolveRepo derives "owner/repo" from the origin remote URL. Both HTTPS
// and SSH remote shapes are supported.
func ResolveRepo(ctx context.Context, workDir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = workDir

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("github: reading origin remote: %w", err)
	}

	remote := strings.TrimSpace(string(out))
	m := reRemoteURL.FindStringSubmatch(remote)
	if m == nil {
		return "", fmt.Errorf("github: remote %q is not a github URL", remote)
	}
	return m[1] + "/" + m[2], nil
}

// FetchIssue retrieves the full issue record including comments and labels.
func (c *Client) FetchIssue(ctx context.Context, number int) (*Issue, error) {
	out, err := c.run(ctx, "issue", "view", strconv.Itoa(number),
		"--repo", c.Repo,
		"--json", "number,title,body,state,author,labels,comments,createdAt,updatedAt",
	)
	if err != nil {
		return nil, fmt.Errorf("github: fetching issue #%d: %w", number, err)
	}

	var issue Issue
	if err := json.Unmarshal([]byte(out), &issue); err != nil {
		return nil, fmt.Errorf("github: decoding issue #%d: %w", number, err)
	}
	return &issue, nil
}

// ImageURLs returns the deduplicated image references found in the issue body.
func (i *Issue) ImageURLs() []string {
	return ExtractImageURLs(i.Body)
}

// ListOpenIssues returns all open issues in summary form.
func (c *Client) ListOpenIssues(ctx context.Context) ([]IssueSummary, error) {
	out, err := c.run(ctx, "issue", "list",
		"--repo", c.Repo,
		"--state", "open",
		"--json", "number,title,body,labels,createdAt,updatedAt",
		"--limit", "100",
	)
	if err != nil {
		return nil, fmt.Errorf("github: listing open issues: %w", err)
	}

	var issues []IssueSummary
	if err := json.Unmarshal([]byte(out), &issues); err != nil {
		return nil, fmt.Errorf("github: decoding issue list: %w", err)
	}
	return issues, nil
}

// FetchIssueComments returns the issue's comments sorted by creation time
// ascending, oldest first.
func (c *Client) FetchIssueComments(ctx context.Context, number int) ([]Comment, error) {
	out, err := c.run(ctx, "issue", "view", strconv.Itoa(number),
		"--repo", c.Repo,
		"--json", "comments",
	)
	if err != nil {
		return nil, fmt.Errorf("github: fetching comments for #%d: %w", number, err)
	}

	var wrapper struct {
		Comments []Comment `json:"comments"`
	}
	if err := json.Unmarshal([]byte(out), &wrapper); err != nil {
		return nil, fmt.Errorf("github: decoding comments for #%d: %w", number, err)
	}

	comments := wrapper.Comments
	sort.SliceStable(comments, func(a, b int) bool {
		return comments[a].CreatedAt < comments[b].CreatedAt
	})
	return comments, nil
}

// PostComment adds a comment to the issue. Callers treat failure as fatal:
// the comment trail is the system's user-visible audit log.
func (c *Client) PostComment(ctx context.Context, number int, body string) error {
	_, err := c.run(ctx, "issue", "comment", strconv.Itoa(number),
		"--repo", c.Repo,
		"--body", body,
	)
	if err != nil {
		return fmt.Errorf("github: commenting on #%d: %w", number, err)
	}
	return nil
}

// MarkInProgress labels the issue as picked up and assigns it to the
// authenticated user. Failure is non-fatal for callers; both edits are
// advisory. Assignment failure is swallowed entirely because repos without
// the calling account as a collaborator reject it routinely.
func (c *Client) MarkInProgress(ctx context.Context, number int) error {
	_, err := c.run(ctx, "issue", "edit", strconv.Itoa(number),
		"--repo", c.Repo,
		"--add-label", "in_progress",
	)

	// Best effort regardless of the label outcome.
	c.run(ctx, "issue", "edit", strconv.Itoa(number), //nolint:errcheck
		"--repo", c.Repo,
		"--add-assignee", "@me",
	)

	if err != nil {
		return fmt.Errorf("github: labelling #%d in_progress: %w", number, err)
	}
	return nil
}

// DefaultBranch returns the repository's default branch name.
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "repo", "view", c.Repo,
		"--json", "defaultBranchRef",
		"--jq", ".defaultBranchRef.name",
	)
	if err != nil {
		return "", fmt.Errorf("github: resolving default branch: %w", err)
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", fmt.Errorf("github: repository %s has no default branch", c.Repo)
	}
	return branch, nil
}

// run executes a gh command and returns trimmed stdout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	bin := c.GhBin
	if bin == "" {
		bin = "gh"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = c.WorkDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(stderrBuf.String())
		if stderr != "" {
			return "", fmt.Errorf("%s: %w", stderr, err)
		}
		return "", err
	}
	return strings.TrimSpace(stdoutBuf.String()), nil
}
