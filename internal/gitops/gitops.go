// Package gitops is the VCS gateway. Branch naming, commit-message
// authoring, and PR narrative are cognitive tasks, so each operation runs a
// dedicated agent template and returns its trimmed text output; the agent
// itself performs the underlying git and gh commands.
package gitops

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// Ops drives git operations through the agent runner.
type Ops struct {
	Runner *agent.Runner
}

// CreateBranch asks the agent to name and create a branch for the issue,
// returning the branch name it chose.
func (o *Ops) CreateBranch(ctx context.Context, adwID string, issueNumber int, class state.IssueClass, issueTitle string) (string, error) {
	resp, err := o.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    "branch_generator",
		SlashCommand: agent.CmdGenerateBranchName,
		Args:         []string{strconv.Itoa(issueNumber), string(class), issueTitle},
		ADWID:        adwID,
	})
	if err != nil {
		return "", fmt.Errorf("gitops: creating branch: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("gitops: creating branch: %s", resp.Output)
	}

	branch := strings.TrimSpace(resp.Output)
	if branch == "" {
		return "", fmt.Errorf("gitops: agent returned empty branch name")
	}
	return branch, nil
}

// Commit asks the agent to stage and commit the working tree with an
// authored message, returning the commit message. When there is nothing to
// commit the agent reports that in its output; callers decide whether an
// empty commit is fatal for their phase.
func (o *Ops) Commit(ctx context.Context, adwID, authorAgentName string) (string, error) {
	resp, err := o.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    authorAgentName,
		SlashCommand: agent.CmdCommit,
		Args:         []string{authorAgentName, adwID},
		ADWID:        adwID,
	})
	if err != nil {
		return "", fmt.Errorf("gitops: committing: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("gitops: committing: %s", resp.Output)
	}
	return strings.TrimSpace(resp.Output), nil
}

// OpenPullRequest asks the agent to push the branch and open a PR,
// returning the PR URL.
func (o *Ops) OpenPullRequest(ctx context.Context, adwID string) (string, error) {
	resp, err := o.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    "pr_creator",
		SlashCommand: agent.CmdPullRequest,
		Args:         []string{adwID},
		ADWID:        adwID,
	})
	if err != nil {
		return "", fmt.Errorf("gitops: opening pull request: %w", err)
	}
	if !resp.Success {
		return "", fmt.Errorf("gitops: opening pull request: %s", resp.Output)
	}

	url := strings.TrimSpace(resp.Output)
	if url == "" {
		return "", fmt.Errorf("gitops: agent returned empty pull request URL")
	}
	return url, nil
}

// NothingToCommit reports whether a commit error or commit output indicates
// an empty working tree rather than a real failure.
func NothingToCommit(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "nothing to commit") ||
		strings.Contains(lower, "no changes") ||
		strings.Contains(lower, "working tree clean")
}
