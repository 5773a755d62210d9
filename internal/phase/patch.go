package phase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/gitops"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunPatch is the single-phase fast path triggered by a patch keyword:
// branch as a bugfix, author a patch plan from the issue text, implement it,
// commit, and open a PR, skipping the full pipeline.
func RunPatch(ctx context.Context, d *Deps, issueNum int, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec, err = d.Store.Create(adwID, strconv.Itoa(issueNum), state.WorkflowPatch)
		if err != nil {
			return err
		}
	}

	issue, err := d.GitHub.FetchIssue(ctx, issueNum)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to fetch issue", err)
	}

	if err := d.progress(ctx, issueNum, adwID, workflow.AgentPatcher, "✅ Starting patch workflow"); err != nil {
		return err
	}

	// Patches are always treated as bug fixes for branch naming.
	rec.IssueClass = state.ClassBug
	branch, err := d.Git.CreateBranch(ctx, adwID, issueNum, state.ClassBug, issue.Title)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to create branch", err)
	}
	rec.BranchName = branch
	if err := d.Store.Save(rec); err != nil {
		return err
	}

	resp, err := d.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    workflow.AgentPatcher,
		SlashCommand: agent.CmdPatch,
		Args:         []string{workflow.FormatIssueBody(issue.Title, issue.Body)},
		ADWID:        adwID,
	})
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to build patch plan", err)
	}
	if !resp.Success {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to build patch plan",
			fmt.Errorf("%s", resp.Output))
	}

	// The patch plan is inline text, not a file; the marker records where it
	// came from for anyone reading the state file.
	rec.PlanFile = fmt.Sprintf("patch plan from issue #%d", issueNum)
	if err := d.Store.Save(rec); err != nil {
		return err
	}
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentPatcher,
		"✅ Patch plan ready", resp.SessionID); err != nil {
		return err
	}

	if _, err := workflow.Implement(ctx, d.Runner, adwID, workflow.AgentPatcher, resp.Output); err != nil {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to implement patch", err)
	}

	if _, err := d.Git.Commit(ctx, adwID, workflow.AgentPatcher); err != nil {
		if !gitops.NothingToCommit(err.Error()) {
			return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to commit patch", err)
		}
		// A patch that changed nothing still gets its PR attempt.
		d.Logger.Warn("patch produced no changes to commit")
	}

	prURL, err := d.Git.OpenPullRequest(ctx, adwID)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPatcher, "Failed to open pull request", err)
	}
	rec.PRURL = prURL
	if err := d.Store.Advance(rec, state.PhasePR); err != nil {
		return err
	}
	return d.progress(ctx, issueNum, adwID, workflow.AgentPatcher,
		fmt.Sprintf("✅ Patch ready: %s", prURL))
}
