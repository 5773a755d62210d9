package phase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunPlan is the first phase unit: classify the issue, create a working
// branch, download any referenced images, author the plan, locate the plan
// file, and commit it. On success the record advances to the build phase.
//
// RunPlan creates the workflow record when none exists, so it is the only
// phase runnable against a fresh adw id.
func RunPlan(ctx context.Context, d *Deps, issueNum int, adwID string, wf state.Workflow) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec, err = d.Store.Create(adwID, strconv.Itoa(issueNum), wf)
		if err != nil {
			return err
		}
	}

	issue, err := d.GitHub.FetchIssue(ctx, issueNum)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPlanner, "Failed to fetch issue", err)
	}

	if err := d.GitHub.MarkInProgress(ctx, issueNum); err != nil {
		// The label is advisory only.
		d.Logger.Warn("marking issue in progress", "error", err)
	}

	if err := d.progress(ctx, issueNum, adwID, workflow.AgentPlanner, "✅ Starting plan phase"); err != nil {
		return err
	}

	class, sessionID, err := workflow.Classify(ctx, d.Runner, adwID, issue)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentClassifier, "Failed to classify issue", err)
	}
	rec.IssueClass = class
	if err := d.Store.Advance(rec, state.PhaseBranch); err != nil {
		return err
	}
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentClassifier,
		fmt.Sprintf("✅ Issue classified as %s", class), sessionID); err != nil {
		return err
	}

	branch, err := d.Git.CreateBranch(ctx, adwID, issueNum, class, issue.Title)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPlanner, "Failed to create branch", err)
	}
	rec.BranchName = branch
	if err := d.Store.Advance(rec, state.PhasePlan); err != nil {
		return err
	}
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentPlanner,
		fmt.Sprintf("✅ Working on branch `%s`", branch)); err != nil {
		return err
	}

	imagePaths, err := agent.DownloadIssueImages(d.Config.Paths.AgentsDir, adwID, issue.ImageURLs(), d.Logger)
	if err != nil {
		// Plans degrade gracefully without images.
		d.Logger.Warn("downloading issue images", "error", err)
	}

	planResp, err := workflow.BuildPlan(ctx, d.Runner, adwID, issue, class, imagePaths)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPlanner, "Failed to build plan", err)
	}

	planFile, err := workflow.FindPlanFile(ctx, d.Runner, adwID, planResp.Output)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentPlanner, "Failed to locate plan file", err)
	}
	rec.PlanFile = planFile
	if err := d.Store.Save(rec); err != nil {
		return err
	}
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentPlanner,
		fmt.Sprintf("✅ Plan written to `%s`", planFile), planResp.SessionID); err != nil {
		return err
	}

	if _, err := d.Git.Commit(ctx, adwID, workflow.AgentPlanner); err != nil {
		return d.fail(ctx, rec, workflow.AgentPlanner, "Failed to commit plan", err)
	}

	if err := d.Store.Advance(rec, state.PhaseBuild); err != nil {
		return err
	}
	return d.progress(ctx, issueNum, adwID, workflow.AgentPlanner, "✅ Plan phase complete")
}
