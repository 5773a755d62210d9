package phase

import (
	"context"
	"fmt"

	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunPR pushes the branch and opens the pull request, recording its URL.
// The workflow record is advanced exactly once even though the PR phase is
// both the current phase and the terminal one.
func RunPR(ctx context.Context, d *Deps, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("phase: no state found for %q, run the plan phase first", adwID)
	}

	issueNum := issueNumber(rec)
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentOps, "✅ Opening pull request"); err != nil {
		return err
	}

	prURL, err := d.Git.OpenPullRequest(ctx, adwID)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentOps, "Failed to open pull request", err)
	}

	rec.PRURL = prURL
	if err := d.Store.Advance(rec, state.PhasePR); err != nil {
		return err
	}
	return d.progress(ctx, issueNum, adwID, workflow.AgentOps,
		fmt.Sprintf("✅ Pull request ready: %s", prURL))
}
