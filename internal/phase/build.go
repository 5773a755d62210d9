package phase

import (
	"context"
	"fmt"

	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunBuild implements the recorded plan and commits the result. Requires an
// existing record with a plan file; advances to the test phase.
func RunBuild(ctx context.Context, d *Deps, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("phase: no state found for %q, run the plan phase first", adwID)
	}
	if rec.PlanFile == "" {
		return d.fail(ctx, rec, workflow.AgentImplementor, "Cannot build",
			fmt.Errorf("phase: no plan file recorded for %q", adwID))
	}

	issueNum := issueNumber(rec)
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentImplementor, "✅ Starting build phase"); err != nil {
		return err
	}

	resp, err := workflow.Implement(ctx, d.Runner, adwID, workflow.AgentImplementor, rec.PlanFile)
	if err != nil {
		return d.fail(ctx, rec, workflow.AgentImplementor, "Failed to implement plan", err)
	}
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentImplementor,
		"✅ Implementation complete", resp.SessionID); err != nil {
		return err
	}

	if _, err := d.Git.Commit(ctx, adwID, workflow.AgentImplementor); err != nil {
		return d.fail(ctx, rec, workflow.AgentImplementor, "Failed to commit implementation", err)
	}

	if err := d.Store.Advance(rec, state.PhaseTest); err != nil {
		return err
	}
	return d.progress(ctx, issueNum, adwID, workflow.AgentImplementor, "✅ Build phase complete")
}
