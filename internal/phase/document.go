package phase

import (
	"context"
	"fmt"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/jsonutil"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunDocument generates documentation for the implemented plan. Any failure
// in this phase is a warning: the workflow advances to the PR phase
// regardless, documentation being nice-to-have rather than gating.
func RunDocument(ctx context.Context, d *Deps, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("phase: no state found for %q, run the plan phase first", adwID)
	}

	issueNum := issueNumber(rec)
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentDocumenter, "✅ Starting document phase"); err != nil {
		return err
	}

	resp, err := d.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
		AgentName:    workflow.AgentDocumenter,
		SlashCommand: agent.CmdDocument,
		Args:         []string{rec.PlanFile},
		ADWID:        adwID,
	})

	switch {
	case err != nil:
		d.Logger.Warn("documentation run failed", "error", err)
	case !resp.Success:
		d.Logger.Warn("documentation run reported an error", "output", resp.Output)
	default:
		var doc state.DocumentationResult
		if perr := jsonutil.ExtractInto(resp.Output, &doc); perr != nil {
			d.Logger.Warn("parsing documentation result", "error", perr)
		} else {
			rec.Documentation = &doc
			if err := d.progress(ctx, issueNum, adwID, workflow.AgentDocumenter,
				fmt.Sprintf("✅ Documentation updated (%d files)", len(doc.FilesCreated)), resp.SessionID); err != nil {
				return err
			}
			if _, err := d.Git.Commit(ctx, adwID, workflow.AgentDocumenter); err != nil {
				d.Logger.Warn("committing documentation", "error", err)
			}
		}
	}

	if err := d.Store.Advance(rec, state.PhasePR); err != nil {
		return err
	}
	return d.progress(ctx, issueNum, adwID, workflow.AgentDocumenter, "✅ Document phase complete")
}
