// Package phase implements the workflow phase units and the pipeline
// executor that chains them. Each phase unit is runnable both in-process
// and as its own CLI subcommand; the pipeline executor always uses the
// subprocess form so every phase remains independently re-runnable.
package phase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/gitops"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// Deps carries the collaborators every phase unit needs. Construct once per
// process via Wire.
type Deps struct {
	Config *config.Config
	Logger *log.Logger
	Runner *agent.Runner
	GitHub *github.Client
	Git    *gitops.Ops
	Store  *state.Store
}

// Wire builds the dependency set from configuration. It verifies the agent
// CLI and gh are usable before any phase work starts.
func Wire(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Deps, error) {
	runner := agent.NewRunner(cfg.Agent.Command, cfg.Paths.AgentsDir, logger)
	runner.GitHubPAT = cfg.GitHub.PAT
	runner.StrongModel = cfg.Agent.StrongModel
	runner.FastModel = cfg.Agent.FastModel

	if err := runner.CheckInstalled(ctx); err != nil {
		return nil, err
	}

	gh, err := github.NewClient(ctx, "")
	if err != nil {
		return nil, err
	}

	return &Deps{
		Config: cfg,
		Logger: logger,
		Runner: runner,
		GitHub: gh,
		Git:    &gitops.Ops{Runner: runner},
		Store:  state.NewStore(cfg.Paths.AgentsDir),
	}, nil
}

// progress posts a "<adw-id>_<agent>: <message>" comment. Comment posting is
// the audit trail, so failure is fatal to the phase.
func (d *Deps) progress(ctx context.Context, issueNumber int, adwID, agentName, message string, sessionID ...string) error {
	body := workflow.FormatIssueMessage(adwID, agentName, message, sessionID...)
	if err := d.GitHub.PostComment(ctx, issueNumber, body); err != nil {
		return err
	}
	d.Logger.Info(message, "adw_id", adwID, "agent", agentName)
	return nil
}

// fail records the error in state, posts the uniform ❌ comment, and returns
// an error carrying the original detail for the process exit path.
func (d *Deps) fail(ctx context.Context, rec *state.Record, agentName, prefix string, cause error) error {
	if rec != nil {
		if err := d.Store.MarkError(rec, cause.Error()); err != nil {
			d.Logger.Error("recording workflow error", "error", err)
		}
	}

	msg := fmt.Sprintf("❌ %s: %v", prefix, cause)
	if rec != nil {
		body := workflow.FormatIssueMessage(rec.ADWID, agentName, msg)
		if err := d.GitHub.PostComment(ctx, issueNumber(rec), body); err != nil {
			d.Logger.Error("posting failure comment", "error", err)
		}
	}

	d.Logger.Error(prefix, "error", cause)
	return fmt.Errorf("%s: %w", prefix, cause)
}

// issueNumber parses the record's issue number. Records are only ever
// created from parsed CLI or webhook integers, so a malformed value means a
// hand-edited state file; zero keeps the failure visible without panicking.
func issueNumber(rec *state.Record) int {
	n, err := strconv.Atoi(rec.IssueNumber)
	if err != nil {
		return 0
	}
	return n
}
