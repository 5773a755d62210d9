package trigger

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/phase"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// IssueSource is the tracker surface the poller needs. *github.Client
// satisfies it.
type IssueSource interface {
	ListOpenIssues(ctx context.Context) ([]github.IssueSummary, error)
	FetchIssueComments(ctx context.Context, number int) ([]github.Comment, error)
}

// Poller periodically scans open issues and triggers workflows: new issues
// with no comments get the default pipeline, and fresh keyword comments get
// the routed one. Workflows run to completion inside the triggering cycle;
// the poller deliberately serialises everything it starts.
type Poller struct {
	cfg        *config.Config
	gh         IssueSource
	logger     *log.Logger
	executable string

	processed    map[int]bool
	lastComments map[int]string
	shuttingDown atomic.Bool
}

// NewPoller creates a poller. The executable is re-invoked with composite
// subcommands, the same contract as the webhook receiver.
func NewPoller(cfg *config.Config, gh IssueSource, executable string, logger *log.Logger) *Poller {
	return &Poller{
		cfg:          cfg,
		gh:           gh,
		logger:       logger,
		executable:   executable,
		processed:    make(map[int]bool),
		lastComments: make(map[int]string),
	}
}

// Shutdown requests a graceful stop. The current cycle finishes first; a
// workflow already spawned is never interrupted.
func (p *Poller) Shutdown() {
	p.shuttingDown.Store(true)
}

// Run executes poll cycles until the context is cancelled or Shutdown is
// called. Context cancellation is honored only between cycles.
func (p *Poller) Run(ctx context.Context) error {
	interval := time.Duration(p.cfg.Trigger.PollIntervalSeconds) * time.Second
	p.logger.Info("poller started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if p.shuttingDown.Load() {
			p.logger.Info("poller shutting down")
			return nil
		}

		p.cycle(ctx)

		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
}

// cycle runs one scan over the open issues.
func (p *Poller) cycle(ctx context.Context) {
	issues, err := p.gh.ListOpenIssues(ctx)
	if err != nil {
		p.logger.Warn("listing open issues", "error", err)
		return
	}

	for _, issue := range issues {
		if p.shuttingDown.Load() {
			return
		}
		if wf, ok := p.decide(ctx, issue); ok {
			p.launch(issue.Number, wf)
		}
	}
}

// decide inspects one issue and picks a workflow, or nothing. Unprocessed
// issues with zero comments take the new-issue path; otherwise the latest
// comment triggers only when its id is new and its body carries a keyword.
func (p *Poller) decide(ctx context.Context, issue github.IssueSummary) (state.Workflow, bool) {
	comments, err := p.gh.FetchIssueComments(ctx, issue.Number)
	if err != nil {
		p.logger.Warn("fetching comments", "issue", issue.Number, "error", err)
		return "", false
	}

	if len(comments) == 0 {
		if p.processed[issue.Number] {
			return "", false
		}
		return state.WorkflowPlanBuild, true
	}

	latest := comments[len(comments)-1]
	if p.lastComments[issue.Number] == latest.ID {
		return "", false
	}

	wf, ok := RouteComment(latest.Body)
	if !ok {
		// Remember the comment so non-keyword chatter is not re-inspected
		// every cycle.
		p.lastComments[issue.Number] = latest.ID
		return "", false
	}

	p.lastComments[issue.Number] = latest.ID
	return wf, true
}

// launch runs the workflow to completion. The issue is marked processed
// only when the pipeline exits cleanly, so a failed run is retried on the
// next cycle. The pipeline runs under a background context: once a workflow
// starts it is never cancelled mid-flight.
func (p *Poller) launch(issueNumber int, wf state.Workflow) {
	adwID := state.NewID()
	p.logger.Info("triggering workflow", "issue", issueNumber, "workflow", wf, "adw_id", adwID)

	// The record carries the routed workflow kind; without it the first
	// phase would fall back to its standalone default.
	store := state.NewStore(p.cfg.Paths.AgentsDir)
	if _, err := store.Create(adwID, strconv.Itoa(issueNumber), wf); err != nil {
		p.logger.Error("creating workflow record", "issue", issueNumber, "adw_id", adwID, "error", err)
		return
	}

	if err := phase.RunPipeline(context.Background(), p.executable, wf, issueNumber, adwID, p.logger); err != nil {
		// The issue stays unprocessed so the next cycle retries it.
		// Comment-triggered issues do not re-fire; lastComments already
		// holds the triggering comment id.
		p.logger.Error("workflow failed, will retry next cycle", "issue", issueNumber, "adw_id", adwID, "error", err)
		return
	}

	p.processed[issueNumber] = true
	p.logger.Info("workflow finished", "issue", issueNumber, "adw_id", adwID)
}
