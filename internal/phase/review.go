package phase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/jsonutil"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunReview reviews the implementation in a bounded retry loop. Screenshots
// are captured once before the loop and merged into every attempt; blockers
// found on a non-final attempt are fed back to the implementor before the
// next review.
func RunReview(ctx context.Context, d *Deps, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("phase: no state found for %q, run the plan phase first", adwID)
	}
	if rec.PlanFile == "" {
		return d.fail(ctx, rec, workflow.AgentReviewer, "Cannot review",
			fmt.Errorf("phase: no plan file recorded for %q", adwID))
	}

	issueNum := issueNumber(rec)
	maxAttempts := d.Config.Limits.ReviewAttempts
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentReviewer,
		fmt.Sprintf("✅ Starting review phase (max %d attempts)", maxAttempts)); err != nil {
		return err
	}

	captured := workflow.RunE2EScreenshots(ctx,
		d.Config.Paths.E2EDir,
		d.Config.Paths.E2EResultsDir,
		time.Duration(d.Config.Limits.E2ETimeoutSeconds)*time.Second,
		d.Logger,
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := d.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
			AgentName:    workflow.AgentReviewer,
			SlashCommand: agent.CmdReview,
			Args:         []string{rec.PlanFile},
			ADWID:        adwID,
		})
		if err != nil {
			return d.fail(ctx, rec, workflow.AgentReviewer, "Failed to run review", err)
		}

		result := parseReviewOutput(resp.Output, attempt)
		result.Screenshots = mergeScreenshots(captured, result.Screenshots)
		rec.ReviewAttempts = append(rec.ReviewAttempts, result)
		if err := d.Store.Save(rec); err != nil {
			return err
		}

		if result.Approved {
			body := workflow.FormatIssueMessage(adwID, workflow.AgentReviewer,
				fmt.Sprintf("✅ Review approved on attempt %d\n\n%s", attempt, result.Summary), resp.SessionID)
			if err := d.GitHub.PostReviewCommentWithScreenshots(ctx, issueNum, body, result.Screenshots, d.Logger); err != nil {
				return d.fail(ctx, rec, workflow.AgentReviewer, "Failed to post review comment", err)
			}
			if err := d.Store.Advance(rec, state.PhaseDocument); err != nil {
				return err
			}
			return d.progress(ctx, issueNum, adwID, workflow.AgentReviewer, "✅ Review phase complete")
		}

		blockers := result.Blockers()
		if err := d.progress(ctx, issueNum, adwID, workflow.AgentReviewer,
			fmt.Sprintf("⚠️ Review found %d blockers on attempt %d/%d", len(blockers), attempt, maxAttempts),
			resp.SessionID); err != nil {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		if _, err := workflow.Implement(ctx, d.Runner, adwID, workflow.AgentImplementor, blockerDigest(blockers)); err != nil {
			// A failed fix consumes the attempt; the next review reports
			// whatever is still unresolved.
			d.Logger.Warn("resolving review blockers", "attempt", attempt, "error", err)
			continue
		}
		if _, err := d.Git.Commit(ctx, adwID, workflow.AgentImplementor); err != nil {
			// A review fix that touched nothing is not fatal.
			d.Logger.Warn("committing review fix", "error", err)
		}
	}

	cause := fmt.Errorf("Review blockers after %d attempts", maxAttempts)
	return d.fail(ctx, rec, workflow.AgentReviewer, "Review phase failed", cause)
}

// parseReviewOutput decodes the /review response. The fallback heuristic is
// deliberately conservative: mention of blockers without an approval marker
// reads as a blocked review.
func parseReviewOutput(output string, attempt int) state.ReviewAttempt {
	var result state.ReviewAttempt
	if err := jsonutil.ExtractInto(output, &result); err == nil && (result.Summary != "" || len(result.Issues) > 0 || result.Approved) {
		result.Attempt = attempt
		return result
	}

	lower := strings.ToLower(output)
	approved := strings.Contains(lower, "approved") && !strings.Contains(lower, "blocker")
	fallback := state.ReviewAttempt{
		Approved: approved,
		Summary:  output,
		Attempt:  attempt,
	}
	if !approved {
		fallback.Issues = []state.ReviewIssue{{
			Severity:    state.SeverityBlocker,
			Description: "Review output could not be parsed; treating as blocked.",
		}}
	}
	return fallback
}

// mergeScreenshots set-unions the captured screenshots with those the
// reviewer itself reported, sorted for stable output.
func mergeScreenshots(captured, reported []string) []string {
	seen := make(map[string]bool, len(captured)+len(reported))
	var merged []string
	for _, s := range append(append([]string{}, captured...), reported...) {
		if s != "" && !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	sort.Strings(merged)
	return merged
}

// blockerDigest renders review blockers as an implementation work list.
func blockerDigest(blockers []state.ReviewIssue) string {
	var sb strings.Builder
	sb.WriteString("Resolve the following review blockers:\n\n")
	for _, b := range blockers {
		if b.File != "" {
			if b.Line > 0 {
				fmt.Fprintf(&sb, "- %s:%d: %s\n", b.File, b.Line, b.Description)
			} else {
				fmt.Fprintf(&sb, "- %s: %s\n", b.File, b.Description)
			}
			continue
		}
		fmt.Fprintf(&sb, "- %s\n", b.Description)
	}
	return sb.String()
}
