package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/jsonutil"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

// RunTest runs the test suite in a bounded retry loop. Each failed attempt
// feeds a digest of the failing suites to the resolver template before the
// next run. Exhausting the attempt limit records the error in state and
// fails the phase.
func RunTest(ctx context.Context, d *Deps, adwID string) error {
	rec, err := d.Store.Load(adwID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("phase: no state found for %q, run the plan phase first", adwID)
	}

	issueNum := issueNumber(rec)
	maxAttempts := d.Config.Limits.TestAttempts
	if err := d.progress(ctx, issueNum, adwID, workflow.AgentTester,
		fmt.Sprintf("✅ Starting test phase (max %d attempts)", maxAttempts)); err != nil {
		return err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := d.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
			AgentName:    workflow.AgentTester,
			SlashCommand: agent.CmdTest,
			Args:         []string{adwID},
			ADWID:        adwID,
		})
		if err != nil {
			return d.fail(ctx, rec, workflow.AgentTester, "Failed to run tests", err)
		}

		result := parseTestOutput(resp.Output, attempt)
		rec.TestAttempts = append(rec.TestAttempts, result)
		if err := d.Store.Save(rec); err != nil {
			return err
		}

		if result.AllPassed {
			if err := d.progress(ctx, issueNum, adwID, workflow.AgentTester,
				fmt.Sprintf("✅ All tests passed on attempt %d", attempt), resp.SessionID); err != nil {
				return err
			}
			if err := d.Store.Advance(rec, state.PhaseReview); err != nil {
				return err
			}
			return d.progress(ctx, issueNum, adwID, workflow.AgentTester, "✅ Test phase complete")
		}

		if err := d.progress(ctx, issueNum, adwID, workflow.AgentTester,
			fmt.Sprintf("⚠️ Tests failed on attempt %d/%d", attempt, maxAttempts), resp.SessionID); err != nil {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		digest := failureDigest(result)
		resolve, err := d.Runner.ExecuteTemplate(ctx, agent.TemplateRequest{
			AgentName:    workflow.AgentTestResolver,
			SlashCommand: agent.CmdResolveFailedTest,
			Args:         []string{digest},
			ADWID:        adwID,
		})
		if err != nil {
			return d.fail(ctx, rec, workflow.AgentTestResolver, "Failed to resolve failing tests", err)
		}
		if resolve.Success {
			if _, err := d.Git.Commit(ctx, adwID, workflow.AgentTestResolver); err != nil {
				d.Logger.Warn("committing test fix", "error", err)
			}
		}
	}

	cause := fmt.Errorf("Tests failed after %d attempts", maxAttempts)
	return d.fail(ctx, rec, workflow.AgentTester, "Test phase failed", cause)
}

// parseTestOutput decodes the /test response. The expected shape is a JSON
// array of suite results; unparseable output falls back to a substring
// heuristic, where only an explicit "all tests passed" counts as success.
func parseTestOutput(output string, attempt int) state.TestAttempt {
	var suites []state.SuiteResult
	if err := jsonutil.ExtractInto(output, &suites); err == nil && len(suites) > 0 {
		all := true
		for _, s := range suites {
			if !s.Passed {
				all = false
				break
			}
		}
		return state.TestAttempt{AllPassed: all, Results: suites, Attempt: attempt}
	}

	passed := strings.Contains(strings.ToLower(output), "all tests passed")
	return state.TestAttempt{AllPassed: passed, Attempt: attempt}
}

// failureDigest concatenates the failing suites' output for the resolver.
func failureDigest(attempt state.TestAttempt) string {
	var sb strings.Builder
	for _, s := range attempt.Results {
		if s.Passed {
			continue
		}
		fmt.Fprintf(&sb, "suite: %s\n", s.Suite)
		if s.Error != "" {
			fmt.Fprintf(&sb, "error: %s\n", s.Error)
		}
		if s.Output != "" {
			fmt.Fprintf(&sb, "output:\n%s\n", s.Output)
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "Tests failed but no per-suite output was captured."
	}
	return sb.String()
}
