// Package health verifies the external collaborators the orchestrator
// depends on: environment, git remote, tracker CLI auth, the coding-agent
// CLI, and the browser-automation toolchain.
package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AbdelazizMoustafa10m/adw/internal/agent"
	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/github"
)

// Status grades a single check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckResult is the outcome of one health check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report aggregates all checks. Success means no check failed; warnings do
// not affect it.
type Report struct {
	Success  bool          `json:"success"`
	Warnings []string      `json:"warnings"`
	Errors   []string      `json:"errors"`
	Checks   []CheckResult `json:"checks"`
}

// Run executes all health checks concurrently and aggregates the results.
// Check order in the report is fixed regardless of completion order.
func Run(ctx context.Context, cfg *config.Config) *Report {
	checks := []struct {
		name string
		fn   func(context.Context) CheckResult
	}{
		{"environment", func(ctx context.Context) CheckResult { return checkEnvironment(cfg) }},
		{"git remote", checkGitRemote},
		{"github cli", checkGitHubCLI},
		{"coding agent", func(ctx context.Context) CheckResult { return checkAgent(ctx, cfg) }},
		{"node toolchain", checkNode},
	}

	results := make([]CheckResult, len(checks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			r := c.fn(gctx)
			r.Name = c.name
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	report := &Report{Success: true, Warnings: []string{}, Errors: []string{}, Checks: results}
	for _, r := range results {
		switch r.Status {
		case StatusWarn:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", r.Name, r.Message))
		case StatusFail:
			report.Success = false
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", r.Name, r.Message))
		}
	}
	return report
}

func checkEnvironment(cfg *config.Config) CheckResult {
	var warnings []string
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		warnings = append(warnings, "ANTHROPIC_API_KEY unset, relying on agent CLI auth")
	}
	if cfg.GitHub.PAT == "" && os.Getenv("GITHUB_PAT") == "" {
		warnings = append(warnings, "GITHUB_PAT unset, relying on gh auth")
	}
	if os.Getenv("CLAUDE_CODE_PATH") == "" && cfg.Agent.Command == "claude" {
		warnings = append(warnings, "CLAUDE_CODE_PATH unset, using default command")
	}
	if len(warnings) > 0 {
		return CheckResult{Status: StatusWarn, Message: strings.Join(warnings, "; ")}
	}
	return CheckResult{Status: StatusOK}
}

func checkGitRemote(ctx context.Context) CheckResult {
	repo, err := github.ResolveRepo(ctx, "")
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	return CheckResult{Status: StatusOK, Message: repo}
}

func checkGitHubCLI(ctx context.Context) CheckResult {
	c := &github.Client{}
	if err := c.CheckAuth(ctx); err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	return CheckResult{Status: StatusOK}
}

// checkAgent confirms the agent binary exists and answers a trivial
// one-shot prompt, which validates both installation and credentials.
func checkAgent(ctx context.Context, cfg *config.Config) CheckResult {
	runner := agent.NewRunner(cfg.Agent.Command, cfg.Paths.AgentsDir, nil)
	if err := runner.CheckInstalled(ctx); err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}

	resp, err := runner.Prompt(ctx, agent.PromptRequest{
		Prompt:     "Respond with exactly: ok",
		ADWID:      "health",
		AgentName:  "health_check",
		Model:      agent.ModelFast,
		OutputFile: filepath.Join(os.TempDir(), "adw_health_check.jsonl"),
	})
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	if !resp.Success {
		return CheckResult{Status: StatusFail, Message: "agent one-shot prompt failed: " + resp.Output}
	}
	return CheckResult{Status: StatusOK}
}

// checkNode verifies node and npx exist. They back the browser-automation
// step only, so absence is a warning rather than a failure.
func checkNode(ctx context.Context) CheckResult {
	for _, bin := range []string{"node", "npx"} {
		if err := exec.CommandContext(ctx, bin, "--version").Run(); err != nil {
			return CheckResult{Status: StatusWarn, Message: bin + " not available, e2e screenshots disabled"}
		}
	}
	return CheckResult{Status: StatusOK}
}
