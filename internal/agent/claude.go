package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// reSlashCommand matches a leading slash command at the start of a prompt.
var reSlashCommand = regexp.MustCompile(`^(/\w+)`)

// forwardedEnvVars is the denylist-style environment contract for agent
// subprocesses: only these variables pass through from the host. Everything
// else — including the CLAUDECODE marker that would prevent nested agent
// invocations — is dropped.
var forwardedEnvVars = []string{
	"PATH",
	"HOME",
	"USER",
	"SHELL",
	"TERM",
	"ANTHROPIC_API_KEY",
	"CLAUDE_CODE_PATH",
	"CLAUDE_BASH_MAINTAIN_PROJECT_WORKING_DIR",
}

// Runner spawns the coding-agent CLI as a child process, captures its
// stream-json output, and distills a typed response. The runner never
// retries on its own; retries are phase-level policy.
type Runner struct {
	// Command is the agent CLI executable. Defaults to "claude".
	Command string

	// AgentsDir is the root for per-workflow prompts and raw output.
	AgentsDir string

	// WorkDir is the working directory for agent processes. Empty means
	// the current directory.
	WorkDir string

	// GitHubPAT, when set, is forwarded as GITHUB_PAT and GH_TOKEN so the
	// agent's own gh invocations authenticate.
	GitHubPAT string

	// StrongModel and FastModel override the model names passed to the
	// agent CLI for the two tiers. Empty keeps the tier name itself.
	StrongModel string
	FastModel   string

	logger *log.Logger
}

// NewRunner creates a Runner. The logger may be nil, in which case a
// "agent"-prefixed default logger is used.
func NewRunner(command, agentsDir string, logger *log.Logger) *Runner {
	if command == "" {
		command = "claude"
	}
	if logger == nil {
		logger = log.WithPrefix("agent")
	}
	return &Runner{
		Command:   command,
		AgentsDir: agentsDir,
		logger:    logger,
	}
}

// CheckInstalled verifies that the agent CLI is runnable by invoking its
// version flag.
func (r *Runner) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Command, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf(
			"agent: coding-agent CLI is not installed (expected at %q): %s: %w",
			r.Command, strings.TrimSpace(string(out)), err,
		)
	}
	return nil
}

// Prompt executes one agent invocation. The agent's stream-json output is
// written verbatim to req.OutputFile, then parsed: the last result record
// yields the response text, success flag, and session id. When the stream
// carries no result record but the process exited zero, the raw output is
// returned with success=true. A non-zero exit yields success=false with
// stderr as the output. Invocation failures that prevent any response are
// returned as errors.
func (r *Runner) Prompt(ctx context.Context, req PromptRequest) (*PromptResponse, error) {
	r.savePrompt(req)

	if dir := filepath.Dir(req.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("agent: creating output directory %q: %w", dir, err)
		}
	}

	prompt := req.Prompt + imageNote(req.ImagePaths)

	model := req.Model
	if model == "" {
		model = ModelStrong
	}

	args := []string{"-p", prompt, "--model", r.modelName(model), "--output-format", "stream-json", "--verbose"}
	if req.SkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}

	outFile, err := os.Create(req.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("agent: creating output file %q: %w", req.OutputFile, err)
	}

	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Dir = r.WorkDir
	cmd.Env = r.subprocessEnv()
	cmd.Stdout = outFile

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	r.logger.Debug("running agent",
		"command", r.Command,
		"model", model,
		"adw_id", req.ADWID,
		"agent_name", req.AgentName,
		"output_file", req.OutputFile,
	)

	runErr := cmd.Run()
	if closeErr := outFile.Close(); closeErr != nil {
		r.logger.Warn("closing output file", "error", closeErr)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("agent: running %q: %w", r.Command, runErr)
		}
		return &PromptResponse{
			Output:  fmt.Sprintf("agent error: %s", strings.TrimSpace(stderrBuf.String())),
			Success: false,
		}, nil
	}

	_, result, err := ParseOutputFile(req.OutputFile)
	if err != nil {
		return nil, err
	}
	if _, err := WriteAggregate(req.OutputFile); err != nil {
		// The aggregate is a convenience artifact; its failure must not
		// fail the invocation.
		r.logger.Warn("writing aggregate output", "error", err)
	}

	if result == nil {
		raw, err := os.ReadFile(req.OutputFile)
		if err != nil {
			return nil, fmt.Errorf("agent: reading output file %q: %w", req.OutputFile, err)
		}
		return &PromptResponse{Output: string(raw), Success: true}, nil
	}

	return &PromptResponse{
		Output:    result.Result,
		Success:   !result.IsError,
		SessionID: result.SessionID,
	}, nil
}

// ExecuteTemplate composes "<slash-command> <args...>" and runs it through
// Prompt with the command's recommended model (unless overridden) and the
// conventional output path agents/<adw-id>/<agent-name>/raw_output.jsonl.
// Template invocations always skip permission prompts: they run headless.
func (r *Runner) ExecuteTemplate(ctx context.Context, req TemplateRequest) (*PromptResponse, error) {
	prompt := string(req.SlashCommand)
	if len(req.Args) > 0 {
		prompt += " " + strings.Join(req.Args, " ")
	}

	model := req.Model
	if model == "" {
		model = ModelFor(req.SlashCommand)
	}

	outputFile := filepath.Join(r.AgentsDir, req.ADWID, req.AgentName, "raw_output.jsonl")

	return r.Prompt(ctx, PromptRequest{
		Prompt:          prompt,
		ADWID:           req.ADWID,
		AgentName:       req.AgentName,
		Model:           model,
		ImagePaths:      req.ImagePaths,
		SkipPermissions: true,
		OutputFile:      outputFile,
	})
}

// savePrompt persists slash-command prompts to
// agents/<adw-id>/<agent-name>/prompts/<command>.txt for reproducibility.
// Prompts that do not begin with a slash command are not saved. Failures
// are logged and swallowed: prompt archival must never block an invocation.
func (r *Runner) savePrompt(req PromptRequest) {
	m := reSlashCommand.FindStringSubmatch(req.Prompt)
	if m == nil {
		return
	}
	name := strings.TrimPrefix(m[1], "/")

	dir := filepath.Join(r.AgentsDir, req.ADWID, req.AgentName, "prompts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Warn("creating prompt directory", "error", err)
		return
	}

	path := filepath.Join(dir, name+".txt")
	if err := os.WriteFile(path, []byte(req.Prompt), 0o644); err != nil {
		r.logger.Warn("saving prompt", "path", path, "error", err)
		return
	}
	r.logger.Debug("saved prompt", "path", path)
}

// modelName resolves a model tier to the configured model name.
func (r *Runner) modelName(model Model) string {
	switch {
	case model == ModelStrong && r.StrongModel != "":
		return r.StrongModel
	case model == ModelFast && r.FastModel != "":
		return r.FastModel
	}
	return string(model)
}

// subprocessEnv builds the restricted environment for agent children.
func (r *Runner) subprocessEnv() []string {
	env := make([]string, 0, len(forwardedEnvVars)+2)
	for _, key := range forwardedEnvVars {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	if r.GitHubPAT != "" {
		env = append(env, "GITHUB_PAT="+r.GitHubPAT, "GH_TOKEN="+r.GitHubPAT)
	}
	return env
}

// imageNote formats existing image files as a read directive appended to the
// prompt. Missing files are skipped; no images yields an empty string.
func imageNote(paths []string) string {
	var abs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		a, err := filepath.Abs(p)
		if err != nil {
			a = p
		}
		abs = append(abs, "- "+a)
	}
	if len(abs) == 0 {
		return ""
	}
	return "\n\nReference images (use Read tool to view):\n" + strings.Join(abs, "\n")
}
