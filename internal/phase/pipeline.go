package phase

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// Pipelines maps each workflow kind to its ordered phase subcommands. The
// pipeline executor runs each as a child process of this same binary;
// subprocess isolation is what makes individual phases re-runnable.
var Pipelines = map[state.Workflow][]string{
	state.WorkflowPlanBuild:           {"plan", "build"},
	state.WorkflowPlanBuildTest:       {"plan", "build", "test"},
	state.WorkflowPlanBuildReview:     {"plan", "build", "review"},
	state.WorkflowPlanBuildTestReview: {"plan", "build", "test", "review"},
	state.WorkflowSDLC:                {"plan", "build", "test", "review", "document", "pr"},
	state.WorkflowPatch:               {"patch"},
}

// RunPipeline executes the workflow's phases in order, each as a subprocess
// of executable (normally this binary's own path). The first phase receives
// the issue number and workflow id; later phases receive only the workflow
// id. Execution stops at the first phase that exits non-zero, propagating
// its error.
func RunPipeline(ctx context.Context, executable string, wf state.Workflow, issueNum int, adwID string, logger *log.Logger) error {
	phases, ok := Pipelines[wf]
	if !ok {
		return fmt.Errorf("phase: unknown workflow %q", wf)
	}

	for i, name := range phases {
		args := []string{name}
		if i == 0 {
			args = append(args, strconv.Itoa(issueNum))
		}
		args = append(args, adwID)

		logger.Info("running phase", "phase", name, "adw_id", adwID, "workflow", wf)

		cmd := exec.CommandContext(ctx, executable, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("phase: %s failed for %q: %w", name, adwID, err)
		}
	}
	return nil
}

// LaunchPipeline starts the workflow's first composite command as a detached
// child and returns without waiting. The child re-enters this binary with
// the composite subcommand so the whole pipeline survives the parent
// exiting, which is what the webhook receiver needs to answer within the
// tracker's timeout.
func LaunchPipeline(executable string, wf state.Workflow, issueNum int, adwID string, logger *log.Logger) error {
	sub, ok := compositeCommands[wf]
	if !ok {
		return fmt.Errorf("phase: unknown workflow %q", wf)
	}

	cmd := exec.Command(executable, sub, strconv.Itoa(issueNum), adwID)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("phase: launching %s for issue #%d: %w", sub, issueNum, err)
	}

	logger.Info("launched workflow", "workflow", wf, "issue", issueNum, "adw_id", adwID, "pid", cmd.Process.Pid)

	// Reap the child in the background so it never zombies under a
	// long-running receiver.
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("workflow exited with error", "adw_id", adwID, "error", err)
		}
	}()
	return nil
}

// compositeCommands maps workflow kinds to the CLI subcommand that runs the
// whole pipeline.
var compositeCommands = map[state.Workflow]string{
	state.WorkflowPlanBuild:           "plan-build",
	state.WorkflowPlanBuildTest:       "plan-build-test",
	state.WorkflowPlanBuildReview:     "plan-build-review",
	state.WorkflowPlanBuildTestReview: "plan-build-test-review",
	state.WorkflowSDLC:                "sdlc",
	state.WorkflowPatch:               "patch",
}

// CompositeCommand returns the CLI subcommand for a workflow kind.
func CompositeCommand(wf state.Workflow) (string, bool) {
	sub, ok := compositeCommands[wf]
	return sub, ok
}
