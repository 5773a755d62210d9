package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/logging"
	"github.com/AbdelazizMoustafa10m/adw/internal/phase"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// firstPhaseArgs parses "<issue-number> [adw-id]", generating a fresh id
// when none is given.
func firstPhaseArgs(args []string) (int, string, error) {
	issueNum, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, "", fmt.Errorf("invalid issue number %q", args[0])
	}
	adwID := state.NewID()
	if len(args) > 1 {
		adwID = args[1]
	}
	return issueNum, adwID, nil
}

// runPhase wires dependencies with a per-workflow execution log and invokes
// the phase function.
func runPhase(ctx context.Context, adwID, trigger string, fn func(context.Context, *phase.Deps) error) error {
	logger, closeLog, err := logging.ForWorkflow(cfg.Paths.AgentsDir, adwID, trigger)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	deps, err := phase.Wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return fn(ctx, deps)
}

var planCmd = &cobra.Command{
	Use:   "plan <issue-number> [adw-id]",
	Short: "Classify an issue, branch, and author an implementation plan",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issueNum, adwID, err := firstPhaseArgs(args)
		if err != nil {
			return err
		}
		return runPhase(cmd.Context(), adwID, "plan", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunPlan(ctx, d, issueNum, adwID, state.WorkflowPlanBuild)
		})
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <adw-id>",
	Short: "Implement the recorded plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(cmd.Context(), args[0], "build", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunBuild(ctx, d, args[0])
		})
	},
}

var testCmd = &cobra.Command{
	Use:   "test <adw-id>",
	Short: "Run the test suite with bounded fix-and-retry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(cmd.Context(), args[0], "test", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunTest(ctx, d, args[0])
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <adw-id>",
	Short: "Review the implementation with bounded fix-and-retry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(cmd.Context(), args[0], "review", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunReview(ctx, d, args[0])
		})
	},
}

var documentCmd = &cobra.Command{
	Use:   "document <adw-id>",
	Short: "Generate documentation for the implemented plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(cmd.Context(), args[0], "document", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunDocument(ctx, d, args[0])
		})
	},
}

var prCmd = &cobra.Command{
	Use:   "pr <adw-id>",
	Short: "Push the branch and open the pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhase(cmd.Context(), args[0], "pr", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunPR(ctx, d, args[0])
		})
	},
}

var patchCmd = &cobra.Command{
	Use:   "patch <issue-number> [adw-id]",
	Short: "Fast path: branch, patch, and open a PR in one step",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issueNum, adwID, err := firstPhaseArgs(args)
		if err != nil {
			return err
		}
		return runPhase(cmd.Context(), adwID, "patch", func(ctx context.Context, d *phase.Deps) error {
			return phase.RunPatch(ctx, d, issueNum, adwID)
		})
	},
}

func init() {
	rootCmd.AddCommand(planCmd, buildCmd, testCmd, reviewCmd, documentCmd, prCmd, patchCmd)
}
