package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/logging"
	"github.com/AbdelazizMoustafa10m/adw/internal/phase"
	"github.com/AbdelazizMoustafa10m/adw/internal/state"
)

// newCompositeCmd builds a pipeline command that runs each phase of the
// workflow as a subprocess of this binary, stopping at the first failure.
// The workflow record is created up front so the first phase inherits the
// composite's workflow kind instead of its standalone default.
func newCompositeCmd(use, short string, wf state.Workflow) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <issue-number> [adw-id]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNum, adwID, err := firstPhaseArgs(args)
			if err != nil {
				return err
			}

			store := state.NewStore(cfg.Paths.AgentsDir)
			rec, err := store.Load(adwID)
			if err != nil {
				return err
			}
			if rec == nil {
				if _, err := store.Create(adwID, strconv.Itoa(issueNum), wf); err != nil {
					return err
				}
			}

			exe, err := selfPath()
			if err != nil {
				return err
			}
			return phase.RunPipeline(cmd.Context(), exe, wf, issueNum, adwID, logging.New(string(wf)))
		},
	}
}

func init() {
	rootCmd.AddCommand(
		newCompositeCmd("plan-build", "Plan and implement an issue", state.WorkflowPlanBuild),
		newCompositeCmd("plan-build-test", "Plan, implement, and test an issue", state.WorkflowPlanBuildTest),
		newCompositeCmd("plan-build-review", "Plan, implement, and review an issue", state.WorkflowPlanBuildReview),
		newCompositeCmd("plan-build-test-review", "Plan, implement, test, and review an issue", state.WorkflowPlanBuildTestReview),
		newCompositeCmd("sdlc", "Run the full delivery pipeline through to a pull request", state.WorkflowSDLC),
	)
}
