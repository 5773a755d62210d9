package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/health"
	"github.com/AbdelazizMoustafa10m/adw/internal/logging"
	"github.com/AbdelazizMoustafa10m/adw/internal/workflow"
)

var healthCmd = &cobra.Command{
	Use:   "health [issue-number]",
	Short: "Verify external collaborators are installed and authenticated",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report := health.Run(cmd.Context(), cfg)
		fmt.Print(report.Render())

		// An issue number asks for the verdict as a tracker comment, which
		// failing health must not prevent.
		if len(args) == 1 {
			issueNum, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid issue number %q", args[0])
			}
			postHealthComment(cmd, issueNum, report.Success)
		}

		if !report.Success {
			return fmt.Errorf("health check failed with %d errors", len(report.Errors))
		}
		return nil
	},
}

func postHealthComment(cmd *cobra.Command, issueNum int, healthy bool) {
	logger := logging.New("health")

	gh, err := github.NewClient(cmd.Context(), "")
	if err != nil {
		logger.Warn("posting health comment", "error", err)
		return
	}

	verdict := "HEALTHY"
	if !healthy {
		verdict = "UNHEALTHY"
	}
	body := workflow.FormatIssueMessage("health", workflow.AgentOps,
		fmt.Sprintf("Health check completed: %s", verdict))
	if err := gh.PostComment(cmd.Context(), issueNum, body); err != nil {
		logger.Warn("posting health comment", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
