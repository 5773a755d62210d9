package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/hooks"
)

// hooksCmd groups the guardrail hook entry points the coding agent invokes
// with a JSON payload on stdin. Exit codes follow the hook protocol: 0
// allows, 2 blocks with the reason on stderr.
var hooksCmd = &cobra.Command{
	Use:    "hooks",
	Short:  "Guardrail hook entry points for the coding agent",
	Hidden: true,
}

var hookPreToolUseCmd = &cobra.Command{
	Use:   "pre-tool-use",
	Short: "Vet a tool invocation before it runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := hooks.ReadPayload(os.Stdin)
		if err != nil {
			// An unreadable payload cannot be vetted; allow rather than
			// wedge the agent.
			return nil
		}
		code, msg := hooks.PreToolUse(cfg.Paths.LogsDir, payload)
		if code == hooks.ExitBlock {
			fmt.Fprintln(os.Stderr, msg)
			os.Exit(hooks.ExitBlock)
		}
		return nil
	},
}

// newLogOnlyHookCmd builds a hook command that only records its payload.
func newLogOnlyHookCmd(use, short string, fn func(string, *hooks.Payload)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := hooks.ReadPayload(os.Stdin)
			if err != nil {
				return nil
			}
			fn(cfg.Paths.LogsDir, payload)
			return nil
		},
	}
}

func init() {
	hooksCmd.AddCommand(
		hookPreToolUseCmd,
		newLogOnlyHookCmd("post-tool-use", "Record a completed tool invocation", hooks.PostToolUse),
		newLogOnlyHookCmd("user-prompt-submit", "Record a submitted prompt", hooks.UserPromptSubmit),
		newLogOnlyHookCmd("pre-compact", "Record an imminent context compaction", hooks.PreCompact),
		newLogOnlyHookCmd("stop", "Record session end and preserve the transcript", hooks.Stop),
	)
	rootCmd.AddCommand(hooksCmd)
}
