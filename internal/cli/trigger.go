package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/github"
	"github.com/AbdelazizMoustafa10m/adw/internal/logging"
	"github.com/AbdelazizMoustafa10m/adw/internal/trigger"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Run an ingestion front-end",
}

var triggerWebhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Serve the GitHub webhook receiver",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := selfPath()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := trigger.NewWebhook(cfg, exe, logging.New("webhook"))
		return w.ListenAndServe(ctx)
	},
}

var triggerPollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll open issues and trigger workflows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := selfPath()
		if err != nil {
			return err
		}

		logger := logging.New("poller")
		gh, err := github.NewClient(cmd.Context(), "")
		if err != nil {
			return err
		}

		p := trigger.NewPoller(cfg, gh, exe, logger)

		// Signals request shutdown; the current cycle still finishes and a
		// spawned workflow is never interrupted.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			p.Shutdown()
		}()

		return p.Run(ctx)
	},
}

func init() {
	triggerCmd.AddCommand(triggerWebhookCmd, triggerPollCmd)
	rootCmd.AddCommand(triggerCmd)
}
