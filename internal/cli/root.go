// Package cli wires the adw command tree. Every phase unit, composite
// pipeline, trigger front-end, and hook entry point is a subcommand of the
// single adw binary; the pipeline executor re-invokes this same binary to
// keep phases as separate processes.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/adw/internal/config"
	"github.com/AbdelazizMoustafa10m/adw/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagQuiet   bool
	flagConfig  string
	flagDir     string
	flagNoColor bool

	cfg *config.Config
)

// rootCmd is the base command for adw.
var rootCmd = &cobra.Command{
	Use:   "adw",
	Short: "Autonomous software delivery workflows",
	Long: `adw takes GitHub issues through an agentic delivery pipeline:
classify, branch, plan, implement, test, review, document, and open a pull
request -- every cognitive step delegated to a headless coding agent while
adw orchestrates state, retries, and the issue comment trail.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check env vars for flags not explicitly set on command line.
		if !cmd.Flags().Changed("verbose") && os.Getenv("ADW_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("ADW_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("ADW_NO_COLOR") != "") {
			flagNoColor = true
		}

		jsonFormat := os.Getenv("ADW_LOG_FORMAT") == "json"
		logging.Setup(flagVerbose, flagQuiet, jsonFormat)

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}

		if flagDir != "" {
			if err := os.Chdir(flagDir); err != nil {
				return fmt.Errorf("changing directory to %s: %w", flagDir, err)
			}
		}

		// Load configuration once for all subcommands.
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadWithFile(flagConfig)
		} else {
			cfg, err = config.Load(".")
		}
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: ADW_VERBOSE)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: ADW_QUIET)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to adw.toml config file")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "Override working directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: ADW_NO_COLOR, NO_COLOR)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// selfPath returns the running binary's path for pipeline re-invocation.
func selfPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cli: resolving own executable: %w", err)
	}
	return exe, nil
}
