package cli

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/gradescope-sync/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagDataDir string
	flagOutput  string
	flagVerbose bool
)

// NewRootCmd creates the root command. Running without an action performs a
// sync; "ics" and "cleanup" are the only other actions.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gradescope-sync",
		Short: "Sync Gradescope assignment due dates to Google Calendar",
		Long: `Scrapes Gradescope for assignments and mirrors their due dates into
Google Calendar, updating existing events in place when due dates move.
Requires GRADESCOPE_EMAIL and GRADESCOPE_PASSWORD in the environment.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.SetDefault(logger.New(logger.LevelDebug, os.Stdout))
			}
		},
		RunE:          runSync,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "~/.local/share/gradescope-sync", "Data directory for snapshots and token.json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	icsCmd := &cobra.Command{
		Use:   "ics",
		Short: "Generate a subscribable .ics file instead of syncing",
		RunE:  runICS,
	}
	icsCmd.Flags().StringVar(&flagOutput, "output", "docs/gradescope.ics", "Path for the generated .ics file")

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete previously synced events from the personal calendar",
		RunE:  runCleanup,
	}

	cmd.AddCommand(icsCmd, cleanupCmd)

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
