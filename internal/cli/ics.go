package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/gradescope-sync/internal/calendar"
	"github.com/pfrederiksen/gradescope-sync/internal/config"
	"github.com/pfrederiksen/gradescope-sync/internal/logger"
	"github.com/spf13/cobra"
)

// runICS scrapes Gradescope and writes all due dates into a single .ics
// file that any calendar application can subscribe to. No Google
// credentials are involved.
func runICS(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	events, skipped, err := collectEvents(cfg)
	if err != nil {
		return err
	}

	ics := calendar.GenerateBulkICS(events, calendar.CalName)

	if dir := filepath.Dir(flagOutput); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := os.WriteFile(flagOutput, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar file: %w", err)
	}

	logger.Info("Calendar file written", logger.Fields{
		"path":    flagOutput,
		"events":  len(events),
		"skipped": skipped,
	})

	return nil
}
