package cli

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/gradescope-sync/internal/config"
	"github.com/pfrederiksen/gradescope-sync/internal/gcal"
	"github.com/pfrederiksen/gradescope-sync/internal/logger"
	"github.com/pfrederiksen/gradescope-sync/internal/storage"
	"github.com/spf13/cobra"
)

// cleanupCoursePatterns are the course codes whose synced events get removed
// from the personal calendar. Synced titles always end in " - <course>".
var cleanupCoursePatterns = []string{
	"COMPSCI 61B", "CS 70", "LS 22", "MATH 54", "Math 54",
	"ASTRON C10", "CS 198",
}

// runCleanup deletes previously synced events from the primary calendar.
// This is a one-time migration helper for events created before a dedicated
// calendar existed; it never touches Gradescope.
func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := config.GoogleFromEnv()

	store, err := storage.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	client, err := calendarClient(cfg, store)
	if err != nil {
		return err
	}

	logger.Info("Searching for synced events in primary calendar", nil)

	deleted := 0
	pageToken := ""
	for {
		events, next, err := client.ListEvents(gcal.PrimaryCalendarID, pageToken)
		if err != nil {
			logger.Error("Listing events failed, stopping cleanup", logger.Fields{"deleted": deleted}, err)
			break
		}

		for _, evt := range events {
			if !matchesCleanupPattern(evt.Summary) {
				continue
			}
			logger.Info("Deleting event", logger.Fields{"title": evt.Summary})
			if err := client.DeleteEvent(gcal.PrimaryCalendarID, evt.ID); err != nil {
				logger.Error("Deleting event failed", logger.Fields{"title": evt.Summary}, err)
				continue
			}
			deleted++
		}

		if next == "" {
			break
		}
		pageToken = next
	}

	logger.Info("Cleanup completed", logger.Fields{"deleted": deleted})
	return nil
}

// matchesCleanupPattern reports whether a title looks like a synced
// assignment event for one of the known course codes
func matchesCleanupPattern(title string) bool {
	if !strings.Contains(title, " - ") {
		return false
	}
	for _, pattern := range cleanupCoursePatterns {
		if strings.Contains(title, pattern) {
			return true
		}
	}
	return false
}
