package cli

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/gradescope-sync/internal/config"
	"github.com/pfrederiksen/gradescope-sync/internal/event"
	"github.com/pfrederiksen/gradescope-sync/internal/gcal"
	"github.com/pfrederiksen/gradescope-sync/internal/gradescope"
	"github.com/pfrederiksen/gradescope-sync/internal/logger"
	"github.com/pfrederiksen/gradescope-sync/internal/storage"
	"github.com/spf13/cobra"
)

// runSync is the default action: scrape, project, and upsert every
// assignment that has a due date into Google Calendar.
func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	store, err := storage.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	events, skipped, err := collectEvents(cfg)
	if err != nil {
		return err
	}

	client, err := calendarClient(cfg, store)
	if err != nil {
		return err
	}

	calendarID := resolveCalendarID(client, cfg.CalendarName)

	logger.AddCounter("skipped", int64(skipped))

	for _, evt := range events {
		action, err := client.UpsertEvent(calendarID, evt)
		if err != nil {
			return fmt.Errorf("upserting %q: %w", evt.Title, err)
		}
		logger.IncrCounter(action)
		logger.Debug("Upserted event", logger.Fields{"uid": evt.UID, "action": action})
	}

	reportDiff(store, events)

	logger.Info("Sync completed", logger.Fields{
		"created": logger.GetCounter(gcal.ActionCreated),
		"updated": logger.GetCounter(gcal.ActionUpdated),
		"skipped": logger.GetCounter("skipped"),
	})

	return nil
}

// collectEvents logs into Gradescope, walks every course, and projects each
// assignment that has a usable due date into a calendar event. Returns the
// events and the number of assignments skipped for lack of one.
func collectEvents(cfg *config.Config) ([]*event.Event, int, error) {
	client, err := gradescope.NewClient(cfg.Email, cfg.Password)
	if err != nil {
		return nil, 0, err
	}

	logger.Info("Logging into Gradescope", logger.Fields{"email": cfg.Email})
	if err := client.Login(); err != nil {
		return nil, 0, fmt.Errorf("logging in: %w", err)
	}

	courses, err := client.FetchCourses()
	if err != nil {
		return nil, 0, fmt.Errorf("fetching courses: %w", err)
	}
	logger.Info("Fetched courses", logger.Fields{"count": len(courses)})

	// Year-less due dates resolve against the current calendar year
	referenceYear := time.Now().Year()

	events := make([]*event.Event, 0)
	skipped := 0

	for _, course := range courses {
		assignments, err := client.FetchAssignments(course.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("fetching assignments for %s: %w", course.ShortName, err)
		}
		logger.Info("Fetched assignments", logger.Fields{
			"course": course.ShortName,
			"count":  len(assignments),
		})

		for _, assignment := range assignments {
			evt := event.Project(course, assignment, referenceYear)
			if evt == nil {
				logger.Info("Skipping assignment without usable due date", logger.Fields{
					"assignment": assignment.Name,
					"course":     course.ShortName,
				})
				skipped++
				continue
			}
			events = append(events, evt)
		}
	}

	return events, skipped, nil
}

// calendarClient prepares an authenticated Google Calendar client, writing
// token.json from the environment when running non-interactively and
// refreshing the access token when stale.
func calendarClient(cfg *config.Config, store *storage.Storage) (*gcal.Client, error) {
	tokenPath := filepath.Join(store.Dir(), "token.json")

	if cfg.GoogleToken != "" {
		if err := gcal.WriteTokenFromEnv(cfg.GoogleToken, tokenPath); err != nil {
			return nil, err
		}
		logger.Info("Google credentials loaded from environment", nil)
	}

	token, err := gcal.LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no Google credentials found (set GOOGLE_TOKEN or place token.json in %s): %w", store.Dir(), err)
	}

	if token.Expired() {
		if err := token.Refresh(&http.Client{Timeout: 15 * time.Second}); err != nil {
			return nil, fmt.Errorf("refreshing Google credentials: %w", err)
		}
		if err := gcal.SaveToken(token, tokenPath); err != nil {
			logger.Warn("Could not persist refreshed token", logger.Fields{"error": err.Error()})
		}
	}

	return gcal.NewClient(token), nil
}

// resolveCalendarID finds the configured calendar by name, falling back to
// the primary calendar when the lookup fails or finds nothing. A listing
// failure degrades the target, it never aborts the sync.
func resolveCalendarID(client *gcal.Client, name string) string {
	calendarID, err := client.FindCalendarID(name)
	if err != nil {
		logger.Warn("Listing calendars failed, using primary calendar", logger.Fields{"error": err.Error()})
		return gcal.PrimaryCalendarID
	}
	if calendarID == "" {
		logger.Warn("Calendar not found, using primary calendar", logger.Fields{"calendar": name})
		return gcal.PrimaryCalendarID
	}

	logger.Info("Using calendar", logger.Fields{"calendar": name})
	return calendarID
}

// reportDiff logs assignments that are new or changed since the previous
// run and saves the new snapshot. Snapshot problems are reported, never
// fatal; the remote calendar is already up to date by this point.
func reportDiff(store *storage.Storage, events []*event.Event) {
	previous, err := store.LoadSnapshot()
	if err != nil {
		logger.Warn("Loading previous snapshot failed", logger.Fields{"error": err.Error()})
		previous = event.NewSnapshot()
	}

	diff := event.Diff(previous, events)
	for _, evt := range diff.NewEvents {
		logger.Info("New assignment since last sync", logger.Fields{"title": evt.Title})
	}
	for _, change := range diff.Changes {
		logger.Info("Assignment changed since last sync", logger.Fields{
			"uid":   change.UID,
			"field": change.Field,
			"old":   change.OldValue,
			"new":   change.NewValue,
		})
	}

	if err := store.CreateSnapshotFromEvents(events); err != nil {
		logger.Warn("Saving snapshot failed", logger.Fields{"error": err.Error()})
	}
}
