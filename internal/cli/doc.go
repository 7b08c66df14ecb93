// Package cli wires the gradescope-sync commands: the default sync action
// that upserts assignment due dates into Google Calendar, the ics action
// that writes a subscribable calendar file, and the one-shot cleanup action
// that removes previously synced events from the personal calendar.
package cli
