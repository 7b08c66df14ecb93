// Package calendar serializes projected events into iCalendar (.ics) text
// suitable for subscription by any calendar application.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/gradescope-sync/internal/event"
)

const (
	// ProdID identifies this tool as the calendar producer
	ProdID = "-//Gradescope Calendar Sync//gradescope-sync//EN"

	// CalName is the display name attached to generated calendars
	CalName = "Gradescope Assignments"

	// TimeZone is the calendar's advertised zone. Gradescope serves
	// campus-local times; the label is passed through, never resolved.
	TimeZone = "America/Los_Angeles"
)

// GenerateBulkICS generates a single calendar containing all events, with
// an optional calendar display name. Returns an empty string when there are
// no events.
func GenerateBulkICS(events []*event.Event, calendarName string) string {
	if len(events) == 0 {
		return ""
	}

	var ics strings.Builder

	writeCalendarHeader(&ics, calendarName)
	stamp := time.Now().UTC()
	for _, evt := range events {
		writeEvent(&ics, evt, stamp)
	}
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeCalendarHeader(ics *strings.Builder, calendarName string) {
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", ProdID))
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if calendarName != "" {
		ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(calendarName)))
		ics.WriteString(fmt.Sprintf("X-WR-TIMEZONE:%s\r\n", TimeZone))
	}
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s\r\n", evt.UID))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))

	// Due date as both start and end: a deadline marker, not an interval
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatDueTime(evt.Start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatDueTime(evt.End)))

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(evt.Description)))

	if evt.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("END:VEVENT\r\n")
}

// formatICSTime formats a time as a UTC iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatDueTime formats a due date for DTSTART/DTEND. Due dates that carried
// an explicit UTC offset are emitted in UTC form. Dates normalized without
// one live in time.Local and are emitted as floating times, so subscribers
// see the wall-clock time the source showed.
func formatDueTime(t time.Time) string {
	if t.Location() == time.Local {
		return t.Format("20060102T150405")
	}
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters according to RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
