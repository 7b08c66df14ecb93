package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/gradescope-sync/internal/event"
)

func testEvent() *event.Event {
	due := time.Date(2026, 2, 1, 9, 0, 0, 0, time.FixedZone("PST", -8*3600))
	return &event.Event{
		UID:         "123456-9876543@gradescope-sync",
		Title:       "Homework 1 - CS 70",
		Start:       due,
		End:         due,
		Description: "Course: Discrete Mathematics and Probability Theory\nLink: https://www.gradescope.com/courses/123456/assignments/9876543",
		URL:         "https://www.gradescope.com/courses/123456/assignments/9876543",
	}
}

func TestGenerateBulkICS_RequiredProperties(t *testing.T) {
	ics := GenerateBulkICS([]*event.Event{testEvent()}, "")

	required := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProdID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:123456-9876543@gradescope-sync",
		"DTSTART:20260201T170000Z",
		"DTEND:20260201T170000Z",
		"SUMMARY:Homework 1 - CS 70",
		"URL:https://www.gradescope.com/courses/123456/assignments/9876543",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, want := range required {
		if !strings.Contains(ics, want) {
			t.Errorf("generated ICS missing %q", want)
		}
	}
}

func TestGenerateBulkICS_CRLFLineEndings(t *testing.T) {
	ics := GenerateBulkICS([]*event.Event{testEvent()}, CalName)

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if strings.Contains(line, "\n") || strings.Contains(line, "\r") {
			t.Errorf("line contains bare CR or LF: %q", line)
		}
	}

	if !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Error("ICS does not end with CRLF-terminated END:VCALENDAR")
	}
}

func TestGenerateBulkICS_EscapesSpecialCharacters(t *testing.T) {
	evt := testEvent()
	evt.Title = "Reading; Chapters 1,2"
	evt.Description = "First line\nSecond line\\end"

	ics := GenerateBulkICS([]*event.Event{evt}, "")

	if !strings.Contains(ics, `SUMMARY:Reading\; Chapters 1\,2`) {
		t.Errorf("summary not escaped:\n%s", ics)
	}
	if !strings.Contains(ics, `DESCRIPTION:First line\nSecond line\\end`) {
		t.Errorf("description not escaped:\n%s", ics)
	}
}

func TestGenerateBulkICS(t *testing.T) {
	first := testEvent()
	second := testEvent()
	second.UID = "123456-222@gradescope-sync"
	second.Title = "Homework 2 - CS 70"

	ics := GenerateBulkICS([]*event.Event{first, second}, CalName)

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("BEGIN:VEVENT count = %d, want 2", got)
	}
	if got := strings.Count(ics, "BEGIN:VCALENDAR"); got != 1 {
		t.Errorf("BEGIN:VCALENDAR count = %d, want 1", got)
	}
	if !strings.Contains(ics, "X-WR-CALNAME:"+CalName) {
		t.Error("bulk ICS missing X-WR-CALNAME")
	}
	if !strings.Contains(ics, "X-WR-TIMEZONE:"+TimeZone) {
		t.Error("bulk ICS missing X-WR-TIMEZONE")
	}
}

func TestGenerateBulkICS_Empty(t *testing.T) {
	if got := GenerateBulkICS(nil, CalName); got != "" {
		t.Errorf("GenerateBulkICS(nil) = %q, want empty string", got)
	}
}

func TestGenerateBulkICS_NoCalendarName(t *testing.T) {
	ics := GenerateBulkICS([]*event.Event{testEvent()}, "")

	if strings.Contains(ics, "X-WR-CALNAME") {
		t.Error("unnamed calendar should not carry X-WR-CALNAME")
	}
	if strings.Contains(ics, "X-WR-TIMEZONE") {
		t.Error("unnamed calendar should not carry X-WR-TIMEZONE")
	}
}

func TestFormatDueTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "explicit offset rendered in UTC",
			t:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.FixedZone("PST", -8*3600)),
			want: "20260201T170000Z",
		},
		{
			name: "local time rendered floating",
			t:    time.Date(2026, 1, 22, 23, 59, 0, 0, time.Local),
			want: "20260122T235900",
		},
		{
			name: "utc rendered with Z suffix",
			t:    time.Date(2026, 3, 11, 7, 59, 0, 0, time.UTC),
			want: "20260311T075900Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDueTime(tt.t); got != tt.want {
				t.Errorf("formatDueTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Offset-carrying raw dates must come out in UTC form no matter what zone
// the host runs in, including when the offset happens to match the host's.
func TestFormatDueTime_NormalizedInput(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2026-02-01T09:00:00-0800", "20260201T170000Z"},
		{"2026-02-01T09:00:00-08:00", "20260201T170000Z"},
		{"2026-02-01T17:00:00Z", "20260201T170000Z"},
		{"Jan 22, 2026 11:59 PM", "20260122T235900"},
	}

	for _, tt := range tests {
		due := event.Normalize(tt.raw, 2026)
		if due.IsZero() {
			t.Fatalf("Normalize(%q) = zero time, want a timestamp", tt.raw)
		}
		if got := formatDueTime(due); got != tt.want {
			t.Errorf("formatDueTime(Normalize(%q)) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"a,b", `a\,b`},
		{"a;b", `a\;b`},
		{"a\nb", `a\nb`},
		{`a\b`, `a\\b`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := escapeICS(tt.input); got != tt.want {
			t.Errorf("escapeICS(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// Round-trips generated output through an independent iCalendar parser to
// catch structural mistakes string matching would miss.
func TestGenerateBulkICS_ParsesBack(t *testing.T) {
	first := testEvent()
	second := testEvent()
	second.UID = "123456-222@gradescope-sync"
	second.Title = "Homework 2 - CS 70"

	data := GenerateBulkICS([]*event.Event{first, second}, CalName)

	cal, err := ical.ParseCalendar(strings.NewReader(data))
	if err != nil {
		t.Fatalf("generated ICS failed to parse: %v", err)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("parsed event count = %d, want 2", len(events))
	}

	ve := events[0]
	if got := ve.GetProperty(ical.ComponentPropertyUniqueId).Value; got != first.UID {
		t.Errorf("parsed UID = %q, want %q", got, first.UID)
	}
	if got := ve.GetProperty(ical.ComponentPropertySummary).Value; got != first.Title {
		t.Errorf("parsed SUMMARY = %q, want %q", got, first.Title)
	}
	if got := ve.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20260201T170000Z" {
		t.Errorf("parsed DTSTART = %q, want %q", got, "20260201T170000Z")
	}
}
