package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// layoutsWithOffset are the due-date layouts that carry an explicit UTC
// offset, most specific first. The datetime attribute of the due-date time
// element uses these, in both the compact and colon offset forms; "Z07:00"
// also accepts a literal Z for UTC.
var layoutsWithOffset = []string{
	"2006-01-02 15:04:05 -0700", // "2026-01-22 12:30:00 -0800"
	"2006-01-02T15:04:05-0700",  // "2026-02-01T09:00:00-0800"
	"2006-01-02T15:04:05-07:00", // "2026-02-01T09:00:00-08:00"
	"2006-01-02T15:04:05Z07:00", // "2026-02-01T17:00:00Z"
}

// layoutsWithYear are the offset-less layouts that carry an explicit year.
// These show up as visible text and resolve in local time.
var layoutsWithYear = []string{
	"2006-01-02T15:04:05",      // ISO without offset
	"Jan 2, 2006 3:04 PM",      // "Jan 15, 2026 11:59 PM"
	"Jan 2, 2006 at 3:04 PM",   // "Jan 15, 2026 at 11:59 PM"
	"January 2, 2006 3:04 PM",  // "January 15, 2026 11:59 PM"
	"January 2, 2006 at 3:04 PM",
	"01/02/2006 3:04 PM", // "01/15/2026 11:59 PM"
}

// layoutsWithoutYear are visible-text layouts with no year component. The
// reference year is spliced into the result after parsing.
var layoutsWithoutYear = []string{
	"January 2 at 3:04PM", // "January 24 at 4:00PM"
	"January 2 at 3:04 PM",
	"Jan 2 at 3:04PM",
	"Jan 2 at 3:04 PM",
	"January 2 3:04PM",
	"January 2 3:04 PM",
}

// loosePattern extracts (month, day, hour, minute, am/pm) from anywhere in a
// string that none of the fixed layouts matched.
var loosePattern = regexp.MustCompile(`(?i)([A-Za-z]+)\s+(\d+)\s+at\s+(\d+):(\d+)\s*([AP]M)`)

// Normalize converts a raw Gradescope due-date string into an absolute
// timestamp. Strategies are tried in order and the first success wins:
// layouts with an explicit offset, layouts with an explicit year, year-less
// layouts with referenceYear spliced in, then a permissive pattern match.
// Inputs that carried an explicit UTC offset resolve into a fixed zone
// holding that offset, never into time.Local, so downstream serialization
// can tell them apart from local-time results no matter what zone the host
// runs in. Everything else resolves in local time.
//
// Returns the zero time when raw is empty or nothing matches. An empty
// input means "no due date", which is a valid state rather than a failure.
//
// Year-less dates always adopt referenceYear, which callers take from the
// clock at normalization time. A "December 31 at 11:59PM" parsed in January
// therefore lands in the wrong academic year; Gradescope gives us nothing
// to disambiguate with.
func Normalize(raw string, referenceYear int) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range layoutsWithOffset {
		if t, err := time.Parse(layout, raw); err == nil {
			// Parse hands back time.Local when the offset happens to match
			// the host zone; pin the offset in a fixed zone instead
			_, offset := t.Zone()
			return t.In(time.FixedZone("", offset))
		}
	}

	for _, layout := range layoutsWithYear {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}

	for _, layout := range layoutsWithoutYear {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return time.Date(referenceYear, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
		}
	}

	return normalizeLoose(raw, referenceYear)
}

// normalizeLoose is the last-resort strategy: pull the date components out
// of the surrounding text with a permissive pattern and assemble the result
// by hand.
func normalizeLoose(raw string, referenceYear int) time.Time {
	matches := loosePattern.FindStringSubmatch(raw)
	if matches == nil {
		return time.Time{}
	}

	month, ok := lookupMonth(matches[1])
	if !ok {
		return time.Time{}
	}

	day, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}
	}
	hour, err := strconv.Atoi(matches[3])
	if err != nil {
		return time.Time{}
	}
	minute, err := strconv.Atoi(matches[4])
	if err != nil {
		return time.Time{}
	}

	// 12-hour clock: 12 AM is midnight, 12 PM is noon
	isPM := strings.EqualFold(matches[5], "PM")
	if isPM && hour != 12 {
		hour += 12
	} else if !isPM && hour == 12 {
		hour = 0
	}

	return time.Date(referenceYear, month, day, hour, minute, 0, 0, time.Local)
}

// lookupMonth resolves a month name against both the full and abbreviated
// name tables, case-insensitively.
func lookupMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for month := time.January; month <= time.December; month++ {
		full := strings.ToLower(month.String())
		if name == full || name == full[:3] {
			return month, true
		}
	}
	return 0, false
}
