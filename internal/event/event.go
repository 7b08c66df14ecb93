package event

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/gradescope-sync/internal/gradescope"
)

// UIDNamespace is the domain suffix of every generated event UID
const UIDNamespace = "gradescope-sync"

// Event represents one assignment deadline as a calendar event. Start and
// End are equal: a due date is a zero-duration marker, not an interval.
type Event struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
}

// BuildUID creates a deterministic UID for a (course, assignment) pair.
// Either ID may be absent; the literal "unknown" takes its place so the UID
// stays well-formed.
func BuildUID(courseID, assignmentID string) string {
	if courseID == "" {
		courseID = "unknown"
	}
	if assignmentID == "" {
		assignmentID = "unknown"
	}
	return fmt.Sprintf("%s-%s@%s", courseID, assignmentID, UIDNamespace)
}

// Project joins a course and one of its assignments into a calendar event.
// Returns nil when the assignment's due date cannot be normalized; callers
// count those as skipped rather than treating them as errors.
func Project(course gradescope.Course, assignment gradescope.Assignment, referenceYear int) *Event {
	due := Normalize(assignment.RawDueDate, referenceYear)
	if due.IsZero() {
		return nil
	}

	return &Event{
		UID:         BuildUID(course.ID, assignment.ID),
		Title:       fmt.Sprintf("%s - %s", assignment.Name, course.ShortName),
		Start:       due,
		End:         due,
		Description: buildDescription(course, assignment),
		URL:         assignment.URL,
	}
}

func buildDescription(course gradescope.Course, assignment gradescope.Assignment) string {
	description := fmt.Sprintf("Course: %s", course.FullName)
	if assignment.URL != "" {
		description += fmt.Sprintf("\nLink: %s", assignment.URL)
	}
	return description
}
