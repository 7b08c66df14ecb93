package gradescope

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	courseHrefPattern     = regexp.MustCompile(`/courses/\d+`)
	assignmentHrefPattern = regexp.MustCompile(`/assignments/(\d+)`)
	courseNamePattern     = regexp.MustCompile(`courseBox--name|name`)
)

// ExtractCourses extracts all course records from a parsed account page.
// Course links are anchors whose href matches the /courses/<id> path; the
// trailing path segment becomes the course ID.
func ExtractCourses(doc *goquery.Document) []Course {
	courses := make([]Course, 0)

	doc.Find("a[href]").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !courseHrefPattern.MatchString(href) {
			return
		}

		segments := strings.Split(strings.TrimSuffix(href, "/"), "/")
		id := segments[len(segments)-1]

		// Short name comes from the first heading inside the link
		shortName := "Unknown Course"
		if heading := link.Find("h3, h4, heading").First(); heading.Length() > 0 {
			shortName = strings.TrimSpace(heading.Text())
		}

		// Full name lives in a div with a courseBox--name style class
		fullName := shortName
		link.Find("div").EachWithBreak(func(j int, div *goquery.Selection) bool {
			class, _ := div.Attr("class")
			if !courseNamePattern.MatchString(class) {
				return true
			}
			fullName = strings.TrimSpace(div.Text())
			return false
		})

		courses = append(courses, Course{
			ID:        id,
			ShortName: shortName,
			FullName:  fullName,
			URL:       BaseURL + href,
		})
	})

	return courses
}

// ExtractAssignments extracts all assignment records from a parsed course
// page. Header rows are skipped, and rows where no strategy can resolve a
// name are dropped silently. A missing due date is kept as an empty
// RawDueDate; deciding what to do with it is the caller's problem.
func ExtractAssignments(doc *goquery.Document, courseID string) []Assignment {
	assignments := make([]Assignment, 0)

	doc.Find(`tr[role="row"]`).Each(func(i int, row *goquery.Selection) {
		if row.Find(`[role="columnheader"]`).Length() > 0 {
			return
		}

		identity, ok := resolveIdentity(row)
		if !ok {
			return
		}

		rawDueDate, _ := resolveDueDate(row)

		assignments = append(assignments, Assignment{
			ID:         identity.id,
			Name:       identity.name,
			RawDueDate: rawDueDate,
			URL:        assignmentURL(identity, courseID),
		})
	})

	return assignments
}

// identity is the name/id/link triple resolved for one assignment row.
type identity struct {
	name string
	id   string
	href string
}

// identityStrategies resolve an assignment's identity from a table row,
// most reliable first. The first strategy that succeeds wins.
var identityStrategies = []func(row *goquery.Selection) (identity, bool){
	identityFromLink,
	identityFromSubmitButton,
}

// dueDateStrategies resolve the raw due-date text from a table row, most
// reliable first. The first strategy that succeeds wins.
var dueDateStrategies = []func(row *goquery.Selection) (string, bool){
	dueDateFromTimeElement,
	dueDateFromHiddenColumn,
	dueDateFromAriaLabel,
}

func resolveIdentity(row *goquery.Selection) (identity, bool) {
	for _, strategy := range identityStrategies {
		if id, ok := strategy(row); ok {
			return id, true
		}
	}
	return identity{}, false
}

func resolveDueDate(row *goquery.Selection) (string, bool) {
	for _, strategy := range dueDateStrategies {
		if raw, ok := strategy(row); ok {
			return raw, true
		}
	}
	return "", false
}

// identityFromLink handles submitted or viewable assignments, which carry an
// anchor pointing at /assignments/<id>.
func identityFromLink(row *goquery.Selection) (identity, bool) {
	var result identity
	var found bool

	row.Find("a[href]").EachWithBreak(func(i int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		matches := assignmentHrefPattern.FindStringSubmatch(href)
		if matches == nil {
			return true
		}
		result = identity{
			name: strings.TrimSpace(link.Text()),
			id:   matches[1],
			href: href,
		}
		found = true
		return false
	})

	if !found || result.name == "" {
		return identity{}, false
	}
	return result, true
}

// identityFromSubmitButton handles assignments with no submission yet, which
// expose their title and id as data attributes on the submit button.
func identityFromSubmitButton(row *goquery.Selection) (identity, bool) {
	button := row.Find("button[data-assignment-title]").First()
	if button.Length() == 0 {
		return identity{}, false
	}

	name := button.AttrOr("data-assignment-title", "")
	if name == "" {
		return identity{}, false
	}

	return identity{
		name: name,
		id:   button.AttrOr("data-assignment-id", ""),
	}, true
}

// dueDateFromTimeElement reads the machine-readable datetime attribute off
// the dedicated due-date time element.
func dueDateFromTimeElement(row *goquery.Selection) (string, bool) {
	elem := row.Find("time.submissionTimeChart--dueDate").First()
	if elem.Length() == 0 {
		return "", false
	}
	datetime := elem.AttrOr("datetime", "")
	return datetime, datetime != ""
}

// dueDateFromHiddenColumn reads the second hidden table cell, which holds
// the due date as text on older course pages.
func dueDateFromHiddenColumn(row *goquery.Selection) (string, bool) {
	cells := row.Find("td.hidden-column")
	if cells.Length() < 2 {
		return "", false
	}
	text := strings.TrimSpace(cells.Eq(1).Text())
	return text, text != ""
}

// dueDateFromAriaLabel scans every time element for a "Due at" accessibility
// label, preferring its datetime attribute over its text content.
func dueDateFromAriaLabel(row *goquery.Selection) (string, bool) {
	var raw string

	row.Find("time").EachWithBreak(func(i int, elem *goquery.Selection) bool {
		if !strings.Contains(elem.AttrOr("aria-label", ""), "Due at") {
			return true
		}
		if datetime := elem.AttrOr("datetime", ""); datetime != "" {
			raw = datetime
		} else {
			raw = strings.TrimSpace(elem.Text())
		}
		return false
	})

	return raw, raw != ""
}

func assignmentURL(id identity, courseID string) string {
	if id.href != "" {
		return BaseURL + id.href
	}
	if id.id != "" {
		return fmt.Sprintf("%s/courses/%s/assignments/%s", BaseURL, courseID, id.id)
	}
	return ""
}
