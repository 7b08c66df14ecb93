package gradescope

// Course represents one course the account is enrolled in, as extracted
// from the account page. ID is assigned by Gradescope and stays stable
// across repeated extractions of the same course.
type Course struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name"`
	FullName  string `json:"full_name"`
	URL       string `json:"url"`
}

// Assignment represents one gradeable item within a course. ID is empty for
// assignments that have no submission yet, and RawDueDate is empty when no
// due date could be found; both are valid states, not errors. The owning
// course is not referenced here: the (course, assignment) pairing is carried
// by the caller for the duration of a run.
type Assignment struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	RawDueDate string `json:"due_date,omitempty"`
	URL        string `json:"url,omitempty"`
}
