package portal

import "net/url"

// AbsenceFilter narrows an absence listing. All fields are optional; empty
// values are omitted from the query entirely rather than sent as blanks.
// Values are passed through verbatim — the portal backend owns validation.
type AbsenceFilter struct {
	StartDate string
	EndDate   string
	Status    string
	Type      string
	CourseID  string
}

// Query encodes the filter as a URL query string containing only the
// fields that were actually provided.
func (f AbsenceFilter) Query() string {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.CourseID != "" {
		q.Set("courseId", f.CourseID)
	}
	return q.Encode()
}
