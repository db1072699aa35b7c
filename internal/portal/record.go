package portal

import "time"

// Absence status codes as reported by the portal backend.
const (
	StatusPending       = "pending"
	StatusPendingReview = "pending-review"
	StatusJustified     = "justified"
	StatusUnjustified   = "unjustified"
)

// AbsenceRecord is one recorded absence, re-mapped to the field names the
// frontend has always consumed. Records are created and owned by the portal
// backend; this layer only reads and renames.
type AbsenceRecord struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"studentId"`
	CourseID      string    `json:"courseId"`
	CourseName    string    `json:"courseName"`
	Date          string    `json:"date"`
	DurationHours float64   `json:"duration"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// absenceWire matches the raw element shape the portal backend returns.
type absenceWire struct {
	AbsenceCode     string    `json:"absence_code"`
	StudentUserCode string    `json:"student_user_code"`
	EnrollmentCode  string    `json:"enrollment_code"`
	CourseUnitName  string    `json:"course_unit_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// mapRecord derives the compatibility field names from a raw portal element.
// Duration is the start/end difference in hours; a start after end yields a
// negative value, which is an upstream data issue and not checked here.
func mapRecord(w absenceWire, defaultType string) AbsenceRecord {
	rec := AbsenceRecord{
		ID:         w.AbsenceCode,
		StudentID:  w.StudentUserCode,
		CourseID:   w.EnrollmentCode,
		CourseName: w.CourseUnitName,
		Type:       defaultType,
		Status:     w.Status,
		StartTime:  w.StartTime,
		EndTime:    w.EndTime,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
	if !w.StartTime.IsZero() {
		rec.Date = w.StartTime.Format("2006-01-02")
	}
	if !w.StartTime.IsZero() && !w.EndTime.IsZero() {
		rec.DurationHours = w.EndTime.Sub(w.StartTime).Hours()
	}
	return rec
}
