package models

import "time"

// Class is a grade level offered by the school.
type Class struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Section subdivides a class.
type Section struct {
	ID      string `db:"id" json:"id"`
	ClassID string `db:"class_id" json:"class_id"`
	Name    string `db:"name" json:"name"`
}

// AcademicSession is a school year (e.g. 2025-2026).
type AcademicSession struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Registration binds a student to a class, section and session. Created
// once per approved renewal, or at first admission.
type Registration struct {
	ID                   string    `db:"id" json:"id"`
	StudentID            string    `db:"student_id" json:"student_id"`
	ClassID              string    `db:"class_id" json:"class_id"`
	SectionID            string    `db:"section_id" json:"section_id"`
	AcademicSessionID    string    `db:"academic_session_id" json:"academic_session_id"`
	RenewalApplicationID *string   `db:"renewal_application_id" json:"renewal_application_id,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}
