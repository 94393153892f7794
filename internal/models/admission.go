package models

import "time"

// ApplicationStatus represents the lifecycle of an admission application.
type ApplicationStatus string

// Possible application statuses. Exactly one is active at a time;
// REJECTED, QURAN_TEST_FAILED and STUDENT are terminal.
const (
	ApplicationStatusPending         ApplicationStatus = "PENDING"
	ApplicationStatusApproved        ApplicationStatus = "APPROVED"
	ApplicationStatusRejected        ApplicationStatus = "REJECTED"
	ApplicationStatusQuranTestFailed ApplicationStatus = "QURAN_TEST_FAILED"
	ApplicationStatusStudent         ApplicationStatus = "STUDENT"
)

// Terminal reports whether no further workflow transition is defined.
func (s ApplicationStatus) Terminal() bool {
	switch s {
	case ApplicationStatusRejected, ApplicationStatusQuranTestFailed, ApplicationStatusStudent:
		return true
	}
	return false
}

// TestResult is the recorded outcome of one admission gate. Passed is nil
// until the gate has been recorded. Marks are free-form short strings.
type TestResult struct {
	Passed *bool   `json:"passed"`
	Marks  *string `json:"marks,omitempty"`
	Reason *string `json:"reason,omitempty"`
}

// Recorded reports whether the gate outcome has been stored.
func (r TestResult) Recorded() bool {
	return r.Passed != nil
}

// IsPass reports a recorded pass.
func (r TestResult) IsPass() bool {
	return r.Passed != nil && *r.Passed
}

// AdmissionApplication is one candidate's row. Intake fields are immutable
// after submission; workflow fields change only through engine transitions.
// Rows are never deleted.
type AdmissionApplication struct {
	ID                string `db:"id" json:"id"`
	ApplicationNumber string `db:"application_number" json:"application_number"`

	FullName          string    `db:"full_name" json:"full_name"`
	Gender            string    `db:"gender" json:"gender"`
	BirthDate         time.Time `db:"birth_date" json:"birth_date"`
	Phone             string    `db:"phone" json:"phone"`
	Email             string    `db:"email" json:"email"`
	Address           string    `db:"address" json:"address"`
	GuardianName      string    `db:"guardian_name" json:"guardian_name"`
	GuardianPhone     string    `db:"guardian_phone" json:"guardian_phone"`
	RequiredClass     string    `db:"required_class" json:"required_class"`
	AccommodationType string    `db:"accommodation_type" json:"accommodation_type"`

	// Opaque storage keys, stored and returned verbatim.
	PhotoKey            *string `db:"photo_key" json:"photo_key,omitempty"`
	BirthCertificateKey *string `db:"birth_certificate_key" json:"birth_certificate_key,omitempty"`
	TranscriptKey       *string `db:"transcript_key" json:"transcript_key,omitempty"`

	Status       ApplicationStatus `db:"status" json:"status"`
	StatusReason *string           `db:"status_reason" json:"status_reason,omitempty"`

	QuranTestPassed *bool   `db:"quran_passed" json:"-"`
	QuranTestMarks  *string `db:"quran_marks" json:"-"`
	QuranTestReason *string `db:"quran_reason" json:"-"`

	OralTestPassed *bool   `db:"oral_passed" json:"-"`
	OralTestMarks  *string `db:"oral_marks" json:"-"`
	OralTestReason *string `db:"oral_reason" json:"-"`

	WrittenAdmitEligible bool `db:"written_admit_eligible" json:"written_admit_eligible"`

	WrittenTestPassed *bool   `db:"written_passed" json:"-"`
	WrittenTestMarks  *string `db:"written_marks" json:"-"`
	WrittenTestReason *string `db:"written_reason" json:"-"`

	StudentID *string `db:"student_id" json:"student_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// QuranTest projects the stored Quran gate columns as a value.
func (a *AdmissionApplication) QuranTest() TestResult {
	return TestResult{Passed: a.QuranTestPassed, Marks: a.QuranTestMarks, Reason: a.QuranTestReason}
}

// OralTest projects the stored oral gate columns as a value.
func (a *AdmissionApplication) OralTest() TestResult {
	return TestResult{Passed: a.OralTestPassed, Marks: a.OralTestMarks, Reason: a.OralTestReason}
}

// WrittenTest projects the stored written gate columns as a value.
func (a *AdmissionApplication) WrittenTest() TestResult {
	return TestResult{Passed: a.WrittenTestPassed, Marks: a.WrittenTestMarks, Reason: a.WrittenTestReason}
}

// AdmissionFilter provides filters for listing applications.
type AdmissionFilter struct {
	Status        ApplicationStatus
	RequiredClass string
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
