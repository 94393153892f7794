package models

import "time"

// RenewalStatus captures the review state of a renewal request.
type RenewalStatus string

// Possible renewal statuses.
const (
	RenewalStatusPending  RenewalStatus = "PENDING"
	RenewalStatusApproved RenewalStatus = "APPROVED"
	RenewalStatusRejected RenewalStatus = "REJECTED"
)

// RenewalApplication re-enrolls an existing student into a new academic
// session, class and section. Approval produces exactly one Registration.
type RenewalApplication struct {
	ID                string        `db:"id" json:"id"`
	StudentID         string        `db:"student_id" json:"student_id"`
	AcademicSessionID string        `db:"academic_session_id" json:"academic_session_id"`
	ClassID           string        `db:"class_id" json:"class_id"`
	SectionID         string        `db:"section_id" json:"section_id"`
	ContactOverride   *string       `db:"contact_override" json:"contact_override,omitempty"`
	AddressOverride   *string       `db:"address_override" json:"address_override,omitempty"`
	Status            RenewalStatus `db:"status" json:"status"`
	StatusReason      *string       `db:"status_reason" json:"status_reason,omitempty"`
	RegistrationID    *string       `db:"registration_id" json:"registration_id,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	ResolvedAt        *time.Time    `db:"resolved_at" json:"resolved_at,omitempty"`
}

// RenewalFilter provides filters for listing renewal applications.
type RenewalFilter struct {
	Status    RenewalStatus
	StudentID string
	SessionID string
	Page      int
	PageSize  int
}
