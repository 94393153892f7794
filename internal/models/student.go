package models

import "time"

// Student is produced by the terminal fully-approve transition, carrying
// identity over from the approved admission application.
type Student struct {
	ID                     string    `db:"id" json:"id"`
	AdmissionApplicationID *string   `db:"admission_application_id" json:"admission_application_id,omitempty"`
	RollNumber             string    `db:"roll_number" json:"roll_number"`
	FullName               string    `db:"full_name" json:"full_name"`
	Gender                 string    `db:"gender" json:"gender"`
	BirthDate              time.Time `db:"birth_date" json:"birth_date"`
	Phone                  string    `db:"phone" json:"phone"`
	Email                  string    `db:"email" json:"email"`
	Address                string    `db:"address" json:"address"`
	GuardianName           string    `db:"guardian_name" json:"guardian_name"`
	GuardianPhone          string    `db:"guardian_phone" json:"guardian_phone"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
