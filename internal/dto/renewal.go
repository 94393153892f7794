package dto

// StudentRenewalProjection is the lightweight lookup result shown on the
// public renewal form after a roll-number search.
type StudentRenewalProjection struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"full_name" json:"name"`
	GuardianName    string  `db:"guardian_name" json:"guardian_name"`
	LastSessionName *string `db:"last_session_name" json:"last_session_name,omitempty"`
	LastClassName   *string `db:"last_class_name" json:"last_class_name,omitempty"`
}
