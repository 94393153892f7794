package dto

// StepState is the derived sub-status of a timeline step.
type StepState string

// Possible step states.
const (
	StepCompleted StepState = "completed"
	StepPending   StepState = "pending"
	StepRejected  StepState = "rejected"
)

// Timeline step keys, in display order.
const (
	StepSubmitted    = "submitted"
	StepReview       = "review"
	StepOralTest     = "oral_test"
	StepWrittenAdmit = "written_admit"
)

// TimelineStep is one entry of the applicant-facing progress timeline.
type TimelineStep struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	State StepState `json:"state"`
}

// DisplayStatus is the user-facing projection of an application's stored
// workflow fields.
type DisplayStatus struct {
	ApplicationNumber string         `json:"application_number"`
	Label             string         `json:"label"`
	Reason            string         `json:"reason,omitempty"`
	Timeline          []TimelineStep `json:"timeline"`
}
