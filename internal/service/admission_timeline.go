package service

import (
	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

// DeriveDisplayStatus projects an application's stored workflow fields into
// the applicant-facing status. It is a pure function of the row: it never
// mutates the application and never touches storage.
func DeriveDisplayStatus(app *models.AdmissionApplication) dto.DisplayStatus {
	status := dto.DisplayStatus{
		ApplicationNumber: app.ApplicationNumber,
		Label:             statusLabel(app),
		Timeline: []dto.TimelineStep{
			{Key: dto.StepSubmitted, Label: "Application submitted", State: dto.StepCompleted},
			{Key: dto.StepReview, Label: "Application review", State: reviewState(app)},
			{Key: dto.StepOralTest, Label: "Oral test", State: oralState(app)},
			{Key: dto.StepWrittenAdmit, Label: "Written test admission", State: writtenAdmitState(app)},
		},
	}
	if app.StatusReason != nil {
		status.Reason = *app.StatusReason
	}
	return status
}

func statusLabel(app *models.AdmissionApplication) string {
	switch app.Status {
	case models.ApplicationStatusPending:
		return "Under review"
	case models.ApplicationStatusRejected:
		return "Application rejected"
	case models.ApplicationStatusQuranTestFailed:
		return "Quran test not passed"
	case models.ApplicationStatusStudent:
		return "Admitted"
	}

	// APPROVED: the label tracks the furthest reached gate.
	switch {
	case !app.QuranTest().Recorded():
		return "Approved, Quran test pending"
	case app.OralTest().Recorded() && !app.OralTest().IsPass():
		return "Oral test not passed, awaiting staff decision"
	case !app.OralTest().Recorded():
		return "Oral test pending"
	case !app.WrittenAdmitEligible:
		return "Awaiting written test admission"
	case app.WrittenTest().Recorded() && !app.WrittenTest().IsPass():
		return "Written test not passed, awaiting staff decision"
	case !app.WrittenTest().Recorded():
		return "Written test pending"
	default:
		return "Awaiting final approval"
	}
}

func reviewState(app *models.AdmissionApplication) dto.StepState {
	switch app.Status {
	case models.ApplicationStatusPending:
		return dto.StepPending
	case models.ApplicationStatusRejected:
		return dto.StepRejected
	default:
		return dto.StepCompleted
	}
}

func oralState(app *models.AdmissionApplication) dto.StepState {
	if app.Status == models.ApplicationStatusQuranTestFailed {
		return dto.StepRejected
	}
	oral := app.OralTest()
	switch {
	case oral.IsPass():
		return dto.StepCompleted
	case oral.Recorded():
		return dto.StepRejected
	default:
		return dto.StepPending
	}
}

func writtenAdmitState(app *models.AdmissionApplication) dto.StepState {
	if app.WrittenAdmitEligible {
		return dto.StepCompleted
	}
	return dto.StepPending
}
