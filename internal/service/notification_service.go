package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
	"github.com/noah-isme/madrasa-admission-api/pkg/jobs"
	"github.com/noah-isme/madrasa-admission-api/pkg/mailer"
)

const jobTypeEmail = "email"

// NotificationService delivers applicant emails through a background queue.
// Enqueue failures are logged and dropped; the workflow never waits on mail.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewNotificationService constructs the service and its worker queue.
func NewNotificationService(m mailer.Mailer, workers int, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{mailer: m, logger: logger}
	svc.queue = jobs.NewQueue("notifications", svc.handle, jobs.QueueConfig{
		Workers: workers,
		Logger:  logger,
	})
	return svc
}

// Start launches the queue workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the queue workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// ApplicationSubmitted acknowledges a new application.
func (s *NotificationService) ApplicationSubmitted(ctx context.Context, app *models.AdmissionApplication) {
	body := fmt.Sprintf(
		"Dear %s,\n\nWe received your admission application. Your application number is %s. Keep it safe; you will need it to check your status.\n",
		app.GuardianName, app.ApplicationNumber,
	)
	s.enqueue(app, "Admission application received", body)
}

// ApplicationUpdated informs the applicant about a workflow change.
func (s *NotificationService) ApplicationUpdated(ctx context.Context, app *models.AdmissionApplication, transition string) {
	subject, body := transitionMessage(app, transition)
	if subject == "" {
		return
	}
	s.enqueue(app, subject, body)
}

func (s *NotificationService) enqueue(app *models.AdmissionApplication, subject, body string) {
	if app.Email == "" {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: jobTypeEmail,
		Payload: mailer.Message{
			ToEmail: app.Email,
			ToName:  app.FullName,
			Subject: subject,
			Body:    body,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("application_number", app.ApplicationNumber),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.mailer.Send(ctx, msg)
}

func transitionMessage(app *models.AdmissionApplication, transition string) (string, string) {
	number := app.ApplicationNumber
	switch transition {
	case TransitionApprove:
		return "Application approved",
			fmt.Sprintf("Application %s passed the initial review. The Quran test is the next step; the office will contact you with a date.\n", number)
	case TransitionReject:
		reason := ""
		if app.StatusReason != nil {
			reason = "\nReason: " + *app.StatusReason
		}
		return "Application rejected",
			fmt.Sprintf("Application %s was not accepted.%s\n", number, reason)
	case TransitionQuranTest:
		if app.Status == models.ApplicationStatusQuranTestFailed {
			return "Quran test result",
				fmt.Sprintf("Application %s did not pass the Quran test.\n", number)
		}
		return "Quran test result",
			fmt.Sprintf("Application %s passed the Quran test. The oral test is next.\n", number)
	case TransitionWrittenAdmit:
		return "Written test admission",
			fmt.Sprintf("Application %s is admitted to the written test. You can download the admit card from the office.\n", number)
	case TransitionFullyApprove:
		return "Admission confirmed",
			fmt.Sprintf("Congratulations! Application %s has been fully approved and the candidate is now enrolled as a student.\n", number)
	}
	// Oral and written results are communicated in person.
	return "", ""
}
