package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
	"github.com/noah-isme/madrasa-admission-api/pkg/sequence"
)

// Transition names used for metrics and notifications.
const (
	TransitionSubmit       = "submit"
	TransitionApprove      = "approve"
	TransitionReject       = "reject"
	TransitionQuranTest    = "quran_test"
	TransitionOralTest     = "oral_test"
	TransitionWrittenAdmit = "written_admit"
	TransitionWrittenTest  = "written_test"
	TransitionFullyApprove = "fully_approve"
)

type admissionRepository interface {
	Create(ctx context.Context, app *models.AdmissionApplication) error
	FindByID(ctx context.Context, id string) (*models.AdmissionApplication, error)
	FindByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error)
	List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error)
	Transition(ctx context.Context, id string, fn func(*models.AdmissionApplication) error) (*models.AdmissionApplication, error)
	PromoteToStudent(ctx context.Context, id string, fn func(*models.AdmissionApplication) (*models.Student, error)) (*models.AdmissionApplication, *models.Student, error)
}

type statusCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AdmissionNotifier receives best-effort workflow events. Failures are the
// notifier's problem; transitions never fail because of it.
type AdmissionNotifier interface {
	ApplicationSubmitted(ctx context.Context, app *models.AdmissionApplication)
	ApplicationUpdated(ctx context.Context, app *models.AdmissionApplication, transition string)
}

// TransitionObserver records transition outcomes for instrumentation.
type TransitionObserver interface {
	ObserveTransition(transition, outcome string)
}

// SubmitApplicationRequest describes the public admission form payload.
type SubmitApplicationRequest struct {
	FullName          string    `json:"full_name" validate:"required"`
	Gender            string    `json:"gender" validate:"required,oneof=MALE FEMALE"`
	BirthDate         time.Time `json:"birth_date" validate:"required"`
	Phone             string    `json:"phone" validate:"required,e164"`
	Email             string    `json:"email" validate:"required,email"`
	Address           string    `json:"address" validate:"required"`
	GuardianName      string    `json:"guardian_name" validate:"required"`
	GuardianPhone     string    `json:"guardian_phone" validate:"required,e164"`
	RequiredClass     string    `json:"required_class" validate:"required"`
	AccommodationType string    `json:"accommodation_type" validate:"required,oneof=DAY BOARDING"`

	// Opaque upload keys produced by the file collaborator; stored verbatim.
	PhotoKey            *string `json:"photo_key,omitempty"`
	BirthCertificateKey *string `json:"birth_certificate_key,omitempty"`
	TranscriptKey       *string `json:"transcript_key,omitempty"`
}

// TestResultRequest records one gate outcome. Marks are free-form strings.
type TestResultRequest struct {
	Passed *bool  `json:"passed" validate:"required"`
	Marks  string `json:"marks"`
	Reason string `json:"reason"`
}

// RejectApplicationRequest carries the mandatory rejection reason.
type RejectApplicationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// SubmitApplicationResponse is returned by Submit.
type SubmitApplicationResponse struct {
	ID                string `json:"id"`
	ApplicationNumber string `json:"application_number"`
}

// AdmissionService is the admission workflow engine: a state machine over a
// single application row. Every transition is one read-modify-write unit;
// the repository serialises concurrent calls per id.
type AdmissionService struct {
	repo      admissionRepository
	numbers   sequence.Generator
	rolls     sequence.Generator
	cache     statusCache
	cacheTTL  time.Duration
	notifier  AdmissionNotifier
	metrics   TransitionObserver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// AdmissionServiceOption configures the service.
type AdmissionServiceOption func(*AdmissionService)

// WithStatusCache enables the public status read-model cache.
func WithStatusCache(cache statusCache, ttl time.Duration) AdmissionServiceOption {
	return func(s *AdmissionService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithNotifier attaches the applicant notification sink.
func WithNotifier(notifier AdmissionNotifier) AdmissionServiceOption {
	return func(s *AdmissionService) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithTransitionObserver attaches metrics instrumentation.
func WithTransitionObserver(observer TransitionObserver) AdmissionServiceOption {
	return func(s *AdmissionService) {
		if observer != nil {
			s.metrics = observer
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) AdmissionServiceOption {
	return func(s *AdmissionService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAdmissionService constructs the engine.
func NewAdmissionService(repo admissionRepository, numbers, rolls sequence.Generator, validate *validator.Validate, logger *zap.Logger, opts ...AdmissionServiceOption) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AdmissionService{
		repo:      repo,
		numbers:   numbers,
		rolls:     rolls,
		cacheTTL:  2 * time.Minute,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit validates the intake payload, assigns an application number and
// persists the application as PENDING.
func (s *AdmissionService) Submit(ctx context.Context, req SubmitApplicationRequest) (*SubmitApplicationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if err := s.checkBirthDate(req.BirthDate); err != nil {
		return nil, err
	}

	app := &models.AdmissionApplication{
		ApplicationNumber:   s.numbers.Next(),
		FullName:            strings.TrimSpace(req.FullName),
		Gender:              req.Gender,
		BirthDate:           req.BirthDate,
		Phone:               req.Phone,
		Email:               req.Email,
		Address:             strings.TrimSpace(req.Address),
		GuardianName:        strings.TrimSpace(req.GuardianName),
		GuardianPhone:       req.GuardianPhone,
		RequiredClass:       req.RequiredClass,
		AccommodationType:   req.AccommodationType,
		PhotoKey:            req.PhotoKey,
		BirthCertificateKey: req.BirthCertificateKey,
		TranscriptKey:       req.TranscriptKey,
		Status:              models.ApplicationStatusPending,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		s.observe(TransitionSubmit, "error")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.observe(TransitionSubmit, "ok")
	if s.notifier != nil {
		s.notifier.ApplicationSubmitted(ctx, app)
	}
	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("application_number", app.ApplicationNumber),
	)
	return &SubmitApplicationResponse{ID: app.ID, ApplicationNumber: app.ApplicationNumber}, nil
}

// Approve moves a pending application into review-passed state.
func (s *AdmissionService) Approve(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	return s.transition(ctx, id, TransitionApprove, func(app *models.AdmissionApplication) error {
		if app.Status != models.ApplicationStatusPending {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "only pending applications can be approved")
		}
		app.Status = models.ApplicationStatusApproved
		return nil
	})
}

// Reject terminally rejects a pending application. The reason is mandatory.
func (s *AdmissionService) Reject(ctx context.Context, id string, req RejectApplicationRequest) (*models.AdmissionApplication, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	return s.transition(ctx, id, TransitionReject, func(app *models.AdmissionApplication) error {
		if app.Status != models.ApplicationStatusPending {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "only pending applications can be rejected")
		}
		app.Status = models.ApplicationStatusRejected
		app.StatusReason = &reason
		return nil
	})
}

// RecordQuranTest stores the first gate outcome. A failed Quran test is
// terminal; a pass silently unlocks the oral gate without a status change.
func (s *AdmissionService) RecordQuranTest(ctx context.Context, id string, req TestResultRequest) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test result payload")
	}
	return s.transition(ctx, id, TransitionQuranTest, func(app *models.AdmissionApplication) error {
		if app.Status != models.ApplicationStatusApproved {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "application is not approved")
		}
		if app.QuranTest().Recorded() {
			return appErrors.Clone(appErrors.ErrConflict, "quran test already recorded")
		}
		app.QuranTestPassed = req.Passed
		app.QuranTestMarks = optionalString(req.Marks)
		app.QuranTestReason = optionalString(req.Reason)
		if !*req.Passed {
			app.Status = models.ApplicationStatusQuranTestFailed
			app.StatusReason = optionalString(req.Reason)
		}
		return nil
	})
}

// RecordOralTest stores the second gate outcome. Requires a recorded Quran
// pass; passing oral only unlocks the eligibility step, it does not set it.
func (s *AdmissionService) RecordOralTest(ctx context.Context, id string, req TestResultRequest) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test result payload")
	}
	return s.transition(ctx, id, TransitionOralTest, func(app *models.AdmissionApplication) error {
		if app.Status != models.ApplicationStatusApproved {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "application is not approved")
		}
		if !app.QuranTest().IsPass() {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "quran test must be passed before the oral test")
		}
		if app.OralTest().Recorded() {
			return appErrors.Clone(appErrors.ErrConflict, "oral test already recorded")
		}
		app.OralTestPassed = req.Passed
		app.OralTestMarks = optionalString(req.Marks)
		app.OralTestReason = optionalString(req.Reason)
		return nil
	})
}

// SetWrittenAdmitEligible marks the candidate eligible for the written
// test. Requires a recorded oral pass; re-invoking once eligible is a no-op.
func (s *AdmissionService) SetWrittenAdmitEligible(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	return s.transition(ctx, id, TransitionWrittenAdmit, func(app *models.AdmissionApplication) error {
		if !app.OralTest().IsPass() {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "oral test must be passed before written admit eligibility")
		}
		app.WrittenAdmitEligible = true
		return nil
	})
}

// RecordWrittenTest stores the final gate outcome. A failure does not move
// the application to a terminal state; staff follow up manually.
func (s *AdmissionService) RecordWrittenTest(ctx context.Context, id string, req TestResultRequest) (*models.AdmissionApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test result payload")
	}
	return s.transition(ctx, id, TransitionWrittenTest, func(app *models.AdmissionApplication) error {
		if !app.WrittenAdmitEligible {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "application is not eligible for the written test")
		}
		if app.WrittenTest().Recorded() {
			return appErrors.Clone(appErrors.ErrConflict, "written test already recorded")
		}
		app.WrittenTestPassed = req.Passed
		app.WrittenTestMarks = optionalString(req.Marks)
		app.WrittenTestReason = optionalString(req.Reason)
		return nil
	})
}

// FullyApprove converts a written-test passer into a student. The student
// insert and the status update share one transaction, so calling this twice
// can never create two students: the second call fails with a conflict and
// the existing student stays reachable through the application's student_id.
func (s *AdmissionService) FullyApprove(ctx context.Context, id string) (*models.AdmissionApplication, *models.Student, error) {
	app, student, err := s.repo.PromoteToStudent(ctx, id, func(app *models.AdmissionApplication) (*models.Student, error) {
		if app.Status == models.ApplicationStatusStudent {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application already converted to a student")
		}
		if app.Status != models.ApplicationStatusApproved {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "application is not approved")
		}
		if !app.WrittenTest().IsPass() {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "written test must be passed before final approval")
		}
		app.Status = models.ApplicationStatusStudent
		appID := app.ID
		return &models.Student{
			AdmissionApplicationID: &appID,
			RollNumber:             s.rolls.Next(),
			FullName:               app.FullName,
			Gender:                 app.Gender,
			BirthDate:              app.BirthDate,
			Phone:                  app.Phone,
			Email:                  app.Email,
			Address:                app.Address,
			GuardianName:           app.GuardianName,
			GuardianPhone:          app.GuardianPhone,
		}, nil
	})
	if err != nil {
		return nil, nil, s.mapTransitionError(err, TransitionFullyApprove)
	}
	s.afterTransition(ctx, app, TransitionFullyApprove)
	s.logger.Info("application converted to student",
		zap.String("application_id", app.ID),
		zap.String("student_id", student.ID),
		zap.String("roll_number", student.RollNumber),
	)
	return app, student, nil
}

// Get returns an application by id.
func (s *AdmissionService) Get(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

// List returns applications with pagination metadata.
func (s *AdmissionService) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, *models.Pagination, error) {
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// StatusByNumber resolves the applicant-facing display status, serving from
// cache when possible.
func (s *AdmissionService) StatusByNumber(ctx context.Context, number string) (*dto.DisplayStatus, error) {
	key := statusCacheKey(number)
	if s.cache != nil {
		var cached dto.DisplayStatus
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.HasCode(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("status cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	app, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	status := DeriveDisplayStatus(app)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, status, s.cacheTTL); err != nil {
			s.logger.Warn("status cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &status, nil
}

func (s *AdmissionService) transition(ctx context.Context, id, name string, fn func(*models.AdmissionApplication) error) (*models.AdmissionApplication, error) {
	app, err := s.repo.Transition(ctx, id, fn)
	if err != nil {
		return nil, s.mapTransitionError(err, name)
	}
	s.afterTransition(ctx, app, name)
	return app, nil
}

func (s *AdmissionService) mapTransitionError(err error, name string) error {
	s.observe(name, "error")
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	var domainErr *appErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to apply %s transition", name))
}

func (s *AdmissionService) afterTransition(ctx context.Context, app *models.AdmissionApplication, name string) {
	s.observe(name, "ok")
	if s.cache != nil {
		if err := s.cache.Delete(ctx, statusCacheKey(app.ApplicationNumber)); err != nil {
			s.logger.Warn("status cache invalidation failed", zap.String("application_number", app.ApplicationNumber), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.ApplicationUpdated(ctx, app, name)
	}
}

func (s *AdmissionService) observe(transition, outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(transition, outcome)
	}
}

// checkBirthDate enforces the admissible age window at submission time.
func (s *AdmissionService) checkBirthDate(birthDate time.Time) error {
	now := s.now()
	if birthDate.After(now.AddDate(-3, 0, 0)) {
		return appErrors.Clone(appErrors.ErrValidation, "candidate must be at least 3 years old")
	}
	if birthDate.Before(now.AddDate(-30, 0, 0)) {
		return appErrors.Clone(appErrors.ErrValidation, "birth date is out of the admissible range")
	}
	return nil
}

func statusCacheKey(number string) string {
	return "admission:status:" + number
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
