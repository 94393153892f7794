package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
)

type renewalRepository interface {
	Create(ctx context.Context, renewal *models.RenewalApplication) error
	FindByID(ctx context.Context, id string) (*models.RenewalApplication, error)
	List(ctx context.Context, filter models.RenewalFilter) ([]models.RenewalApplication, int, error)
	Resolve(ctx context.Context, id string, fn func(*models.RenewalApplication) (*models.Registration, error)) (*models.RenewalApplication, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error)
	FindRenewalProjection(ctx context.Context, rollNumber string) (*dto.StudentRenewalProjection, error)
}

type academicReader interface {
	FindClassByID(ctx context.Context, id string) (*models.Class, error)
	FindSectionByID(ctx context.Context, id string) (*models.Section, error)
	FindSessionByID(ctx context.Context, id string) (*models.AcademicSession, error)
}

// SubmitRenewalRequest is the public renewal form payload.
type SubmitRenewalRequest struct {
	RollNumber        string  `json:"roll_number" validate:"required"`
	AcademicSessionID string  `json:"academic_session_id" validate:"required,uuid"`
	ClassID           string  `json:"class_id" validate:"required,uuid"`
	SectionID         string  `json:"section_id" validate:"required,uuid"`
	ContactOverride   *string `json:"contact_override,omitempty" validate:"omitempty,e164"`
	AddressOverride   *string `json:"address_override,omitempty"`
}

// ResolveRenewalRequest carries a staff review decision.
type ResolveRenewalRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// RenewalService handles session-renewal requests for existing students.
type RenewalService struct {
	repo      renewalRepository
	students  studentReader
	academics academicReader
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRenewalService constructs the service.
func NewRenewalService(repo renewalRepository, students studentReader, academics academicReader, validate *validator.Validate, logger *zap.Logger) *RenewalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenewalService{
		repo:      repo,
		students:  students,
		academics: academics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// LookupStudent returns the renewal-form projection for a roll number: the
// student's identity plus the session and class of their latest registration.
func (s *RenewalService) LookupStudent(ctx context.Context, rollNumber string) (*dto.StudentRenewalProjection, error) {
	projection, err := s.students.FindRenewalProjection(ctx, strings.TrimSpace(rollNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return projection, nil
}

// Submit validates the renewal form against the roster and the reference
// tables, then persists the request as PENDING.
func (s *RenewalService) Submit(ctx context.Context, req SubmitRenewalRequest) (*models.RenewalApplication, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid renewal payload")
	}

	student, err := s.students.FindByRoll(ctx, strings.TrimSpace(req.RollNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if _, err := s.academics.FindSessionByID(ctx, req.AcademicSessionID); err != nil {
		return nil, referenceError(err, "academic session")
	}
	if _, err := s.academics.FindClassByID(ctx, req.ClassID); err != nil {
		return nil, referenceError(err, "class")
	}
	section, err := s.academics.FindSectionByID(ctx, req.SectionID)
	if err != nil {
		return nil, referenceError(err, "section")
	}
	if section.ClassID != req.ClassID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section does not belong to the requested class")
	}

	renewal := &models.RenewalApplication{
		StudentID:         student.ID,
		AcademicSessionID: req.AcademicSessionID,
		ClassID:           req.ClassID,
		SectionID:         req.SectionID,
		ContactOverride:   req.ContactOverride,
		AddressOverride:   req.AddressOverride,
		Status:            models.RenewalStatusPending,
	}
	if err := s.repo.Create(ctx, renewal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create renewal application")
	}

	s.logger.Info("renewal submitted",
		zap.String("renewal_id", renewal.ID),
		zap.String("student_id", student.ID),
	)
	return renewal, nil
}

// Resolve applies a staff decision to a pending renewal. Approval inserts the
// registration in the same transaction that flips the status; rejection
// requires a reason. Re-resolving a resolved renewal is a conflict.
func (s *RenewalService) Resolve(ctx context.Context, id string, req ResolveRenewalRequest) (*models.RenewalApplication, error) {
	reason := strings.TrimSpace(req.Reason)
	if !req.Approve && reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}

	renewal, err := s.repo.Resolve(ctx, id, func(renewal *models.RenewalApplication) (*models.Registration, error) {
		if renewal.Status != models.RenewalStatusPending {
			return nil, appErrors.Clone(appErrors.ErrConflict, "renewal application already resolved")
		}
		resolvedAt := s.now().UTC()
		renewal.ResolvedAt = &resolvedAt
		if !req.Approve {
			renewal.Status = models.RenewalStatusRejected
			renewal.StatusReason = &reason
			return nil, nil
		}
		renewal.Status = models.RenewalStatusApproved
		renewalID := renewal.ID
		return &models.Registration{
			StudentID:            renewal.StudentID,
			ClassID:              renewal.ClassID,
			SectionID:            renewal.SectionID,
			AcademicSessionID:    renewal.AcademicSessionID,
			RenewalApplicationID: &renewalID,
		}, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "renewal application not found")
		}
		var domainErr *appErrors.Error
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve renewal application")
	}

	s.logger.Info("renewal resolved",
		zap.String("renewal_id", renewal.ID),
		zap.String("status", string(renewal.Status)),
	)
	return renewal, nil
}

// Get returns a renewal application by id.
func (s *RenewalService) Get(ctx context.Context, id string) (*models.RenewalApplication, error) {
	renewal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "renewal application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load renewal application")
	}
	return renewal, nil
}

// List returns renewal applications with pagination metadata.
func (s *RenewalService) List(ctx context.Context, filter models.RenewalFilter) ([]models.RenewalApplication, *models.Pagination, error) {
	renewals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list renewal applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return renewals, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func referenceError(err error, name string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrValidation, name+" does not exist")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+name)
}
