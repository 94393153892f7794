package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

var renewalRowColumns = []string{
	"id", "student_id", "academic_session_id", "class_id", "section_id",
	"contact_override", "address_override", "status", "status_reason", "registration_id", "created_at", "resolved_at",
}

func pendingRenewalRow() *sqlmock.Rows {
	return sqlmock.NewRows(renewalRowColumns).AddRow(
		"renewal-1", "student-1", "session-1", "class-1", "section-1",
		nil, nil, "PENDING", nil, nil, time.Now().UTC(), nil,
	)
}

func TestRenewalRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRenewalRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO renewal_applications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	renewal := &models.RenewalApplication{
		StudentID:         "student-1",
		AcademicSessionID: "session-1",
		ClassID:           "class-1",
		SectionID:         "section-1",
	}
	err := repo.Create(context.Background(), renewal)
	require.NoError(t, err)
	assert.NotEmpty(t, renewal.ID)
	assert.Equal(t, models.RenewalStatusPending, renewal.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewalRepositoryResolveApprove(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRenewalRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM renewal_applications WHERE id = $1 FOR UPDATE")).
		WithArgs("renewal-1").
		WillReturnRows(pendingRenewalRow())
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE renewal_applications SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resolvedAt := time.Now().UTC()
	renewal, err := repo.Resolve(context.Background(), "renewal-1", func(renewal *models.RenewalApplication) (*models.Registration, error) {
		renewal.Status = models.RenewalStatusApproved
		renewal.ResolvedAt = &resolvedAt
		return &models.Registration{
			StudentID:         renewal.StudentID,
			ClassID:           renewal.ClassID,
			SectionID:         renewal.SectionID,
			AcademicSessionID: renewal.AcademicSessionID,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RenewalStatusApproved, renewal.Status)
	require.NotNil(t, renewal.RegistrationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewalRepositoryResolveReject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRenewalRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("renewal-1").
		WillReturnRows(pendingRenewalRow())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE renewal_applications SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reason := "unpaid dues"
	renewal, err := repo.Resolve(context.Background(), "renewal-1", func(renewal *models.RenewalApplication) (*models.Registration, error) {
		renewal.Status = models.RenewalStatusRejected
		renewal.StatusReason = &reason
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RenewalStatusRejected, renewal.Status)
	assert.Nil(t, renewal.RegistrationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewalRepositoryResolveDomainError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRenewalRepository(db)

	domainErr := errors.New("already resolved")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("renewal-1").
		WillReturnRows(pendingRenewalRow())
	mock.ExpectRollback()

	_, err := repo.Resolve(context.Background(), "renewal-1", func(renewal *models.RenewalApplication) (*models.Registration, error) {
		return nil, domainErr
	})
	assert.ErrorIs(t, err, domainErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRenewalRepositoryResolveUnknownID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRenewalRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Resolve(context.Background(), "missing", func(renewal *models.RenewalApplication) (*models.Registration, error) {
		t.Fatal("fn must not run without a locked row")
		return nil, nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
