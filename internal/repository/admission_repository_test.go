package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

var admissionRowColumns = []string{
	"id", "application_number", "full_name", "gender", "birth_date", "phone", "email", "address",
	"guardian_name", "guardian_phone", "required_class", "accommodation_type",
	"photo_key", "birth_certificate_key", "transcript_key",
	"status", "status_reason",
	"quran_passed", "quran_marks", "quran_reason",
	"oral_passed", "oral_marks", "oral_reason",
	"written_admit_eligible",
	"written_passed", "written_marks", "written_reason",
	"student_id", "created_at", "updated_at",
}

func pendingApplicationRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(admissionRowColumns).AddRow(
		"app-1", "ADM-abc", "Abdullah Karim", "MALE", now.AddDate(-8, 0, 0), "+8801712345678", "guardian@example.com", "12 Lake Road",
		"Karim Uddin", "+8801812345678", "hifz-1", "BOARDING",
		nil, nil, nil,
		"PENDING", nil,
		nil, nil, nil,
		nil, nil, nil,
		false,
		nil, nil, nil,
		nil, now, now,
	)
}

func TestAdmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admission_applications")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.AdmissionApplication{
		ApplicationNumber: "ADM-abc",
		FullName:          "Abdullah Karim",
	}
	err := repo.Create(context.Background(), app)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.False(t, app.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryFindByNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_applications WHERE application_number = $1")).
		WithArgs("ADM-abc").
		WillReturnRows(pendingApplicationRow())

	app, err := repo.FindByNumber(context.Background(), "ADM-abc")
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_applications WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdmissionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_applications WHERE status = $1")).
		WithArgs(models.ApplicationStatusPending).
		WillReturnRows(pendingApplicationRow())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admission_applications WHERE status = $1")).
		WithArgs(models.ApplicationStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	apps, total, err := repo.List(context.Background(), models.AdmissionFilter{Status: models.ApplicationStatusPending})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "ADM-abc", apps[0].ApplicationNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryTransition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM admission_applications WHERE id = $1 FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(pendingApplicationRow())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_applications SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, err := repo.Transition(context.Background(), "app-1", func(app *models.AdmissionApplication) error {
		app.Status = models.ApplicationStatusApproved
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryTransitionRollsBackOnDomainError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	domainErr := errors.New("not allowed")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(pendingApplicationRow())
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "app-1", func(app *models.AdmissionApplication) error {
		return domainErr
	})
	assert.ErrorIs(t, err, domainErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryTransitionUnknownID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "missing", func(app *models.AdmissionApplication) error {
		t.Fatal("fn must not run without a locked row")
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAdmissionRepositoryPromoteToStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(pendingApplicationRow())
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE admission_applications SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	app, student, err := repo.PromoteToStudent(context.Background(), "app-1", func(app *models.AdmissionApplication) (*models.Student, error) {
		app.Status = models.ApplicationStatusStudent
		appID := app.ID
		return &models.Student{
			AdmissionApplicationID: &appID,
			RollNumber:             "STU-abc",
			FullName:               app.FullName,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusStudent, app.Status)
	assert.NotEmpty(t, student.ID)
	require.NotNil(t, app.StudentID)
	assert.Equal(t, student.ID, *app.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryPromoteToStudentDomainError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	domainErr := errors.New("already converted")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("app-1").
		WillReturnRows(pendingApplicationRow())
	mock.ExpectRollback()

	_, _, err := repo.PromoteToStudent(context.Background(), "app-1", func(app *models.AdmissionApplication) (*models.Student, error) {
		return nil, domainErr
	})
	assert.ErrorIs(t, err, domainErr)
	require.NoError(t, mock.ExpectationsWereMet())
}
