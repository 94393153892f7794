package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

func TestStudentRepositoryFindByRoll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "admission_application_id", "roll_number", "full_name", "gender", "birth_date",
		"phone", "email", "address", "guardian_name", "guardian_phone", "created_at",
	}).AddRow(
		"student-1", "app-1", "STU-abc", "Abdullah Karim", "MALE", time.Now().UTC().AddDate(-8, 0, 0),
		"+8801712345678", "guardian@example.com", "12 Lake Road", "Karim Uddin", "+8801812345678", time.Now().UTC(),
	)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE roll_number = $1")).
		WithArgs("STU-abc").
		WillReturnRows(rows)

	student, err := repo.FindByRoll(context.Background(), "STU-abc")
	require.NoError(t, err)
	assert.Equal(t, "student-1", student.ID)
	assert.Equal(t, "Abdullah Karim", student.FullName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindRenewalProjection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "guardian_name", "last_session_name", "last_class_name"}).
		AddRow("student-1", "Abdullah Karim", "Karim Uddin",
			sql.NullString{String: "2025-2026", Valid: true},
			sql.NullString{String: "Hifz 1", Valid: true})

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.roll_number = $1")).
		WithArgs("STU-abc").
		WillReturnRows(rows)

	projection, err := repo.FindRenewalProjection(context.Background(), "STU-abc")
	require.NoError(t, err)
	assert.Equal(t, "Abdullah Karim", projection.Name)
	require.NotNil(t, projection.LastSessionName)
	assert.Equal(t, "2025-2026", *projection.LastSessionName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindRenewalProjectionNoRegistrations(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "guardian_name", "last_session_name", "last_class_name"}).
		AddRow("student-1", "Abdullah Karim", "Karim Uddin",
			sql.NullString{Valid: false}, sql.NullString{Valid: false})

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.roll_number = $1")).
		WithArgs("STU-new").
		WillReturnRows(rows)

	projection, err := repo.FindRenewalProjection(context.Background(), "STU-new")
	require.NoError(t, err)
	assert.Nil(t, projection.LastSessionName)
	assert.Nil(t, projection.LastClassName)
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "admission_application_id", "roll_number", "full_name", "gender", "birth_date",
		"phone", "email", "address", "guardian_name", "guardian_phone", "created_at",
	}).AddRow(
		"student-1", nil, "STU-abc", "Abdullah Karim", "MALE", time.Now().UTC(),
		"", "", "", "Karim Uddin", "", time.Now().UTC(),
	)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE (full_name ILIKE $1 OR roll_number ILIKE $1)")).
		WithArgs("%karim%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WithArgs("%karim%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "karim"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Nil(t, students[0].AdmissionApplicationID)
}
