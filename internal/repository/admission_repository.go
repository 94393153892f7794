package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

const admissionColumns = `id, application_number, full_name, gender, birth_date, phone, email, address,
	guardian_name, guardian_phone, required_class, accommodation_type,
	photo_key, birth_certificate_key, transcript_key,
	status, status_reason,
	quran_passed, quran_marks, quran_reason,
	oral_passed, oral_marks, oral_reason,
	written_admit_eligible,
	written_passed, written_marks, written_reason,
	student_id, created_at, updated_at`

// AdmissionRepository handles persistence of admission applications.
// Applications are never deleted; workflow fields change only through
// Transition and PromoteToStudent, which serialise concurrent calls per
// row with a SELECT ... FOR UPDATE lock.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs the repository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// Create persists a new application record.
func (r *AdmissionRepository) Create(ctx context.Context, app *models.AdmissionApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	const query = `INSERT INTO admission_applications (id, application_number, full_name, gender, birth_date, phone, email, address,
        guardian_name, guardian_phone, required_class, accommodation_type,
        photo_key, birth_certificate_key, transcript_key,
        status, status_reason,
        quran_passed, quran_marks, quran_reason,
        oral_passed, oral_marks, oral_reason,
        written_admit_eligible,
        written_passed, written_marks, written_reason,
        student_id, created_at, updated_at)
        VALUES (:id, :application_number, :full_name, :gender, :birth_date, :phone, :email, :address,
        :guardian_name, :guardian_phone, :required_class, :accommodation_type,
        :photo_key, :birth_certificate_key, :transcript_key,
        :status, :status_reason,
        :quran_passed, :quran_marks, :quran_reason,
        :oral_passed, :oral_marks, :oral_reason,
        :written_admit_eligible,
        :written_passed, :written_marks, :written_reason,
        :student_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create admission application: %w", err)
	}
	return nil
}

// FindByID returns an application by its ID.
func (r *AdmissionRepository) FindByID(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM admission_applications WHERE id = $1`, admissionColumns)
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// FindByNumber returns an application by its human-displayable number.
func (r *AdmissionRepository) FindByNumber(ctx context.Context, number string) (*models.AdmissionApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM admission_applications WHERE application_number = $1`, admissionColumns)
	var app models.AdmissionApplication
	if err := r.db.GetContext(ctx, &app, query, number); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications filtered by the provided criteria.
func (r *AdmissionRepository) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, int, error) {
	base := "FROM admission_applications"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.RequiredClass != "" {
		conditions = append(conditions, fmt.Sprintf("required_class = $%d", len(args)+1))
		args = append(args, filter.RequiredClass)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR application_number ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"status":     "status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d",
		admissionColumns, base+clause, orderBy, order, size, offset)

	var apps []models.AdmissionApplication
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list admission applications: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count admission applications: %w", err)
	}
	return apps, total, nil
}

const admissionUpdateQuery = `UPDATE admission_applications SET
	status = :status, status_reason = :status_reason,
	quran_passed = :quran_passed, quran_marks = :quran_marks, quran_reason = :quran_reason,
	oral_passed = :oral_passed, oral_marks = :oral_marks, oral_reason = :oral_reason,
	written_admit_eligible = :written_admit_eligible,
	written_passed = :written_passed, written_marks = :written_marks, written_reason = :written_reason,
	student_id = :student_id, updated_at = :updated_at
	WHERE id = :id`

// Transition loads the application under a row lock, applies fn to it and
// persists the workflow fields as one atomic unit. A domain error returned
// by fn rolls the transaction back unchanged. sql.ErrNoRows propagates when
// the id is unknown.
func (r *AdmissionRepository) Transition(ctx context.Context, id string, fn func(*models.AdmissionApplication) error) (app *models.AdmissionApplication, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin admission transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	app, err = lockApplication(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = fn(app); err != nil {
		return nil, err
	}

	app.UpdatedAt = time.Now().UTC()
	if _, err = tx.NamedExecContext(ctx, admissionUpdateQuery, app); err != nil {
		return nil, fmt.Errorf("update admission application: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit admission transaction: %w", err)
	}
	return app, nil
}

// PromoteToStudent runs fn under the same row lock as Transition and, when
// fn yields a student, inserts the student row and persists the application
// in one transaction. Used by the terminal fully-approve transition so two
// concurrent calls cannot both create a student.
func (r *AdmissionRepository) PromoteToStudent(ctx context.Context, id string, fn func(*models.AdmissionApplication) (*models.Student, error)) (app *models.AdmissionApplication, student *models.Student, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin admission transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	app, err = lockApplication(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	student, err = fn(app)
	if err != nil {
		return nil, nil, err
	}

	if student != nil {
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		if student.CreatedAt.IsZero() {
			student.CreatedAt = time.Now().UTC()
		}
		const insertStudent = `INSERT INTO students (id, admission_application_id, roll_number, full_name, gender, birth_date,
            phone, email, address, guardian_name, guardian_phone, created_at)
            VALUES (:id, :admission_application_id, :roll_number, :full_name, :gender, :birth_date,
            :phone, :email, :address, :guardian_name, :guardian_phone, :created_at)`
		if _, err = tx.NamedExecContext(ctx, insertStudent, student); err != nil {
			return nil, nil, fmt.Errorf("insert student: %w", err)
		}
		app.StudentID = &student.ID
	}

	app.UpdatedAt = time.Now().UTC()
	if _, err = tx.NamedExecContext(ctx, admissionUpdateQuery, app); err != nil {
		return nil, nil, fmt.Errorf("update admission application: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit admission transaction: %w", err)
	}
	return app, student, nil
}

func lockApplication(ctx context.Context, tx *sqlx.Tx, id string) (*models.AdmissionApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM admission_applications WHERE id = $1 FOR UPDATE`, admissionColumns)
	var app models.AdmissionApplication
	if err := tx.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock admission application: %w", err)
	}
	return &app, nil
}
