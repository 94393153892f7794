package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

const studentColumns = `id, admission_application_id, roll_number, full_name, gender, birth_date,
	phone, email, address, guardian_name, guardian_phone, created_at`

// StudentRepository provides reads over the student roster. Students are
// created inside admission transactions, never directly through this type.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByRoll returns a student by roll number.
func (r *StudentRepository) FindByRoll(ctx context.Context, rollNumber string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE roll_number = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, rollNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindRenewalProjection returns the public renewal-form lookup for a roll
// number: identity plus the most recent registration's session and class.
func (r *StudentRepository) FindRenewalProjection(ctx context.Context, rollNumber string) (*dto.StudentRenewalProjection, error) {
	const query = `SELECT s.id, s.full_name, s.guardian_name,
        a.name AS last_session_name, c.name AS last_class_name
        FROM students s
        LEFT JOIN LATERAL (
            SELECT class_id, academic_session_id FROM registrations
            WHERE student_id = s.id ORDER BY created_at DESC LIMIT 1
        ) reg ON TRUE
        LEFT JOIN academic_sessions a ON a.id = reg.academic_session_id
        LEFT JOIN classes c ON c.id = reg.class_id
        WHERE s.roll_number = $1`
	var projection dto.StudentRenewalProjection
	if err := r.db.GetContext(ctx, &projection, query, rollNumber); err != nil {
		return nil, err
	}
	return &projection, nil
}

// List returns students filtered by the provided criteria.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR roll_number ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":  "created_at",
		"full_name":   "full_name",
		"roll_number": "roll_number",
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
		studentColumns, base+clause, orderBy, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}
