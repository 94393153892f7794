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

const renewalColumns = `id, student_id, academic_session_id, class_id, section_id,
	contact_override, address_override, status, status_reason, registration_id, created_at, resolved_at`

// RenewalRepository handles persistence of renewal applications and the
// registrations their approval produces.
type RenewalRepository struct {
	db *sqlx.DB
}

// NewRenewalRepository constructs the repository.
func NewRenewalRepository(db *sqlx.DB) *RenewalRepository {
	return &RenewalRepository{db: db}
}

// Create persists a new renewal request.
func (r *RenewalRepository) Create(ctx context.Context, renewal *models.RenewalApplication) error {
	if renewal.ID == "" {
		renewal.ID = uuid.NewString()
	}
	if renewal.CreatedAt.IsZero() {
		renewal.CreatedAt = time.Now().UTC()
	}
	if renewal.Status == "" {
		renewal.Status = models.RenewalStatusPending
	}
	const query = `INSERT INTO renewal_applications (id, student_id, academic_session_id, class_id, section_id,
        contact_override, address_override, status, status_reason, registration_id, created_at, resolved_at)
        VALUES (:id, :student_id, :academic_session_id, :class_id, :section_id,
        :contact_override, :address_override, :status, :status_reason, :registration_id, :created_at, :resolved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, renewal); err != nil {
		return fmt.Errorf("create renewal application: %w", err)
	}
	return nil
}

// FindByID returns a renewal application by its ID.
func (r *RenewalRepository) FindByID(ctx context.Context, id string) (*models.RenewalApplication, error) {
	query := fmt.Sprintf(`SELECT %s FROM renewal_applications WHERE id = $1`, renewalColumns)
	var renewal models.RenewalApplication
	if err := r.db.GetContext(ctx, &renewal, query, id); err != nil {
		return nil, err
	}
	return &renewal, nil
}

// List returns renewal applications filtered by the provided criteria.
func (r *RenewalRepository) List(ctx context.Context, filter models.RenewalFilter) ([]models.RenewalApplication, int, error) {
	base := "FROM renewal_applications"
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		renewalColumns, base+clause, size, offset)

	var renewals []models.RenewalApplication
	if err := r.db.SelectContext(ctx, &renewals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list renewal applications: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count renewal applications: %w", err)
	}
	return renewals, total, nil
}

const renewalUpdateQuery = `UPDATE renewal_applications SET
	status = :status, status_reason = :status_reason, registration_id = :registration_id, resolved_at = :resolved_at
	WHERE id = :id`

// Resolve loads the renewal under a row lock, applies fn and persists the
// review fields atomically. When fn yields a registration it is inserted in
// the same transaction, so an approved renewal produces exactly one
// registration. sql.ErrNoRows propagates when the id is unknown.
func (r *RenewalRepository) Resolve(ctx context.Context, id string, fn func(*models.RenewalApplication) (*models.Registration, error)) (renewal *models.RenewalApplication, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin renewal transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`SELECT %s FROM renewal_applications WHERE id = $1 FOR UPDATE`, renewalColumns)
	var locked models.RenewalApplication
	if err = tx.GetContext(ctx, &locked, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock renewal application: %w", err)
	}
	renewal = &locked

	registration, err := fn(renewal)
	if err != nil {
		return nil, err
	}

	if registration != nil {
		if registration.ID == "" {
			registration.ID = uuid.NewString()
		}
		if registration.CreatedAt.IsZero() {
			registration.CreatedAt = time.Now().UTC()
		}
		const insertRegistration = `INSERT INTO registrations (id, student_id, class_id, section_id, academic_session_id,
            renewal_application_id, created_at)
            VALUES (:id, :student_id, :class_id, :section_id, :academic_session_id,
            :renewal_application_id, :created_at)`
		if _, err = tx.NamedExecContext(ctx, insertRegistration, registration); err != nil {
			return nil, fmt.Errorf("insert registration: %w", err)
		}
		renewal.RegistrationID = &registration.ID
	}

	if _, err = tx.NamedExecContext(ctx, renewalUpdateQuery, renewal); err != nil {
		return nil, fmt.Errorf("update renewal application: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit renewal transaction: %w", err)
	}
	return renewal, nil
}
