package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
)

// AcademicRepository reads the reference tables renewals resolve against.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs the repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// FindClassByID returns a class by its ID.
func (r *AcademicRepository) FindClassByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindSectionByID returns a section by its ID.
func (r *AcademicRepository) FindSectionByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, class_id, name FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindSessionByID returns an academic session by its ID.
func (r *AcademicRepository) FindSessionByID(ctx context.Context, id string) (*models.AcademicSession, error) {
	const query = `SELECT id, name FROM academic_sessions WHERE id = $1`
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}
