package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// MarkRepository persists raw mark components.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new repository instance.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

// Upsert replaces or creates the raw-mark list for the component identity.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.MarkComponent) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now
	const query = `INSERT INTO mark_components (id, student_id, subject_id, term_id, academic_year_id, component_type, raw_marks, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :term_id, :academic_year_id, :component_type, :raw_marks, :created_at, :updated_at)
        ON CONFLICT (student_id, subject_id, term_id, academic_year_id, component_type)
        DO UPDATE SET raw_marks = EXCLUDED.raw_marks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark component: %w", err)
	}
	return nil
}

// Get returns the component for the identity tuple; sql.ErrNoRows when absent.
func (r *MarkRepository) Get(ctx context.Context, key models.MarkKey) (*models.MarkComponent, error) {
	const query = `SELECT id, student_id, subject_id, term_id, academic_year_id, component_type, raw_marks, created_at, updated_at
        FROM mark_components
        WHERE student_id = $1 AND subject_id = $2 AND term_id = $3 AND academic_year_id = $4 AND component_type = $5`
	var mark models.MarkComponent
	if err := r.db.GetContext(ctx, &mark, query, key.StudentID, key.SubjectID, key.TermID, key.AcademicYearID, key.ComponentType); err != nil {
		return nil, err
	}
	return &mark, nil
}

// ListForStudent returns every component for one student+subject+term+year.
func (r *MarkRepository) ListForStudent(ctx context.Context, studentID, subjectID, termID, yearID string) ([]models.MarkComponent, error) {
	const query = `SELECT id, student_id, subject_id, term_id, academic_year_id, component_type, raw_marks, created_at, updated_at
        FROM mark_components
        WHERE student_id = $1 AND subject_id = $2 AND term_id = $3 AND academic_year_id = $4
        ORDER BY component_type`
	var marks []models.MarkComponent
	if err := r.db.SelectContext(ctx, &marks, query, studentID, subjectID, termID, yearID); err != nil {
		return nil, fmt.Errorf("list mark components: %w", err)
	}
	return marks, nil
}

// Delete removes the component; sql.ErrNoRows when nothing matched.
func (r *MarkRepository) Delete(ctx context.Context, key models.MarkKey) error {
	const query = `DELETE FROM mark_components
        WHERE student_id = $1 AND subject_id = $2 AND term_id = $3 AND academic_year_id = $4 AND component_type = $5`
	res, err := r.db.ExecContext(ctx, query, key.StudentID, key.SubjectID, key.TermID, key.AcademicYearID, key.ComponentType)
	if err != nil {
		return fmt.Errorf("delete mark component: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mark component: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
