package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// ResultRepository persists derived subject results. Rows are only ever
// written by the recompute pipeline, never hand-edited.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveGroupRanked writes recomputed results and the whole group's ranks in a
// single transaction. Readers observe either the previous snapshot or the
// fully reranked one, never a fresh final score next to stale or missing
// ranks.
func (r *ResultRepository) SaveGroupRanked(ctx context.Context, group models.GroupKey, changed []*models.SubjectResult, ranks map[string]int) error {
	if len(changed) == 0 && len(ranks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	const upsert = `INSERT INTO subject_results (id, student_id, class_id, subject_id, term_id, academic_year_id,
            midterm_total, class_total, exam_total, midterm_weighted, class_weighted, exam_weighted,
            final_score, letter_grade, remark, rank, calculated_at)
        VALUES (:id, :student_id, :class_id, :subject_id, :term_id, :academic_year_id,
            :midterm_total, :class_total, :exam_total, :midterm_weighted, :class_weighted, :exam_weighted,
            :final_score, :letter_grade, :remark, :rank, :calculated_at)
        ON CONFLICT (student_id, subject_id, term_id, academic_year_id)
        DO UPDATE SET class_id = EXCLUDED.class_id,
            midterm_total = EXCLUDED.midterm_total, class_total = EXCLUDED.class_total, exam_total = EXCLUDED.exam_total,
            midterm_weighted = EXCLUDED.midterm_weighted, class_weighted = EXCLUDED.class_weighted, exam_weighted = EXCLUDED.exam_weighted,
            final_score = EXCLUDED.final_score, letter_grade = EXCLUDED.letter_grade, remark = EXCLUDED.remark,
            rank = EXCLUDED.rank, calculated_at = EXCLUDED.calculated_at`
	for _, result := range changed {
		if result.ID == "" {
			result.ID = uuid.NewString()
		}
		if result.CalculatedAt.IsZero() {
			result.CalculatedAt = time.Now().UTC()
		}
		if _, err := tx.NamedExecContext(ctx, upsert, result); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert subject result: %w", err)
		}
	}
	const rankQuery = `UPDATE subject_results SET rank = $1
        WHERE student_id = $2 AND class_id = $3 AND subject_id = $4 AND term_id = $5 AND academic_year_id = $6`
	for studentID, rank := range ranks {
		if _, err := tx.ExecContext(ctx, rankQuery, rank, studentID, group.ClassID, group.SubjectID, group.TermID, group.AcademicYearID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update rank: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit group results: %w", err)
	}
	return nil
}

// Get returns the result for one student scope; sql.ErrNoRows when absent.
func (r *ResultRepository) Get(ctx context.Context, studentID, subjectID, termID, yearID string) (*models.SubjectResult, error) {
	const query = `SELECT id, student_id, class_id, subject_id, term_id, academic_year_id,
            midterm_total, class_total, exam_total, midterm_weighted, class_weighted, exam_weighted,
            final_score, letter_grade, remark, rank, calculated_at
        FROM subject_results
        WHERE student_id = $1 AND subject_id = $2 AND term_id = $3 AND academic_year_id = $4`
	var result models.SubjectResult
	if err := r.db.GetContext(ctx, &result, query, studentID, subjectID, termID, yearID); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListByGroup returns every result in a class+subject+term+year group.
func (r *ResultRepository) ListByGroup(ctx context.Context, group models.GroupKey) ([]models.SubjectResult, error) {
	const query = `SELECT id, student_id, class_id, subject_id, term_id, academic_year_id,
            midterm_total, class_total, exam_total, midterm_weighted, class_weighted, exam_weighted,
            final_score, letter_grade, remark, rank, calculated_at
        FROM subject_results
        WHERE class_id = $1 AND subject_id = $2 AND term_id = $3 AND academic_year_id = $4
        ORDER BY final_score DESC, student_id`
	var results []models.SubjectResult
	if err := r.db.SelectContext(ctx, &results, query, group.ClassID, group.SubjectID, group.TermID, group.AcademicYearID); err != nil {
		return nil, fmt.Errorf("list group results: %w", err)
	}
	return results, nil
}
