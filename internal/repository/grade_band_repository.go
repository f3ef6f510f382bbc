package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// GradeBandRepository manages the administrator-defined grade band table.
type GradeBandRepository struct {
	db *sqlx.DB
}

// NewGradeBandRepository creates a new repository instance.
func NewGradeBandRepository(db *sqlx.DB) *GradeBandRepository {
	return &GradeBandRepository{db: db}
}

// List returns the bands ordered by position.
func (r *GradeBandRepository) List(ctx context.Context) ([]models.GradeBand, error) {
	const query = `SELECT id, position, min_mark, max_mark, letter, remark FROM grade_bands ORDER BY position`
	var bands []models.GradeBand
	if err := r.db.SelectContext(ctx, &bands, query); err != nil {
		return nil, fmt.Errorf("list grade bands: %w", err)
	}
	return bands, nil
}

// Replace rewrites the whole band table in a transaction. The service
// validates the partition before calling this.
func (r *GradeBandRepository) Replace(ctx context.Context, bands []models.GradeBand) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_bands"); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear grade bands: %w", err)
	}
	const insert = `INSERT INTO grade_bands (id, position, min_mark, max_mark, letter, remark)
        VALUES (:id, :position, :min_mark, :max_mark, :letter, :remark)`
	for i := range bands {
		if bands[i].ID == "" {
			bands[i].ID = uuid.NewString()
		}
		bands[i].Position = i
		if _, err := tx.NamedExecContext(ctx, insert, bands[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grade band: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade bands: %w", err)
	}
	return nil
}
