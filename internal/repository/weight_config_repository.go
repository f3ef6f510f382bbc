package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// WeightConfigRepository manages the single-row weight configuration.
type WeightConfigRepository struct {
	db *sqlx.DB
}

// NewWeightConfigRepository creates a new repository instance.
func NewWeightConfigRepository(db *sqlx.DB) *WeightConfigRepository {
	return &WeightConfigRepository{db: db}
}

// Get returns the current config; sql.ErrNoRows when never initialized.
func (r *WeightConfigRepository) Get(ctx context.Context) (*models.WeightConfig, error) {
	const query = `SELECT midterm_weight, class_weight, exam_weight, updated_at FROM weight_config WHERE id = 1`
	var cfg models.WeightConfig
	if err := r.db.GetContext(ctx, &cfg, query); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the singleton row. Invariant checks happen in the service.
func (r *WeightConfigRepository) Save(ctx context.Context, cfg *models.WeightConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO weight_config (id, midterm_weight, class_weight, exam_weight, updated_at)
        VALUES (1, $1, $2, $3, $4)
        ON CONFLICT (id)
        DO UPDATE SET midterm_weight = EXCLUDED.midterm_weight, class_weight = EXCLUDED.class_weight,
            exam_weight = EXCLUDED.exam_weight, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, cfg.MidtermWeight, cfg.ClassWeight, cfg.ExamWeight, cfg.UpdatedAt); err != nil {
		return fmt.Errorf("save weight config: %w", err)
	}
	return nil
}
