package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type weightConfigStore interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
	Save(ctx context.Context, cfg *models.WeightConfig) error
}

type listingInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SaveWeightsRequest carries the three component weights in percentage points.
type SaveWeightsRequest struct {
	MidtermWeight int `json:"midterm_weight"`
	ClassWeight   int `json:"class_weight"`
	ExamWeight    int `json:"exam_weight"`
}

// WeightConfigService guards the weight invariant around the singleton store.
type WeightConfigService struct {
	repo   weightConfigStore
	cache  listingInvalidator
	logger *zap.Logger
}

// NewWeightConfigService constructs service.
func NewWeightConfigService(repo weightConfigStore, cache listingInvalidator, logger *zap.Logger) *WeightConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightConfigService{repo: repo, cache: cache, logger: logger}
}

// Get returns the current configuration.
func (s *WeightConfigService) Get(ctx context.Context) (*models.WeightConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConfigMissing, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight config")
	}
	return cfg, nil
}

// Save validates and persists the weights. A config violating the sum
// invariant never reaches the store. Cached listings are invalidated;
// persisted results refresh on the next mutation or explicit recalculation.
func (s *WeightConfigService) Save(ctx context.Context, req SaveWeightsRequest) (*models.WeightConfig, error) {
	if req.MidtermWeight < 0 || req.ClassWeight < 0 || req.ExamWeight < 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "weights must be non-negative")
	}
	sum := req.MidtermWeight + req.ClassWeight + req.ExamWeight
	if sum != 100 {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("weights sum to %d, must sum to exactly 100", sum))
	}
	cfg := &models.WeightConfig{
		MidtermWeight: req.MidtermWeight,
		ClassWeight:   req.ClassWeight,
		ExamWeight:    req.ExamWeight,
	}
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weight config")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "grading:results:*"); err != nil {
			s.logger.Warn("failed to invalidate listing cache after weight change", zap.Error(err))
		}
	}
	return cfg, nil
}
