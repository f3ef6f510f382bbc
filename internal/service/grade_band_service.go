package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type gradeBandStore interface {
	List(ctx context.Context) ([]models.GradeBand, error)
	Replace(ctx context.Context, bands []models.GradeBand) error
}

// GradeBandRequest is one row of the admin band table payload.
type GradeBandRequest struct {
	MinMark int    `json:"min_mark"`
	MaxMark int    `json:"max_mark"`
	Letter  string `json:"letter" validate:"required"`
	Remark  string `json:"remark"`
}

// SaveGradeBandsRequest replaces the whole band table.
type SaveGradeBandsRequest struct {
	Bands []GradeBandRequest `json:"bands" validate:"required,dive"`
}

// GradeBandService validates and serves the letter-grade band table.
type GradeBandService struct {
	repo      gradeBandStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeBandService constructs service.
func NewGradeBandService(repo gradeBandStore, validate *validator.Validate, logger *zap.Logger) *GradeBandService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeBandService{repo: repo, validator: validate, logger: logger}
}

// List returns the configured bands.
func (s *GradeBandService) List(ctx context.Context) ([]models.GradeBand, error) {
	bands, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade bands")
	}
	return bands, nil
}

// Save validates and replaces the band table. Violations are rejected with
// the offending row indices before any score lookup can use the table.
func (s *GradeBandService) Save(ctx context.Context, req SaveGradeBandsRequest) ([]models.GradeBand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid band payload")
	}
	bands := make([]models.GradeBand, len(req.Bands))
	for i, b := range req.Bands {
		bands[i] = models.GradeBand{Position: i, MinMark: b.MinMark, MaxMark: b.MaxMark, Letter: b.Letter, Remark: b.Remark}
	}
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, bands); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade bands")
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade bands")
	}
	return stored, nil
}

// Lookup resolves a score to a band. A fractional score that lands between
// two whole-mark bands resolves to the lower band; only a score above the
// top band fails with NoBandMatch.
func (s *GradeBandService) Lookup(ctx context.Context, score float64) (*models.GradeBand, error) {
	bands, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade bands")
	}
	return lookupBand(bands, score)
}

func lookupBand(bands []models.GradeBand, score float64) (*models.GradeBand, error) {
	sort.Slice(bands, func(i, j int) bool { return bands[i].MinMark < bands[j].MinMark })
	for i := len(bands) - 1; i >= 0; i-- {
		band := bands[i]
		if score < float64(band.MinMark) {
			continue
		}
		if band.Contains(score) || i < len(bands)-1 {
			return &band, nil
		}
		break
	}
	return nil, appErrors.Clone(appErrors.ErrNoBandMatch, fmt.Sprintf("score %.2f does not fall into any configured band", score))
}

// ValidateBands checks that the rows partition [0,100] in whole marks:
// each row min <= max, the table starts at 0, ends at 100, and every band
// starts one mark after the previous band's max.
func ValidateBands(bands []models.GradeBand) error {
	if len(bands) == 0 {
		return appErrors.Clone(appErrors.ErrBandConfig, "at least one grade band is required")
	}
	for i, b := range bands {
		if b.MinMark < 0 || b.MaxMark > 100 {
			return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("row %d: bounds must be within [0,100]", i))
		}
		if b.MinMark > b.MaxMark {
			return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("row %d: min_mark exceeds max_mark", i))
		}
	}

	order := make([]int, len(bands))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return bands[order[i]].MinMark < bands[order[j]].MinMark })

	if bands[order[0]].MinMark != 0 {
		return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("row %d: bands must start at 0", order[0]))
	}
	for k := 1; k < len(order); k++ {
		prev, curr := order[k-1], order[k]
		if bands[curr].MinMark <= bands[prev].MaxMark {
			return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("rows %d and %d overlap", prev, curr))
		}
		if bands[curr].MinMark != bands[prev].MaxMark+1 {
			return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("gap between rows %d and %d", prev, curr))
		}
	}
	if bands[order[len(order)-1]].MaxMark != 100 {
		return appErrors.Clone(appErrors.ErrBandConfig, fmt.Sprintf("row %d: bands must end at 100", order[len(order)-1]))
	}
	return nil
}
