package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type weightStoreStub struct {
	cfg     *models.WeightConfig
	getErr  error
	saved   *models.WeightConfig
	saveErr error
}

func (s *weightStoreStub) Get(ctx context.Context) (*models.WeightConfig, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.cfg, nil
}

func (s *weightStoreStub) Save(ctx context.Context, cfg *models.WeightConfig) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = cfg
	return nil
}

type invalidatorStub struct {
	patterns []string
	err      error
}

func (s *invalidatorStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return s.err
}

func TestSaveWeightsRejectsBadSum(t *testing.T) {
	store := &weightStoreStub{}
	svc := NewWeightConfigService(store, nil, nil)

	_, err := svc.Save(context.Background(), SaveWeightsRequest{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 41})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidWeights))
	assert.Contains(t, err.Error(), "sum to 101")
	assert.Nil(t, store.saved)
}

func TestSaveWeightsRejectsNegative(t *testing.T) {
	store := &weightStoreStub{}
	svc := NewWeightConfigService(store, nil, nil)

	_, err := svc.Save(context.Background(), SaveWeightsRequest{MidtermWeight: -10, ClassWeight: 70, ExamWeight: 40})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidWeights))
	assert.Nil(t, store.saved)
}

func TestSaveWeightsPersistsAndInvalidatesListings(t *testing.T) {
	store := &weightStoreStub{}
	cache := &invalidatorStub{}
	svc := NewWeightConfigService(store, cache, nil)

	cfg, err := svc.Save(context.Background(), SaveWeightsRequest{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 40})
	require.NoError(t, err)
	require.NotNil(t, store.saved)
	assert.Equal(t, 30, cfg.MidtermWeight)
	assert.Equal(t, 30, cfg.ClassWeight)
	assert.Equal(t, 40, cfg.ExamWeight)
	assert.Equal(t, []string{"grading:results:*"}, cache.patterns)
}

func TestGetWeightsMissingConfig(t *testing.T) {
	store := &weightStoreStub{getErr: sql.ErrNoRows}
	svc := NewWeightConfigService(store, nil, nil)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfigMissing))
}
