package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type gradeBandStoreStub struct {
	bands      []models.GradeBand
	listErr    error
	replaced   []models.GradeBand
	replaceErr error
}

func (s *gradeBandStoreStub) List(ctx context.Context) ([]models.GradeBand, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.replaced != nil {
		return s.replaced, nil
	}
	return s.bands, nil
}

func (s *gradeBandStoreStub) Replace(ctx context.Context, bands []models.GradeBand) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaced = bands
	return nil
}

func defaultBands() []models.GradeBand {
	return []models.GradeBand{
		{Position: 0, MinMark: 0, MaxMark: 49, Letter: "E", Remark: "Fail"},
		{Position: 1, MinMark: 50, MaxMark: 59, Letter: "D", Remark: "Pass"},
		{Position: 2, MinMark: 60, MaxMark: 69, Letter: "C", Remark: "Credit"},
		{Position: 3, MinMark: 70, MaxMark: 79, Letter: "B", Remark: "Good"},
		{Position: 4, MinMark: 80, MaxMark: 100, Letter: "A", Remark: "Excellent"},
	}
}

func TestLookupBandBoundaries(t *testing.T) {
	bands := defaultBands()

	cases := []struct {
		score  float64
		letter string
	}{
		{0, "E"},
		{49, "E"},
		{50, "D"},
		{79, "B"},
		{80, "A"},
		{100, "A"},
	}
	for _, tc := range cases {
		band, err := lookupBand(bands, tc.score)
		require.NoError(t, err, "score %.2f", tc.score)
		assert.Equal(t, tc.letter, band.Letter, "score %.2f", tc.score)
	}
}

func TestLookupBandFractionalGapTakesLowerBand(t *testing.T) {
	// 79.5 sits between the B band's 79 and the A band's 80.
	band, err := lookupBand(defaultBands(), 79.5)
	require.NoError(t, err)
	assert.Equal(t, "B", band.Letter)
}

func TestLookupBandAboveTopIsUnmatched(t *testing.T) {
	_, err := lookupBand(defaultBands(), 150)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoBandMatch))
}

func TestValidateBands(t *testing.T) {
	cases := []struct {
		name    string
		bands   []models.GradeBand
		wantErr string
	}{
		{name: "valid", bands: defaultBands()},
		{name: "empty", bands: nil, wantErr: "at least one grade band"},
		{name: "not starting at zero", bands: []models.GradeBand{{MinMark: 5, MaxMark: 100, Letter: "P"}}, wantErr: "must start at 0"},
		{name: "not ending at hundred", bands: []models.GradeBand{{MinMark: 0, MaxMark: 90, Letter: "P"}}, wantErr: "must end at 100"},
		{name: "min above max", bands: []models.GradeBand{{MinMark: 60, MaxMark: 50, Letter: "P"}}, wantErr: "min_mark exceeds max_mark"},
		{name: "out of bounds", bands: []models.GradeBand{{MinMark: 0, MaxMark: 120, Letter: "P"}}, wantErr: "within [0,100]"},
		{
			name: "overlap",
			bands: []models.GradeBand{
				{MinMark: 0, MaxMark: 50, Letter: "E"},
				{MinMark: 50, MaxMark: 100, Letter: "A"},
			},
			wantErr: "rows 0 and 1 overlap",
		},
		{
			name: "gap",
			bands: []models.GradeBand{
				{MinMark: 0, MaxMark: 49, Letter: "E"},
				{MinMark: 51, MaxMark: 100, Letter: "A"},
			},
			wantErr: "gap between rows 0 and 1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBands(tc.bands)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrBandConfig))
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGradeBandServiceSaveRejectsInvalidTable(t *testing.T) {
	store := &gradeBandStoreStub{}
	svc := NewGradeBandService(store, nil, nil)

	_, err := svc.Save(context.Background(), SaveGradeBandsRequest{Bands: []GradeBandRequest{
		{MinMark: 0, MaxMark: 49, Letter: "E"},
		{MinMark: 60, MaxMark: 100, Letter: "A"},
	}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrBandConfig))
	assert.Nil(t, store.replaced)
}

func TestGradeBandServiceSaveAssignsPositions(t *testing.T) {
	store := &gradeBandStoreStub{}
	svc := NewGradeBandService(store, nil, nil)

	stored, err := svc.Save(context.Background(), SaveGradeBandsRequest{Bands: []GradeBandRequest{
		{MinMark: 0, MaxMark: 49, Letter: "E"},
		{MinMark: 50, MaxMark: 100, Letter: "A"},
	}})
	require.NoError(t, err)
	require.Len(t, store.replaced, 2)
	assert.Equal(t, 0, store.replaced[0].Position)
	assert.Equal(t, 1, store.replaced[1].Position)
	require.Len(t, stored, 2)
	assert.Equal(t, "E", stored[0].Letter)
}
