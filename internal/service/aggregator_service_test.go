package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type aggMarkReaderStub struct {
	marks []models.MarkComponent
	err   error
}

func (s aggMarkReaderStub) ListForStudent(ctx context.Context, studentID, subjectID, termID, yearID string) ([]models.MarkComponent, error) {
	return s.marks, s.err
}

type weightReaderStub struct {
	cfg *models.WeightConfig
	err error
}

func (s weightReaderStub) Get(ctx context.Context) (*models.WeightConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

type bandResolverStub struct {
	band      *models.GradeBand
	err       error
	lastScore float64
}

func (s *bandResolverStub) Lookup(ctx context.Context, score float64) (*models.GradeBand, error) {
	s.lastScore = score
	if s.err != nil {
		return nil, s.err
	}
	return s.band, nil
}

func TestAggregatorComputesWeightedFinalScore(t *testing.T) {
	marks := aggMarkReaderStub{marks: []models.MarkComponent{
		{ComponentType: models.ComponentMidterm, RawMarks: []float64{80}},
		{ComponentType: models.ComponentClassScore, RawMarks: []float64{40, 50}},
		{ComponentType: models.ComponentExamScore, RawMarks: []float64{70}},
	}}
	weights := weightReaderStub{cfg: &models.WeightConfig{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 40}}
	bands := &bandResolverStub{band: &models.GradeBand{MinMark: 70, MaxMark: 79, Letter: "B", Remark: "Good"}}

	agg := NewAggregator(marks, weights, bands, nil)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	result, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)

	assert.Equal(t, 80.0, result.MidtermTotal)
	assert.Equal(t, 90.0, result.ClassTotal)
	assert.Equal(t, 70.0, result.ExamTotal)
	assert.Equal(t, 24.0, result.MidtermWeighted)
	assert.Equal(t, 27.0, result.ClassWeighted)
	assert.Equal(t, 28.0, result.ExamWeighted)
	assert.Equal(t, 79.0, result.FinalScore)
	assert.Equal(t, 79.0, bands.lastScore)
	require.NotNil(t, result.LetterGrade)
	assert.Equal(t, "B", *result.LetterGrade)
	assert.Equal(t, "Good", result.Remark)
	assert.Nil(t, result.Rank)
	assert.Equal(t, fixed, result.CalculatedAt)
}

func TestAggregatorTreatsMissingComponentsAsZero(t *testing.T) {
	marks := aggMarkReaderStub{marks: []models.MarkComponent{
		{ComponentType: models.ComponentExamScore, RawMarks: []float64{50}},
	}}
	weights := weightReaderStub{cfg: &models.WeightConfig{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 40}}
	bands := &bandResolverStub{band: &models.GradeBand{MinMark: 0, MaxMark: 49, Letter: "E"}}

	agg := NewAggregator(marks, weights, bands, nil)
	result, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)

	assert.Zero(t, result.MidtermTotal)
	assert.Zero(t, result.ClassTotal)
	assert.Equal(t, 50.0, result.ExamTotal)
	assert.Equal(t, 20.0, result.FinalScore)
}

func TestAggregatorRoundsHalfUp(t *testing.T) {
	marks := aggMarkReaderStub{marks: []models.MarkComponent{
		{ComponentType: models.ComponentMidterm, RawMarks: []float64{79.125}},
	}}
	weights := weightReaderStub{cfg: &models.WeightConfig{MidtermWeight: 100, ClassWeight: 0, ExamWeight: 0}}
	bands := &bandResolverStub{band: &models.GradeBand{MinMark: 0, MaxMark: 100, Letter: "P"}}

	agg := NewAggregator(marks, weights, bands, nil)
	result, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)

	// the half at the third decimal rounds up, not to even
	assert.Equal(t, 79.13, result.FinalScore)
}

func TestAggregatorUngradedWhenNoBandMatches(t *testing.T) {
	marks := aggMarkReaderStub{marks: []models.MarkComponent{
		{ComponentType: models.ComponentMidterm, RawMarks: []float64{100, 100, 100, 100}},
	}}
	weights := weightReaderStub{cfg: &models.WeightConfig{MidtermWeight: 100, ClassWeight: 0, ExamWeight: 0}}
	bands := &bandResolverStub{err: appErrors.Clone(appErrors.ErrNoBandMatch, "")}

	agg := NewAggregator(marks, weights, bands, nil)
	result, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)

	assert.Nil(t, result.LetterGrade)
	assert.Equal(t, UngradedRemark, result.Remark)
	assert.Equal(t, 400.0, result.FinalScore)
}

func TestAggregatorRequiresWeightConfig(t *testing.T) {
	marks := aggMarkReaderStub{}
	weights := weightReaderStub{err: sql.ErrNoRows}

	agg := NewAggregator(marks, weights, &bandResolverStub{}, nil)
	_, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConfigMissing))
}

func TestAggregatorIsDeterministic(t *testing.T) {
	marks := aggMarkReaderStub{marks: []models.MarkComponent{
		{ComponentType: models.ComponentMidterm, RawMarks: []float64{77.7}},
		{ComponentType: models.ComponentExamScore, RawMarks: []float64{66.6, 11.1}},
	}}
	weights := weightReaderStub{cfg: &models.WeightConfig{MidtermWeight: 30, ClassWeight: 30, ExamWeight: 40}}
	bands := &bandResolverStub{band: &models.GradeBand{MinMark: 0, MaxMark: 100, Letter: "P"}}

	agg := NewAggregator(marks, weights, bands, nil)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	first, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)
	second, err := agg.ComputeResult(context.Background(), "s1", "c1", "sub1", "t1", "y1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
