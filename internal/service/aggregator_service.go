package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

// UngradedRemark marks a result whose final score fell outside every band.
// Stale or misconfigured band tables stay visible instead of silently
// defaulting to a wrong grade.
const UngradedRemark = "Ungraded: score exceeds configured bands"

type aggregatorMarkReader interface {
	ListForStudent(ctx context.Context, studentID, subjectID, termID, yearID string) ([]models.MarkComponent, error)
}

type weightConfigReader interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
}

type bandResolver interface {
	Lookup(ctx context.Context, score float64) (*models.GradeBand, error)
}

// Aggregator turns stored raw marks into a student's derived subject result:
// component totals, weighted contributions, final score and letter grade.
type Aggregator struct {
	marks   aggregatorMarkReader
	weights weightConfigReader
	bands   bandResolver
	logger  *zap.Logger
	round   func(float64) float64
	now     func() time.Time
}

// NewAggregator constructs Aggregator.
func NewAggregator(marks aggregatorMarkReader, weights weightConfigReader, bands bandResolver, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		marks:   marks,
		weights: weights,
		bands:   bands,
		logger:  logger,
		// round half-up to 2 decimals
		round: func(v float64) float64 { return math.Floor(v*100+0.5) / 100 },
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ComputeResult recomputes the result for one student scope. Rank is left
// unset; the caller ranks the whole group and persists results and ranks
// together. Given identical stored marks and config the computation is
// deterministic.
func (a *Aggregator) ComputeResult(ctx context.Context, studentID, classID, subjectID, termID, yearID string) (*models.SubjectResult, error) {
	cfg, err := a.weights.Get(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConfigMissing, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight config")
	}

	marks, err := a.marks.ListForStudent(ctx, studentID, subjectID, termID, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mark components")
	}

	// Absent components count as total 0; multiple raw marks sum, never average.
	totals := make(map[models.ComponentType]float64, 3)
	for _, mark := range marks {
		totals[mark.ComponentType] = mark.Total()
	}

	var finalScore float64
	weighted := make(map[models.ComponentType]float64, 3)
	for _, t := range models.AllComponentTypes() {
		weighted[t] = totals[t] * float64(cfg.WeightFor(t)) / 100
		finalScore += weighted[t]
	}
	finalScore = a.round(finalScore)

	result := &models.SubjectResult{
		StudentID:       studentID,
		ClassID:         classID,
		SubjectID:       subjectID,
		TermID:          termID,
		AcademicYearID:  yearID,
		MidtermTotal:    totals[models.ComponentMidterm],
		ClassTotal:      totals[models.ComponentClassScore],
		ExamTotal:       totals[models.ComponentExamScore],
		MidtermWeighted: weighted[models.ComponentMidterm],
		ClassWeighted:   weighted[models.ComponentClassScore],
		ExamWeighted:    weighted[models.ComponentExamScore],
		FinalScore:      finalScore,
		CalculatedAt:    a.now(),
	}

	band, err := a.bands.Lookup(ctx, finalScore)
	switch {
	case err == nil:
		letter := band.Letter
		result.LetterGrade = &letter
		result.Remark = band.Remark
	case appErrors.Is(err, appErrors.ErrNoBandMatch):
		result.LetterGrade = nil
		result.Remark = UngradedRemark
		a.logger.Warn("final score outside configured grade bands",
			zap.String("student_id", studentID),
			zap.String("subject_id", subjectID),
			zap.Float64("final_score", finalScore))
	default:
		return nil, err
	}

	return result, nil
}
