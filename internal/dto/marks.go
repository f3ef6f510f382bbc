package dto

import (
	"time"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// ComputedResult is the boundary shape of a derived result: the flat stored
// row re-expressed with per-component maps for display clients.
type ComputedResult struct {
	StudentID             string                           `json:"student_id"`
	ClassID               string                           `json:"class_id"`
	SubjectID             string                           `json:"subject_id"`
	TermID                string                           `json:"term_id"`
	AcademicYearID        string                           `json:"academic_year_id"`
	ComponentTotals       map[models.ComponentType]float64 `json:"component_totals"`
	WeightedContributions map[models.ComponentType]float64 `json:"weighted_contributions"`
	FinalScore            float64                          `json:"final_score"`
	LetterGrade           *string                          `json:"letter_grade"`
	Remark                string                           `json:"remark"`
	Rank                  *int                             `json:"rank"`
	CalculatedAt          time.Time                        `json:"calculated_at"`
}

// NewComputedResult maps a stored SubjectResult into the boundary shape.
func NewComputedResult(r models.SubjectResult) ComputedResult {
	totals := make(map[models.ComponentType]float64, 3)
	weighted := make(map[models.ComponentType]float64, 3)
	for _, t := range models.AllComponentTypes() {
		totals[t] = r.ComponentTotal(t)
		weighted[t] = r.WeightedContribution(t)
	}
	return ComputedResult{
		StudentID:             r.StudentID,
		ClassID:               r.ClassID,
		SubjectID:             r.SubjectID,
		TermID:                r.TermID,
		AcademicYearID:        r.AcademicYearID,
		ComponentTotals:       totals,
		WeightedContributions: weighted,
		FinalScore:            r.FinalScore,
		LetterGrade:           r.LetterGrade,
		Remark:                r.Remark,
		Rank:                  r.Rank,
		CalculatedAt:          r.CalculatedAt,
	}
}

// MarkDetails pairs a computed result with the raw marks that produced it,
// for display and edit forms.
type MarkDetails struct {
	Result   ComputedResult                     `json:"result"`
	RawMarks map[models.ComponentType][]float64 `json:"raw_marks"`
}
