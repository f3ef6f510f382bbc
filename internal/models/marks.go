package models

import (
	"time"

	"github.com/lib/pq"
)

// ComponentType identifies one of the three graded inputs for a subject.
type ComponentType string

const (
	// ComponentMidterm is the midterm component.
	ComponentMidterm ComponentType = "midterm"
	// ComponentClassScore accumulates class tests and assignments.
	ComponentClassScore ComponentType = "class_score"
	// ComponentExamScore is the end-of-term exam component.
	ComponentExamScore ComponentType = "exam_score"
)

// AllComponentTypes lists the component types in aggregation order.
func AllComponentTypes() []ComponentType {
	return []ComponentType{ComponentMidterm, ComponentClassScore, ComponentExamScore}
}

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentMidterm, ComponentClassScore, ComponentExamScore:
		return true
	}
	return false
}

// MarkComponent holds the raw marks entered for one component of one
// student+subject+term+year. Multiple raw marks sum into the component total.
type MarkComponent struct {
	ID             string          `db:"id" json:"id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	SubjectID      string          `db:"subject_id" json:"subject_id"`
	TermID         string          `db:"term_id" json:"term_id"`
	AcademicYearID string          `db:"academic_year_id" json:"academic_year_id"`
	ComponentType  ComponentType   `db:"component_type" json:"component_type"`
	RawMarks       pq.Float64Array `db:"raw_marks" json:"raw_marks"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Total sums the raw marks. Summation is intentional: several class tests
// accumulate into one component score.
func (m MarkComponent) Total() float64 {
	var sum float64
	for _, v := range m.RawMarks {
		sum += v
	}
	return sum
}

// MarkKey identifies a single mark component.
type MarkKey struct {
	StudentID      string
	SubjectID      string
	TermID         string
	AcademicYearID string
	ComponentType  ComponentType
}

// GroupKey scopes one ranking pass: all students sharing class+subject+term+year.
type GroupKey struct {
	ClassID        string `json:"class_id"`
	SubjectID      string `json:"subject_id"`
	TermID         string `json:"term_id"`
	AcademicYearID string `json:"academic_year_id"`
}

// SubjectResult is the derived record for one student+subject+term+year.
// Never edited directly: always regenerated by the aggregator and ranker.
type SubjectResult struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	ClassID         string    `db:"class_id" json:"class_id"`
	SubjectID       string    `db:"subject_id" json:"subject_id"`
	TermID          string    `db:"term_id" json:"term_id"`
	AcademicYearID  string    `db:"academic_year_id" json:"academic_year_id"`
	MidtermTotal    float64   `db:"midterm_total" json:"midterm_total"`
	ClassTotal      float64   `db:"class_total" json:"class_total"`
	ExamTotal       float64   `db:"exam_total" json:"exam_total"`
	MidtermWeighted float64   `db:"midterm_weighted" json:"midterm_weighted"`
	ClassWeighted   float64   `db:"class_weighted" json:"class_weighted"`
	ExamWeighted    float64   `db:"exam_weighted" json:"exam_weighted"`
	FinalScore      float64   `db:"final_score" json:"final_score"`
	LetterGrade     *string   `db:"letter_grade" json:"letter_grade"`
	Remark          string    `db:"remark" json:"remark"`
	Rank            *int      `db:"rank" json:"rank"`
	CalculatedAt    time.Time `db:"calculated_at" json:"calculated_at"`
}

// ComponentTotal returns the stored total for the given component type.
func (r SubjectResult) ComponentTotal(t ComponentType) float64 {
	switch t {
	case ComponentMidterm:
		return r.MidtermTotal
	case ComponentClassScore:
		return r.ClassTotal
	case ComponentExamScore:
		return r.ExamTotal
	}
	return 0
}

// WeightedContribution returns the stored weighted value for the component type.
func (r SubjectResult) WeightedContribution(t ComponentType) float64 {
	switch t {
	case ComponentMidterm:
		return r.MidtermWeighted
	case ComponentClassScore:
		return r.ClassWeighted
	case ComponentExamScore:
		return r.ExamWeighted
	}
	return 0
}
