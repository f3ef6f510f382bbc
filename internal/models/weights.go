package models

import "time"

// WeightConfig holds the process-wide component weights in percentage points.
// The three weights must sum to exactly 100; the store rejects anything else.
type WeightConfig struct {
	MidtermWeight int       `db:"midterm_weight" json:"midterm_weight"`
	ClassWeight   int       `db:"class_weight" json:"class_weight"`
	ExamWeight    int       `db:"exam_weight" json:"exam_weight"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Sum returns the total of the three weights.
func (w WeightConfig) Sum() int {
	return w.MidtermWeight + w.ClassWeight + w.ExamWeight
}

// WeightFor returns the configured weight for a component type.
func (w WeightConfig) WeightFor(t ComponentType) int {
	switch t {
	case ComponentMidterm:
		return w.MidtermWeight
	case ComponentClassScore:
		return w.ClassWeight
	case ComponentExamScore:
		return w.ExamWeight
	}
	return 0
}
