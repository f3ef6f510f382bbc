package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// Ranker assigns competition ranks across one class+subject+term+year group.
// One student's score change can shift everyone else's rank, so callers always
// rank the entire group and persist the results and ranks together.
type Ranker struct {
	logger *zap.Logger
}

// NewRanker constructs Ranker.
func NewRanker(logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{logger: logger}
}

// Rank orders the group by final score and assigns competition ranks: equal
// scores share a rank, the next distinct score skips by the tie count
// (90, 85, 85, 70 ranks as 1, 2, 2, 4). The slice is sorted in place.
func (r *Ranker) Rank(results []models.SubjectResult) []models.SubjectResult {
	if len(results) == 0 {
		return results
	}

	// Student ID breaks float-score ties so reruns are byte-stable.
	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].StudentID < results[j].StudentID
	})

	rank := 1
	for i := range results {
		if i > 0 && results[i].FinalScore != results[i-1].FinalScore {
			rank = i + 1
		}
		current := rank
		results[i].Rank = &current
	}
	return results
}
