package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func TestRankerCompetitionRanking(t *testing.T) {
	ranker := NewRanker(nil)
	ranked := ranker.Rank([]models.SubjectResult{
		{StudentID: "s3", FinalScore: 85},
		{StudentID: "s1", FinalScore: 90},
		{StudentID: "s4", FinalScore: 70},
		{StudentID: "s2", FinalScore: 85},
	})
	require.Len(t, ranked, 4)

	// 90, 85, 85, 70 ranks as 1, 2, 2, 4
	assert.Equal(t, "s1", ranked[0].StudentID)
	assert.Equal(t, 1, *ranked[0].Rank)
	assert.Equal(t, 2, *ranked[1].Rank)
	assert.Equal(t, 2, *ranked[2].Rank)
	assert.Equal(t, 4, *ranked[3].Rank)
}

func TestRankerBreaksTiesByStudentID(t *testing.T) {
	ranker := NewRanker(nil)
	ranked := ranker.Rank([]models.SubjectResult{
		{StudentID: "s2", FinalScore: 85},
		{StudentID: "s1", FinalScore: 85},
	})
	require.Len(t, ranked, 2)

	// Tied students share a rank but list in stable studentID order.
	assert.Equal(t, "s1", ranked[0].StudentID)
	assert.Equal(t, "s2", ranked[1].StudentID)
	assert.Equal(t, 1, *ranked[0].Rank)
	assert.Equal(t, 1, *ranked[1].Rank)
}

func TestRankerEmptyGroup(t *testing.T) {
	ranker := NewRanker(nil)
	assert.Empty(t, ranker.Rank(nil))
}
