package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func newMarkRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestMarkRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("INSERT INTO mark_components").
		WithArgs(sqlmock.AnyArg(), "s1", "sub1", "t1", "y1", "midterm", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mark := &models.MarkComponent{
		StudentID:      "s1",
		SubjectID:      "sub1",
		TermID:         "t1",
		AcademicYearID: "y1",
		ComponentType:  models.ComponentMidterm,
		RawMarks:       []float64{40, 35},
	}
	require.NoError(t, repo.Upsert(context.Background(), mark))
	assert.NotEmpty(t, mark.ID)
	assert.False(t, mark.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRepositoryGetNotFound(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("s1", "sub1", "t1", "y1", "midterm").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), models.MarkKey{
		StudentID:      "s1",
		SubjectID:      "sub1",
		TermID:         "t1",
		AcademicYearID: "y1",
		ComponentType:  models.ComponentMidterm,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMarkRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "subject_id", "term_id", "academic_year_id", "component_type", "raw_marks", "created_at", "updated_at"}).
		AddRow("m1", "s1", "sub1", "t1", "y1", "class_score", []byte("{40,50}"), time.Now(), time.Now()).
		AddRow("m2", "s1", "sub1", "t1", "y1", "midterm", []byte("{80}"), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("s1", "sub1", "t1", "y1").
		WillReturnRows(rows)

	marks, err := repo.ListForStudent(context.Background(), "s1", "sub1", "t1", "y1")
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, models.ComponentClassScore, marks[0].ComponentType)
	assert.Equal(t, 90.0, marks[0].Total())
	assert.Equal(t, 80.0, marks[1].Total())
}

func TestMarkRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("DELETE FROM mark_components").
		WithArgs("s1", "sub1", "t1", "y1", "exam_score").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), models.MarkKey{
		StudentID:      "s1",
		SubjectID:      "sub1",
		TermID:         "t1",
		AcademicYearID: "y1",
		ComponentType:  models.ComponentExamScore,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMarkRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMarkRepoMock(t)
	defer cleanup()
	repo := NewMarkRepository(db)

	mock.ExpectExec("DELETE FROM mark_components").
		WithArgs("s1", "sub1", "t1", "y1", "exam_score").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), models.MarkKey{
		StudentID:      "s1",
		SubjectID:      "sub1",
		TermID:         "t1",
		AcademicYearID: "y1",
		ComponentType:  models.ComponentExamScore,
	})
	require.NoError(t, err)
}
