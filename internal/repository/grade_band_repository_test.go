package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func newBandRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestGradeBandRepositoryList(t *testing.T) {
	db, mock, cleanup := newBandRepoMock(t)
	defer cleanup()
	repo := NewGradeBandRepository(db)

	rows := sqlmock.NewRows([]string{"id", "position", "min_mark", "max_mark", "letter", "remark"}).
		AddRow("b1", 0, 0, 49, "E", "Fail").
		AddRow("b2", 1, 50, 100, "A", "Pass")
	mock.ExpectQuery("SELECT id, position").WillReturnRows(rows)

	bands, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "E", bands[0].Letter)
	assert.True(t, bands[1].Contains(75))
}

func TestGradeBandRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newBandRepoMock(t)
	defer cleanup()
	repo := NewGradeBandRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM grade_bands").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO grade_bands").
		WithArgs(sqlmock.AnyArg(), 0, 0, 49, "E", "Fail").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO grade_bands").
		WithArgs(sqlmock.AnyArg(), 1, 50, 100, "A", "Pass").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	bands := []models.GradeBand{
		{MinMark: 0, MaxMark: 49, Letter: "E", Remark: "Fail"},
		{MinMark: 50, MaxMark: 100, Letter: "A", Remark: "Pass"},
	}
	require.NoError(t, repo.Replace(context.Background(), bands))
	assert.NotEmpty(t, bands[0].ID)
	assert.Equal(t, 1, bands[1].Position)
	require.NoError(t, mock.ExpectationsWereMet())
}
