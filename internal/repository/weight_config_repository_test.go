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

func newWeightRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestWeightConfigRepositoryGet(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightConfigRepository(db)

	rows := sqlmock.NewRows([]string{"midterm_weight", "class_weight", "exam_weight", "updated_at"}).
		AddRow(30, 30, 40, time.Now())
	mock.ExpectQuery("SELECT midterm_weight").WillReturnRows(rows)

	cfg, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.MidtermWeight)
	assert.Equal(t, 30, cfg.ClassWeight)
	assert.Equal(t, 40, cfg.ExamWeight)
	assert.Equal(t, 100, cfg.Sum())
}

func TestWeightConfigRepositoryGetUninitialized(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightConfigRepository(db)

	mock.ExpectQuery("SELECT midterm_weight").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWeightConfigRepositorySave(t *testing.T) {
	db, mock, cleanup := newWeightRepoMock(t)
	defer cleanup()
	repo := NewWeightConfigRepository(db)

	mock.ExpectExec("INSERT INTO weight_config").
		WithArgs(20, 30, 50, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.WeightConfig{MidtermWeight: 20, ClassWeight: 30, ExamWeight: 50}
	require.NoError(t, repo.Save(context.Background(), cfg))
	assert.False(t, cfg.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
