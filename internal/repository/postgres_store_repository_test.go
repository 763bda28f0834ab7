package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-kurikulum-api/internal/models"
)

func newStoreRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func mustJSON(t *testing.T, value interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	return raw
}

func TestPostgresStoreGetSessionMissing(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionGradingData, "IF101").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSession(context.Background(), "IF101")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPostgresStoreGetSessionTouchesSelection(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	session := sampleSession("IF101")
	selection := models.CourseSelection{CourseCode: "IF101", HasData: true}

	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionGradingData, "IF101").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(mustJSON(t, session)))
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionSelections, "IF101").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(mustJSON(t, selection)))
	mock.ExpectExec("INSERT INTO obe_store").
		WithArgs(models.CollectionSelections, "IF101", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	loaded, err := repo.GetSession(context.Background(), "IF101")
	require.NoError(t, err)
	assert.Equal(t, "Pemrograman Lanjut", loaded.CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveSessionRefreshesSelection(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	session := sampleSession("IF101")

	mock.ExpectExec("INSERT INTO obe_store").
		WithArgs(models.CollectionGradingData, "IF101", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionSelections, "IF101").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO obe_store").
		WithArgs(models.CollectionSelections, "IF101", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveSession(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeleteSessionKeepsSelection(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	selection := models.CourseSelection{
		CourseCode:   "IF101",
		HasData:      true,
		Progress:     models.SessionProgress{TotalStudents: 5},
		LastAccessed: time.Now().UTC(),
	}

	mock.ExpectExec("DELETE FROM obe_store").
		WithArgs(models.CollectionGradingData, "IF101").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionSelections, "IF101").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(mustJSON(t, selection)))
	mock.ExpectExec("INSERT INTO obe_store").
		WithArgs(models.CollectionSelections, "IF101", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteSession(context.Background(), "IF101"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListSelections(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	rows := sqlmock.NewRows([]string{"payload"}).
		AddRow(mustJSON(t, models.CourseSelection{CourseCode: "IF101", CourseName: "Pemrograman Lanjut"})).
		AddRow(mustJSON(t, models.CourseSelection{CourseCode: "IF202", CourseName: "Basis Data"}))
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionSelections).
		WillReturnRows(rows)

	list, err := repo.ListSelections(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "IF101", list[0].CourseCode)
	assert.Equal(t, "Basis Data", list[1].CourseName)
}

func TestPostgresStoreAssessmentTypesDefaultOnMiss(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	mock.ExpectQuery("SELECT payload FROM obe_store").
		WithArgs(models.CollectionAssessmentTypes, "global").
		WillReturnError(sql.ErrNoRows)

	record, err := repo.GetAssessmentTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAssessmentTypes, record.Types)
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewPostgresStoreRepository(db)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS obe_store").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
}
