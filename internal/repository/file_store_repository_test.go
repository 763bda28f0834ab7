package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
)

func newFileStore(t *testing.T) (*FileStoreRepository, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStoreRepository(dir)
	require.NoError(t, err)
	return store, dir
}

func sampleSession(code string) *models.WorkbookSession {
	student := grading.NewStudent(1)
	student.NIM = "230001"
	student.Nama = "Budi"
	return &models.WorkbookSession{
		CourseCode:      code,
		CourseName:      "Pemrograman Lanjut",
		Mode:            models.ModeRaw,
		Students:        []grading.Student{student},
		AssessmentTypes: []string{"tugas", "uts"},
	}
}

func TestFileStoreSessionRoundTrip(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	_, err := store.GetSession(ctx, "IF101")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.SaveSession(ctx, sampleSession("IF101")))

	session, err := store.GetSession(ctx, "IF101")
	require.NoError(t, err)
	assert.Equal(t, "Pemrograman Lanjut", session.CourseName)
	assert.Len(t, session.Students, 1)

	selection, err := store.GetSelection(ctx, "IF101")
	require.NoError(t, err)
	assert.True(t, selection.HasData)
	assert.Equal(t, 1, selection.Progress.TotalStudents)
	assert.True(t, selection.Progress.TypesConfigured)
	assert.False(t, selection.LastAccessed.IsZero())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	store, dir := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, sampleSession("IF101")))
	require.NoError(t, store.SetSetting(ctx, "last_course", "IF101"))

	reopened, err := NewFileStoreRepository(dir)
	require.NoError(t, err)

	session, err := reopened.GetSession(ctx, "IF101")
	require.NoError(t, err)
	assert.Equal(t, "IF101", session.CourseCode)

	value, err := reopened.GetSetting(ctx, "last_course")
	require.NoError(t, err)
	assert.Equal(t, "IF101", value)
}

func TestFileStoreDeleteKeepsSelection(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, sampleSession("IF101")))
	require.NoError(t, store.DeleteSession(ctx, "IF101"))

	_, err := store.GetSession(ctx, "IF101")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	selection, err := store.GetSelection(ctx, "IF101")
	require.NoError(t, err)
	assert.False(t, selection.HasData)
	assert.Zero(t, selection.Progress.TotalStudents)
}

func TestFileStoreAssessmentTypeDefaults(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	record, err := store.GetAssessmentTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAssessmentTypes, record.Types)

	record.Types = []string{"tugas", "proyek"}
	record.Comments = map[string]string{"proyek": "final project"}
	require.NoError(t, store.SaveAssessmentTypes(ctx, record))

	saved, err := store.GetAssessmentTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tugas", "proyek"}, saved.Types)
	assert.Equal(t, "final project", saved.Comments["proyek"])
}

func TestFileStoreMigratesOldSchema(t *testing.T) {
	dir := t.TempDir()

	// A version-1 store only had the grading-data collection.
	sessions := map[string]*models.WorkbookSession{"IF101": sampleSession("IF101")}
	raw, err := json.Marshal(sessions)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.CollectionGradingData+".json"), raw, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, metaFile), []byte(`{"schema_version":1}`), 0o644))

	store, err := NewFileStoreRepository(dir)
	require.NoError(t, err)

	session, err := store.GetSession(context.Background(), "IF101")
	require.NoError(t, err)
	assert.Equal(t, "Pemrograman Lanjut", session.CourseName)

	for _, name := range []string{
		models.CollectionSelections + ".json",
		models.CollectionAssessmentTypes + ".json",
		models.CollectionSettings + ".json",
	} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, name)
	}

	var meta storeMeta
	metaRaw, err := os.ReadFile(filepath.Join(dir, metaFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(metaRaw, &meta))
	assert.Equal(t, models.SchemaVersion, meta.SchemaVersion)
}

func TestFileStoreListSelections(t *testing.T) {
	store, _ := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, sampleSession("IF101")))
	require.NoError(t, store.PutSelection(ctx, &models.CourseSelection{CourseCode: "IF202", CourseName: "Basis Data"}))

	list, err := store.ListSelections(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
