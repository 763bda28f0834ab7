package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
)

type fakeStore struct {
	mu         sync.Mutex
	sessions   map[string]models.WorkbookSession
	selections map[string]models.CourseSelection
	types      *models.AssessmentTypeRecord
	settings   map[string]string
	saveCount  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:   make(map[string]models.WorkbookSession),
		selections: make(map[string]models.CourseSelection),
		settings:   make(map[string]string),
	}
}

func (f *fakeStore) GetSession(_ context.Context, code string) (*models.WorkbookSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &session, nil
}

func (f *fakeStore) SaveSession(_ context.Context, session *models.WorkbookSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.CourseCode] = *session
	f.saveCount++
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, code)
	if selection, ok := f.selections[code]; ok {
		selection.HasData = false
		selection.Progress = models.SessionProgress{}
		f.selections[code] = selection
	}
	return nil
}

func (f *fakeStore) GetSelection(_ context.Context, code string) (*models.CourseSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	selection, ok := f.selections[code]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &selection, nil
}

func (f *fakeStore) PutSelection(_ context.Context, selection *models.CourseSelection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selections[selection.CourseCode] = *selection
	return nil
}

func (f *fakeStore) ListSelections(_ context.Context) ([]models.CourseSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := make([]models.CourseSelection, 0, len(f.selections))
	for _, selection := range f.selections {
		list = append(list, selection)
	}
	return list, nil
}

func (f *fakeStore) GetAssessmentTypes(_ context.Context) (*models.AssessmentTypeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.types == nil {
		return &models.AssessmentTypeRecord{Types: append([]string(nil), models.DefaultAssessmentTypes...)}, nil
	}
	record := *f.types
	return &record, nil
}

func (f *fakeStore) SaveAssessmentTypes(_ context.Context, record *models.AssessmentTypeRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.types = &copied
	return nil
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.settings[key]
	if !ok {
		return "", sql.ErrNoRows
	}
	return value, nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

type staticFetcher struct {
	payload []dto.CoursePayload
}

func (s staticFetcher) FetchCourses(context.Context) ([]dto.CoursePayload, error) {
	return s.payload, nil
}

func testPayload() []dto.CoursePayload {
	cpl := dto.CPLPayload{ID: 1, KodeCPL: "CPL-1", Deskripsi: "Mampu menerapkan pemrograman"}
	return []dto.CoursePayload{
		{
			ID:       1,
			KodeMK:   "IF101",
			NamaMK:   "Pemrograman Lanjut",
			SKS:      3,
			Semester: 2,
			CPMK: []dto.CPMKPayload{
				{ID: 1, KodeCPMK: "CPMK-1", Deskripsi: "Memahami struktur data", CPL: []dto.CPLPayload{cpl}},
				{ID: 2, KodeCPMK: "CPMK-2", Deskripsi: "Menerapkan algoritma", CPL: []dto.CPLPayload{cpl}},
			},
		},
	}
}

func newWorkbookService(t *testing.T) (*WorkbookService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	logger := zap.NewNop()
	cache := NewCacheService(nil, nil, time.Minute, logger, false)
	curriculum := NewCurriculumService(staticFetcher{payload: testPayload()}, cache, config.CurriculumConfig{CacheTTL: time.Minute}, logger)
	cfg := config.WorkbookConfig{
		AutosaveDebounce: 5 * time.Millisecond,
		RecomputeDelay:   time.Millisecond,
		DefaultStudents:  5,
	}
	svc := NewWorkbookService(store, curriculum, NewMetricsService(), cfg, logger)
	t.Cleanup(func() { svc.Flush(context.Background()) })
	return svc, store
}

func TestSelectCourseCreatesDefaultSession(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)

	assert.Equal(t, "IF101", session.CourseCode)
	assert.Equal(t, models.ModeRaw, session.Mode)
	assert.Len(t, session.Students, 5)
	assert.Equal(t, models.DefaultAssessmentTypes, session.AssessmentTypes)
	// One node per related CPMK, zero-filled.
	assert.Len(t, session.Weights.Nodes(), 2)
	assert.Zero(t, session.Weights.TotalWeight())
}

func TestSelectCourseUnknownCourse(t *testing.T) {
	svc, _ := newWorkbookService(t)

	_, err := svc.SelectCourse(context.Background(), "XX999")
	assert.Error(t, err)
}

func TestAddStudentsNumbering(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	_, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)

	session, err := svc.AddStudents(ctx, "IF101", 3)
	require.NoError(t, err)
	require.Len(t, session.Students, 8)
	assert.Equal(t, 6, session.Students[5].No)
	assert.Equal(t, 8, session.Students[7].No)
}

func TestUpdateStudentRawScoreRecomputes(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	score := func(v float64) *float64 { return &v }
	for _, field := range []string{"tugas", "kuis", "uts", "uas"} {
		_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: field, Score: score(80)})
		require.NoError(t, err)
	}

	student := session.StudentByKey(key)
	require.NotNil(t, student)
	// No weights configured: equal-weight fallback.
	assert.InDelta(t, 80, student.FinalScore, 0.001)
	assert.Equal(t, "A", student.LetterGrade)
	assert.Equal(t, grading.StatusLulus, student.PassStatus)
}

func TestUpdateStudentTextFields(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "nim", Value: "230001"})
	require.NoError(t, err)
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "nama", Value: "Budi"})
	require.NoError(t, err)

	student := session.StudentByKey(key)
	assert.Equal(t, "230001", student.NIM)
	assert.Equal(t, "Budi", student.Nama)
}

func TestUpdateStudentUnknownType(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)

	score := 50.0
	_, err = svc.UpdateStudent(ctx, "IF101", session.Students[0].Key, dto.UpdateStudentRequest{Field: "praktikum", Score: &score})
	assert.Error(t, err)
}

func TestSetWeightDelayedRecompute(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	score := func(v float64) *float64 { return &v }
	entries := map[string]float64{"tugas": 100, "kuis": 100, "uts": 60, "uas": 100}
	for field, value := range entries {
		_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: field, Score: score(value)})
		require.NoError(t, err)
	}

	_, err = svc.SetWeight(ctx, "IF101", dto.SetWeightRequest{CPL: "CPL-1", CPMK: "CPMK-1", AssessmentType: "uts", Value: 40})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stats, statsErr := svc.Statistics(ctx, "IF101")
		if statsErr != nil {
			return false
		}
		// Only uts weighted, so the one complete student lands exactly on
		// the uts raw score. 60 / 5 students = 12 average.
		return stats.AverageFinal == 12
	}, time.Second, 5*time.Millisecond)
}

func TestSwitchModeRequiresConfirmation(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	score := 70.0
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "tugas", Score: &score})
	require.NoError(t, err)

	_, err = svc.SwitchMode(ctx, "IF101", dto.SwitchModeRequest{Mode: "node"})
	require.Error(t, err)
	assert.Equal(t, models.ModeRaw, session.Mode)

	updated, err := svc.SwitchMode(ctx, "IF101", dto.SwitchModeRequest{Mode: "node", Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, models.ModeNode, updated.Mode)

	student := updated.StudentByKey(key)
	assert.Empty(t, student.Scores)
	assert.Zero(t, student.FinalScore)
	assert.Empty(t, student.LetterGrade)
}

func TestSwitchModeWithoutDataNeedsNoConfirmation(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	_, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)

	session, err := svc.SwitchMode(ctx, "IF101", dto.SwitchModeRequest{Mode: "node"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeNode, session.Mode)
}

func TestNodeInputModeBackSolvesRawScores(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	_, err = svc.SwitchMode(ctx, "IF101", dto.SwitchModeRequest{Mode: "node"})
	require.NoError(t, err)

	_, err = svc.SetWeight(ctx, "IF101", dto.SetWeightRequest{CPL: "CPL-1", CPMK: "CPMK-1", AssessmentType: "uts", Value: 30})
	require.NoError(t, err)
	_, err = svc.SetWeight(ctx, "IF101", dto.SetWeightRequest{CPL: "CPL-1", CPMK: "CPMK-2", AssessmentType: "uts", Value: 10})
	require.NoError(t, err)

	inputKey1 := grading.NodeKey{NodeRef: grading.NodeRef{CPL: "CPL-1", CPMK: "CPMK-1"}, AssessmentType: "uts"}.String()
	inputKey2 := grading.NodeKey{NodeRef: grading.NodeRef{CPL: "CPL-1", CPMK: "CPMK-2"}, AssessmentType: "uts"}.String()

	score := func(v float64) *float64 { return &v }
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: inputKey1, Score: score(80)})
	require.NoError(t, err)
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: inputKey2, Score: score(40)})
	require.NoError(t, err)

	// (80*30 + 40*10) / 40 = 70 back-solved for the one edited student,
	// averaged over the 5-row roster.
	require.Eventually(t, func() bool {
		stats, statsErr := svc.Statistics(ctx, "IF101")
		return statsErr == nil && stats.Averages["uts"] == 14
	}, time.Second, 5*time.Millisecond)
}

func TestUpdateStudentRejectsUnknownNodeKey(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	_, err = svc.SwitchMode(ctx, "IF101", dto.SwitchModeRequest{Mode: "node"})
	require.NoError(t, err)

	score := 80.0
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "CPL-9_CPMK-9_tugas", Score: &score})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node input")

	valid := grading.NodeKey{NodeRef: grading.NodeRef{CPL: "CPL-1", CPMK: "CPMK-1"}, AssessmentType: "tugas"}.String()
	student, err := svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: valid, Score: &score})
	require.NoError(t, err)
	assert.Equal(t, 80.0, student.NodeInputs[valid])
}

func TestSessionSnapshotSafeForConcurrentMarshal(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			score := float64(i % 100)
			if _, updateErr := svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "tugas", Score: &score}); updateErr != nil {
				t.Error(updateErr)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		snapshot, snapErr := svc.Session(ctx, "IF101")
		require.NoError(t, snapErr)
		_, marshalErr := json.Marshal(snapshot)
		require.NoError(t, marshalErr)
	}
	<-done
}

func TestUpdateAssessmentTypesBackfills(t *testing.T) {
	svc, store := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	score := 85.0
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "tugas", Score: &score})
	require.NoError(t, err)

	updated, err := svc.UpdateAssessmentTypes(ctx, "IF101", dto.AssessmentTypesRequest{
		Types:    []string{"tugas", "proyek"},
		Comments: map[string]string{"proyek": "tim, akhir semester"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"tugas", "proyek"}, updated.AssessmentTypes)
	student := updated.StudentByKey(key)
	assert.Equal(t, 85.0, student.Scores["tugas"])
	assert.Contains(t, student.Scores, "proyek")
	assert.Zero(t, student.Scores["proyek"])
	assert.NotContains(t, student.Scores, "uts")

	// The new set becomes the stored global default.
	record, err := store.GetAssessmentTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tugas", "proyek"}, record.Types)
}

func TestDeleteSessionCancelsAndClears(t *testing.T) {
	svc, store := newWorkbookService(t)
	ctx := context.Background()

	_, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(ctx, "IF101"))

	_, err = store.GetSession(ctx, "IF101")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	selection, err := store.GetSelection(ctx, "IF101")
	require.NoError(t, err)
	assert.False(t, selection.HasData)
}

func TestLastCourseTracksSelection(t *testing.T) {
	svc, _ := newWorkbookService(t)
	ctx := context.Background()

	assert.Equal(t, "", svc.LastCourse(ctx))

	_, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	assert.Equal(t, "IF101", svc.LastCourse(ctx))

	require.NoError(t, svc.DeleteSession(ctx, "IF101"))
	assert.Equal(t, "", svc.LastCourse(ctx))
}

func TestAutosavePersistsAfterDebounce(t *testing.T) {
	svc, store := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)

	score := 90.0
	_, err = svc.UpdateStudent(ctx, "IF101", session.Students[0].Key, dto.UpdateStudentRequest{Field: "uas", Score: &score})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		saved, loadErr := store.GetSession(ctx, "IF101")
		if loadErr != nil {
			return false
		}
		return len(saved.Students) > 0 && saved.Students[0].Scores["uas"] == 90
	}, time.Second, 5*time.Millisecond)
}

func TestSessionSurvivesReload(t *testing.T) {
	svc, store := newWorkbookService(t)
	ctx := context.Background()

	session, err := svc.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	key := session.Students[0].Key

	score := 75.0
	_, err = svc.UpdateStudent(ctx, "IF101", key, dto.UpdateStudentRequest{Field: "tugas", Score: &score})
	require.NoError(t, err)
	svc.Flush(ctx)

	// A second service instance over the same store sees the saved state.
	logger := zap.NewNop()
	cache := NewCacheService(nil, nil, time.Minute, logger, false)
	curriculum := NewCurriculumService(staticFetcher{payload: testPayload()}, cache, config.CurriculumConfig{CacheTTL: time.Minute}, logger)
	reloaded := NewWorkbookService(store, curriculum, NewMetricsService(), config.WorkbookConfig{DefaultStudents: 5}, logger)
	defer reloaded.Flush(ctx)

	restored, err := reloaded.SelectCourse(ctx, "IF101")
	require.NoError(t, err)
	student := restored.StudentByKey(key)
	require.NotNil(t, student)
	assert.Equal(t, 75.0, student.Scores["tugas"])
}
