package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
	"github.com/noah-isme/obe-kurikulum-api/pkg/debounce"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
)

// SessionStore abstracts workbook persistence. Two drivers satisfy it: the
// default JSON file store and the Postgres key-value store.
type SessionStore interface {
	GetSession(ctx context.Context, courseCode string) (*models.WorkbookSession, error)
	SaveSession(ctx context.Context, session *models.WorkbookSession) error
	DeleteSession(ctx context.Context, courseCode string) error
	GetSelection(ctx context.Context, courseCode string) (*models.CourseSelection, error)
	PutSelection(ctx context.Context, selection *models.CourseSelection) error
	ListSelections(ctx context.Context) ([]models.CourseSelection, error)
	GetAssessmentTypes(ctx context.Context) (*models.AssessmentTypeRecord, error)
	SaveAssessmentTypes(ctx context.Context, record *models.AssessmentTypeRecord) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// lastCourseSetting remembers the most recently opened course so clients can
// reopen it on startup.
const lastCourseSetting = "last_course"

// WorkbookService owns grading sessions: roster edits, weight edits,
// assessment-type management, mode switches and the recompute/persist
// pipeline around them. All mutations run under one mutex; rapid edits are
// absorbed by debounced auto-save and delayed recompute, mirroring the
// interactive entry pattern the grading sheets are used with.
type WorkbookService struct {
	store      SessionStore
	curriculum *CurriculumService
	metrics    *MetricsService
	scheduler  *debounce.Scheduler
	cfg        config.WorkbookConfig
	logger     *zap.Logger

	mu            sync.Mutex
	sessions      map[string]*models.WorkbookSession
	persistWarned bool
}

// NewWorkbookService constructs the service.
func NewWorkbookService(store SessionStore, curriculum *CurriculumService, metrics *MetricsService, cfg config.WorkbookConfig, logger *zap.Logger) *WorkbookService {
	if cfg.DefaultStudents <= 0 {
		cfg.DefaultStudents = 5
	}
	return &WorkbookService{
		store:      store,
		curriculum: curriculum,
		metrics:    metrics,
		scheduler:  debounce.NewScheduler(),
		cfg:        cfg,
		logger:     logger,
		sessions:   make(map[string]*models.WorkbookSession),
	}
}

// SelectCourse opens (or creates) the grading session for a course. A fresh
// session starts with a blank default roster, the stored global assessment
// types, and a zero-initialized weight matrix walked from the curriculum.
// The returned session is a snapshot; the live copy stays inside the service.
func (s *WorkbookService) SelectCourse(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	session, err := s.selectCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Clone(), nil
}

func (s *WorkbookService) selectCourse(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	course, err := s.curriculum.Course(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[courseCode]; ok {
		return session, nil
	}

	session, err := s.store.GetSession(ctx, courseCode)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
		}
		session, err = s.newSession(ctx, course)
		if err != nil {
			return nil, err
		}
		if saveErr := s.store.SaveSession(ctx, session); saveErr != nil {
			s.warnPersist(saveErr)
		}
	}

	s.sessions[courseCode] = session

	selection := &models.CourseSelection{
		CourseCode:   course.Code,
		CourseName:   course.Name,
		SKS:          course.SKS,
		Semester:     course.Semester,
		LastAccessed: time.Now().UTC(),
		HasData:      true,
		Progress:     session.Progress(),
	}
	if putErr := s.store.PutSelection(ctx, selection); putErr != nil {
		s.warnPersist(putErr)
	}
	if setErr := s.store.SetSetting(ctx, lastCourseSetting, course.Code); setErr != nil {
		s.warnPersist(setErr)
	}

	return session, nil
}

func (s *WorkbookService) newSession(ctx context.Context, course *grading.Course) (*models.WorkbookSession, error) {
	graph, err := s.curriculum.Graph(ctx)
	if err != nil {
		return nil, err
	}

	types := append([]string(nil), models.DefaultAssessmentTypes...)
	comments := map[string]string{}
	if record, typesErr := s.store.GetAssessmentTypes(ctx); typesErr == nil && len(record.Types) > 0 {
		types = append([]string(nil), record.Types...)
		for k, v := range record.Comments {
			comments[k] = v
		}
	}

	students := make([]grading.Student, 0, s.cfg.DefaultStudents)
	for i := 1; i <= s.cfg.DefaultStudents; i++ {
		students = append(students, grading.NewStudent(i))
	}

	session := &models.WorkbookSession{
		CourseCode:      course.Code,
		CourseName:      course.Name,
		Mode:            models.ModeRaw,
		Students:        students,
		Weights:         grading.InitWeights(graph, course.Code, types),
		AssessmentTypes: types,
		TypeComments:    comments,
		CourseInfo:      models.CourseInfo{Semester: course.Semester},
	}
	session.Touch()
	return session, nil
}

// Session returns a snapshot of the active session for a course, loading it
// on demand.
func (s *WorkbookService) Session(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Clone(), nil
}

// live returns the in-memory session, loading it on demand. Callers must not
// hand the pointer outside the service; reads and writes of it go through
// s.mu.
func (s *WorkbookService) live(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	s.mu.Lock()
	if session, ok := s.sessions[courseCode]; ok {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()
	return s.selectCourse(ctx, courseCode)
}

// AddStudents appends count blank rows, numbering them after the current
// tail.
func (s *WorkbookService) AddStudents(ctx context.Context, courseCode string, count int) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := len(session.Students) + 1
	for i := 0; i < count; i++ {
		session.Students = append(session.Students, grading.NewStudent(next+i))
	}
	session.Touch()
	s.scheduleSave(session)
	return session.Clone(), nil
}

// RemoveStudent deletes one roster row and renumbers the remainder.
func (s *WorkbookService) RemoveStudent(ctx context.Context, courseCode, studentKey string) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i := range session.Students {
		if session.Students[i].Key == studentKey {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	session.Students = append(session.Students[:index], session.Students[index+1:]...)
	for i := range session.Students {
		session.Students[i].No = i + 1
	}
	session.Touch()
	s.scheduleSave(session)
	return session.Clone(), nil
}

// UpdateStudent patches one field of one roster row. Text fields carry the
// value directly; a numeric field is either a raw assessment-type score or,
// in node-input mode, a node input key. Score edits trigger an immediate
// recompute of that student.
func (s *WorkbookService) UpdateStudent(ctx context.Context, courseCode, studentKey string, req dto.UpdateStudentRequest) (*grading.Student, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student := session.StudentByKey(studentKey)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	switch strings.ToLower(req.Field) {
	case "nim":
		student.NIM = req.Value
	case "nama":
		student.Nama = req.Value
	default:
		if req.Score == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "numeric field requires a score")
		}
		score := grading.ClampScore(*req.Score)
		if session.Mode == models.ModeNode {
			if !containsNodeKey(session, req.Field) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown node input key")
			}
			if student.NodeInputs == nil {
				student.NodeInputs = make(map[string]float64)
			}
			student.NodeInputs[req.Field] = score
			grading.ApplyNodeInputs(student, session.Weights, session.AssessmentTypes)
		} else {
			if !containsType(session.AssessmentTypes, req.Field) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown assessment type")
			}
			student.Scores[req.Field] = score
		}
		s.recomputeStudent(session, student)
	}

	session.Touch()
	s.scheduleSave(session)
	cloned := student.Clone()
	return &cloned, nil
}

// SetWeight writes one matrix cell and schedules the full-session recompute
// after a short delay so burst edits coalesce into one pass.
func (s *WorkbookService) SetWeight(ctx context.Context, courseCode string, req dto.SetWeightRequest) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session.Weights.SetWeight(req.CPL, req.CPMK, req.AssessmentType, req.Value, req.SubCPMK)
	session.Touch()

	s.scheduler.Schedule("recompute:"+session.CourseCode, s.cfg.RecomputeDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.recomputeSession(session)
	})
	s.scheduleSave(session)
	return session.Clone(), nil
}

// UpdateAssessmentTypes replaces the active type set: the weight matrix is
// rebuilt zero-filled against the new columns, surviving raw scores are kept
// and new columns backfilled with zero, and the set becomes the stored global
// default for future sessions.
func (s *WorkbookService) UpdateAssessmentTypes(ctx context.Context, courseCode string, req dto.AssessmentTypesRequest) (*models.WorkbookSession, error) {
	graph, err := s.curriculum.Graph(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	types := normalizeTypes(req.Types)
	if len(types) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one assessment type is required")
	}

	session.AssessmentTypes = types
	session.TypeComments = req.Comments
	session.Weights = grading.InitWeights(graph, session.CourseCode, types)
	for i := range session.Students {
		session.Students[i].AlignScores(types)
	}
	s.recomputeSession(session)
	session.Touch()

	record := &models.AssessmentTypeRecord{Types: types, Comments: req.Comments}
	if saveErr := s.store.SaveAssessmentTypes(ctx, record); saveErr != nil {
		s.warnPersist(saveErr)
	}

	s.scheduleSave(session)
	return session.Clone(), nil
}

// UpdateCourseInfo stores the free-form session metadata.
func (s *WorkbookService) UpdateCourseInfo(ctx context.Context, courseCode string, req dto.CourseInfoRequest) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Semester > 0 {
		session.CourseInfo.Semester = req.Semester
	}
	if req.TahunAjaran != "" {
		session.CourseInfo.TahunAjaran = req.TahunAjaran
	}
	if req.Kelas != "" {
		session.CourseInfo.Kelas = req.Kelas
	}
	if req.Dosen != "" {
		session.CourseInfo.Dosen = req.Dosen
	}
	session.Touch()
	s.scheduleSave(session)
	return session.Clone(), nil
}

// SwitchMode toggles between raw-score and node-input entry. The switch is
// destructive: every entered score is wiped, so it requires confirmation once
// any student holds data.
func (s *WorkbookService) SwitchMode(ctx context.Context, courseCode string, req dto.SwitchModeRequest) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	mode := models.InputMode(req.Mode)
	if !mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown input mode")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if session.Mode == mode {
		return session.Clone(), nil
	}

	hasData := false
	for i := range session.Students {
		if session.Students[i].HasAnyData() {
			hasData = true
			break
		}
	}
	if hasData && !req.Confirm {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "mode switch discards entered scores and must be confirmed")
	}

	session.Mode = mode
	for i := range session.Students {
		session.Students[i].ResetScores()
	}
	session.Touch()
	s.scheduleSave(session)
	return session.Clone(), nil
}

// ReplaceRoster swaps the entire roster, renumbers it and recomputes every
// student. Used by the import-confirmation flow.
func (s *WorkbookService) ReplaceRoster(ctx context.Context, courseCode string, students []grading.Student) (*models.WorkbookSession, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range students {
		students[i].No = i + 1
		if students[i].Key == "" {
			students[i].Key = uuid.NewString()
		}
	}
	session.Students = students
	s.recomputeSession(session)
	session.Touch()
	s.scheduleSave(session)
	return session.Clone(), nil
}

// DeleteSession drops the session's grading data. The course stays in the
// selection history with its progress zeroed.
func (s *WorkbookService) DeleteSession(ctx context.Context, courseCode string) error {
	s.mu.Lock()
	delete(s.sessions, courseCode)
	s.mu.Unlock()

	s.scheduler.Cancel("save:" + courseCode)
	s.scheduler.Cancel("recompute:" + courseCode)

	if err := s.store.DeleteSession(ctx, courseCode); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	if last, err := s.store.GetSetting(ctx, lastCourseSetting); err == nil && last == courseCode {
		if setErr := s.store.SetSetting(ctx, lastCourseSetting, ""); setErr != nil {
			s.warnPersist(setErr)
		}
	}
	return nil
}

// LastCourse returns the most recently opened course code, or empty when none
// is recorded.
func (s *WorkbookService) LastCourse(ctx context.Context) string {
	last, err := s.store.GetSetting(ctx, lastCourseSetting)
	if err != nil {
		return ""
	}
	return last
}

// Selections lists the opened-course history, most recently accessed first.
func (s *WorkbookService) Selections(ctx context.Context) ([]models.CourseSelection, error) {
	list, err := s.store.ListSelections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LastAccessed.After(list[j].LastAccessed) })
	return list, nil
}

// Statistics computes the class summary for a session.
func (s *WorkbookService) Statistics(ctx context.Context, courseCode string) (*grading.ClassStatistics, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stats := grading.ComputeClassStatistics(session.Students, session.AssessmentTypes)
	return &stats, nil
}

// WeightSummary reports each node's weight total against the 100% target.
func (s *WorkbookService) WeightSummary(ctx context.Context, courseCode string) ([]grading.NodeTotal, error) {
	session, err := s.live(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Weights.Completeness(), nil
}

// Flush persists every in-memory session immediately, bypassing the debounce
// windows. Called on shutdown.
func (s *WorkbookService) Flush(ctx context.Context) {
	s.scheduler.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if err := s.store.SaveSession(ctx, session); err != nil {
			s.logger.Warn("final session persist failed",
				zap.String("course", session.CourseCode), zap.Error(err))
		}
	}
}

// recomputeSession reruns the grade pipeline for every student. Caller holds
// the mutex.
func (s *WorkbookService) recomputeSession(session *models.WorkbookSession) {
	start := time.Now()
	for i := range session.Students {
		s.recomputeStudent(session, &session.Students[i])
	}
	s.metrics.ObserveRecompute(session.CourseCode, time.Since(start))
}

func (s *WorkbookService) recomputeStudent(session *models.WorkbookSession, student *grading.Student) {
	if session.Mode == models.ModeNode {
		grading.ApplyNodeInputs(student, session.Weights, session.AssessmentTypes)
	}
	result := grading.ComputeStudentResult(student, session.Weights, session.AssessmentTypes)
	student.ApplyResult(result)
}

// scheduleSave arranges a debounced persist for the session. The session
// pointer is captured here so a later course switch cannot redirect a
// pending save. Caller holds the mutex.
func (s *WorkbookService) scheduleSave(session *models.WorkbookSession) {
	s.scheduler.Schedule("save:"+session.CourseCode, s.cfg.AutosaveDebounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		err := s.store.SaveSession(context.Background(), session)
		s.metrics.RecordAutosave(err == nil)
		if err != nil {
			s.warnPersist(err)
		}
	})
}

// warnPersist logs the first persistence failure loudly and stays quiet
// afterwards; the session keeps working in memory.
func (s *WorkbookService) warnPersist(err error) {
	if s.persistWarned {
		return
	}
	s.persistWarned = true
	s.logger.Warn("workbook persistence failing, continuing in memory only", zap.Error(err))
}

// containsNodeKey reports whether field names an existing node/type cell, so
// typoed keys are rejected instead of silently stored without effect.
func containsNodeKey(session *models.WorkbookSession, field string) bool {
	for _, node := range session.Weights.Nodes() {
		for _, t := range session.AssessmentTypes {
			if node.Key(t).String() == field {
				return true
			}
		}
	}
	return false
}

func containsType(types []string, t string) bool {
	for _, existing := range types {
		if existing == t {
			return true
		}
	}
	return false
}

func normalizeTypes(raw []string) []string {
	types := make([]string, 0, len(raw))
	for _, t := range raw {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		if !containsType(types, trimmed) {
			types = append(types, trimmed)
		}
	}
	return types
}
