package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/noah-isme/obe-kurikulum-api/internal/models"
)

const metaFile = "meta.json"

type storeMeta struct {
	SchemaVersion int `json:"schema_version"`
}

// FileStoreRepository persists workbook state as JSON documents under a base
// directory, one file per collection. It is the default driver and mirrors
// the browser-local storage the dashboard historically used. All access is
// serialized by a single mutex; the service layer already funnels writes
// through debounced auto-save.
type FileStoreRepository struct {
	dir string
	mu  sync.Mutex

	sessions   map[string]models.WorkbookSession
	selections map[string]models.CourseSelection
	types      models.AssessmentTypeRecord
	settings   map[string]string
}

// NewFileStoreRepository opens (and migrates, if needed) the store under
// dir. An older schema version gains the missing collections without
// touching existing data.
func NewFileStoreRepository(dir string) (*FileStoreRepository, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	r := &FileStoreRepository{
		dir:        dir,
		sessions:   make(map[string]models.WorkbookSession),
		selections: make(map[string]models.CourseSelection),
		settings:   make(map[string]string),
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileStoreRepository) load() error {
	var meta storeMeta
	_ = r.readFile(metaFile, &meta) // absent file means pre-versioned store

	if err := r.readFile(models.CollectionGradingData+".json", &r.sessions); err != nil {
		return err
	}
	if err := r.readFile(models.CollectionSelections+".json", &r.selections); err != nil {
		return err
	}
	if err := r.readFile(models.CollectionAssessmentTypes+".json", &r.types); err != nil {
		return err
	}
	if err := r.readFile(models.CollectionSettings+".json", &r.settings); err != nil {
		return err
	}

	if len(r.types.Types) == 0 {
		r.types.Types = append([]string(nil), models.DefaultAssessmentTypes...)
	}

	if meta.SchemaVersion < models.SchemaVersion {
		// Migration: materialize every collection file at the current
		// version, preserving whatever was already on disk.
		if err := r.flushAll(); err != nil {
			return err
		}
		if err := r.writeFile(metaFile, storeMeta{SchemaVersion: models.SchemaVersion}); err != nil {
			return err
		}
	}
	return nil
}

// GetSession loads one course's workbook and touches its selection's
// last-accessed timestamp.
func (r *FileStoreRepository) GetSession(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[courseCode]
	if !ok {
		return nil, sql.ErrNoRows
	}

	if selection, ok := r.selections[courseCode]; ok {
		selection.LastAccessed = time.Now().UTC()
		r.selections[courseCode] = selection
		_ = r.writeFile(models.CollectionSelections+".json", r.selections)
	}

	return &session, nil
}

// SaveSession writes the workbook snapshot and refreshes the denormalized
// selection progress in the same write path.
func (r *FileStoreRepository) SaveSession(ctx context.Context, session *models.WorkbookSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.CourseCode] = *session
	if err := r.writeFile(models.CollectionGradingData+".json", r.sessions); err != nil {
		return err
	}

	selection := r.selections[session.CourseCode]
	selection.CourseCode = session.CourseCode
	if session.CourseName != "" {
		selection.CourseName = session.CourseName
	}
	selection.HasData = true
	selection.Progress = session.Progress()
	selection.LastAccessed = time.Now().UTC()
	r.selections[session.CourseCode] = selection

	return r.writeFile(models.CollectionSelections+".json", r.selections)
}

// DeleteSession removes the workbook but keeps the selection row, flipping
// it to the empty state so the "courses you've opened" history survives.
func (r *FileStoreRepository) DeleteSession(ctx context.Context, courseCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, courseCode)
	if err := r.writeFile(models.CollectionGradingData+".json", r.sessions); err != nil {
		return err
	}

	if selection, ok := r.selections[courseCode]; ok {
		selection.HasData = false
		selection.Progress = models.SessionProgress{}
		r.selections[courseCode] = selection
		return r.writeFile(models.CollectionSelections+".json", r.selections)
	}
	return nil
}

// GetSelection returns one course-selection record.
func (r *FileStoreRepository) GetSelection(ctx context.Context, courseCode string) (*models.CourseSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	selection, ok := r.selections[courseCode]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &selection, nil
}

// PutSelection records that a course was opened.
func (r *FileStoreRepository) PutSelection(ctx context.Context, selection *models.CourseSelection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selections[selection.CourseCode] = *selection
	return r.writeFile(models.CollectionSelections+".json", r.selections)
}

// ListSelections returns every recorded selection.
func (r *FileStoreRepository) ListSelections(ctx context.Context) ([]models.CourseSelection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]models.CourseSelection, 0, len(r.selections))
	for _, selection := range r.selections {
		list = append(list, selection)
	}
	return list, nil
}

// GetAssessmentTypes returns the global type record, seeded with defaults.
func (r *FileStoreRepository) GetAssessmentTypes(ctx context.Context) (*models.AssessmentTypeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.types
	return &record, nil
}

// SaveAssessmentTypes replaces the global type record.
func (r *FileStoreRepository) SaveAssessmentTypes(ctx context.Context, record *models.AssessmentTypeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types = *record
	return r.writeFile(models.CollectionAssessmentTypes+".json", r.types)
}

// GetSetting reads one settings value.
func (r *FileStoreRepository) GetSetting(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.settings[key]
	if !ok {
		return "", sql.ErrNoRows
	}
	return value, nil
}

// SetSetting writes one settings value.
func (r *FileStoreRepository) SetSetting(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[key] = value
	return r.writeFile(models.CollectionSettings+".json", r.settings)
}

func (r *FileStoreRepository) flushAll() error {
	if err := r.writeFile(models.CollectionGradingData+".json", r.sessions); err != nil {
		return err
	}
	if err := r.writeFile(models.CollectionSelections+".json", r.selections); err != nil {
		return err
	}
	if err := r.writeFile(models.CollectionAssessmentTypes+".json", r.types); err != nil {
		return err
	}
	return r.writeFile(models.CollectionSettings+".json", r.settings)
}

func (r *FileStoreRepository) readFile(name string, dest interface{}) error {
	raw, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store file %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode store file %s: %w", name, err)
	}
	return nil
}

func (r *FileStoreRepository) writeFile(name string, value interface{}) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file %s: %w", name, err)
	}
	path := filepath.Join(r.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write store file %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace store file %s: %w", name, err)
	}
	return nil
}
