package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/obe-kurikulum-api/internal/models"
)

// PostgresStoreRepository keeps workbook state in a single key-value table
// with JSONB payloads. One row per (collection, key); the same collections
// the file driver uses.
type PostgresStoreRepository struct {
	db *sqlx.DB
}

// NewPostgresStoreRepository constructs the repository.
func NewPostgresStoreRepository(db *sqlx.DB) *PostgresStoreRepository {
	return &PostgresStoreRepository{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (r *PostgresStoreRepository) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS obe_store (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, key)
)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure store schema: %w", err)
	}
	return nil
}

// GetSession loads one course's workbook and touches its selection's
// last-accessed timestamp.
func (r *PostgresStoreRepository) GetSession(ctx context.Context, courseCode string) (*models.WorkbookSession, error) {
	var session models.WorkbookSession
	if err := r.getJSON(ctx, models.CollectionGradingData, courseCode, &session); err != nil {
		return nil, err
	}

	if selection, err := r.selection(ctx, courseCode); err == nil {
		selection.LastAccessed = time.Now().UTC()
		_ = r.putJSON(ctx, models.CollectionSelections, courseCode, selection)
	}

	return &session, nil
}

// SaveSession writes the workbook snapshot and refreshes the denormalized
// selection progress in the same write path.
func (r *PostgresStoreRepository) SaveSession(ctx context.Context, session *models.WorkbookSession) error {
	if err := r.putJSON(ctx, models.CollectionGradingData, session.CourseCode, session); err != nil {
		return err
	}

	selection, err := r.selection(ctx, session.CourseCode)
	if err != nil {
		selection = &models.CourseSelection{CourseCode: session.CourseCode}
	}
	if session.CourseName != "" {
		selection.CourseName = session.CourseName
	}
	selection.HasData = true
	selection.Progress = session.Progress()
	selection.LastAccessed = time.Now().UTC()

	return r.putJSON(ctx, models.CollectionSelections, session.CourseCode, selection)
}

// DeleteSession removes the workbook row but keeps the selection, flipped to
// the empty state.
func (r *PostgresStoreRepository) DeleteSession(ctx context.Context, courseCode string) error {
	const query = `DELETE FROM obe_store WHERE collection = $1 AND key = $2`
	if _, err := r.db.ExecContext(ctx, query, models.CollectionGradingData, courseCode); err != nil {
		return fmt.Errorf("delete session %s: %w", courseCode, err)
	}

	selection, err := r.selection(ctx, courseCode)
	if err != nil {
		return nil
	}
	selection.HasData = false
	selection.Progress = models.SessionProgress{}
	return r.putJSON(ctx, models.CollectionSelections, courseCode, selection)
}

// GetSelection returns one course-selection record.
func (r *PostgresStoreRepository) GetSelection(ctx context.Context, courseCode string) (*models.CourseSelection, error) {
	return r.selection(ctx, courseCode)
}

// PutSelection records that a course was opened.
func (r *PostgresStoreRepository) PutSelection(ctx context.Context, selection *models.CourseSelection) error {
	return r.putJSON(ctx, models.CollectionSelections, selection.CourseCode, selection)
}

// ListSelections returns every recorded selection.
func (r *PostgresStoreRepository) ListSelections(ctx context.Context) ([]models.CourseSelection, error) {
	const query = `SELECT payload FROM obe_store WHERE collection = $1 ORDER BY key ASC`
	var payloads [][]byte
	if err := r.db.SelectContext(ctx, &payloads, query, models.CollectionSelections); err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	list := make([]models.CourseSelection, 0, len(payloads))
	for _, raw := range payloads {
		var selection models.CourseSelection
		if err := json.Unmarshal(raw, &selection); err != nil {
			return nil, fmt.Errorf("decode selection payload: %w", err)
		}
		list = append(list, selection)
	}
	return list, nil
}

// GetAssessmentTypes returns the global type record, seeded with defaults
// when the store has none yet.
func (r *PostgresStoreRepository) GetAssessmentTypes(ctx context.Context) (*models.AssessmentTypeRecord, error) {
	var record models.AssessmentTypeRecord
	if err := r.getJSON(ctx, models.CollectionAssessmentTypes, "global", &record); err != nil {
		return &models.AssessmentTypeRecord{
			Types: append([]string(nil), models.DefaultAssessmentTypes...),
		}, nil
	}
	return &record, nil
}

// SaveAssessmentTypes replaces the global type record.
func (r *PostgresStoreRepository) SaveAssessmentTypes(ctx context.Context, record *models.AssessmentTypeRecord) error {
	return r.putJSON(ctx, models.CollectionAssessmentTypes, "global", record)
}

// GetSetting reads one settings value.
func (r *PostgresStoreRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	if err := r.getJSON(ctx, models.CollectionSettings, key, &value); err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting writes one settings value.
func (r *PostgresStoreRepository) SetSetting(ctx context.Context, key, value string) error {
	return r.putJSON(ctx, models.CollectionSettings, key, value)
}

func (r *PostgresStoreRepository) selection(ctx context.Context, courseCode string) (*models.CourseSelection, error) {
	var selection models.CourseSelection
	if err := r.getJSON(ctx, models.CollectionSelections, courseCode, &selection); err != nil {
		return nil, err
	}
	return &selection, nil
}

func (r *PostgresStoreRepository) getJSON(ctx context.Context, collection, key string, dest interface{}) error {
	const query = `SELECT payload FROM obe_store WHERE collection = $1 AND key = $2`
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, collection, key); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s/%s payload: %w", collection, key, err)
	}
	return nil
}

func (r *PostgresStoreRepository) putJSON(ctx context.Context, collection, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s payload: %w", collection, key, err)
	}
	const query = `INSERT INTO obe_store (collection, key, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (collection, key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, collection, key, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("store %s/%s: %w", collection, key, err)
	}
	return nil
}
