package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
)

// CurriculumRepository reads course data from the external curriculum CRUD
// backend. This service never writes curriculum entities.
type CurriculumRepository struct {
	baseURL string
	client  *http.Client
}

// NewCurriculumRepository constructs the repository against the configured
// backend.
func NewCurriculumRepository(cfg config.BackendConfig) *CurriculumRepository {
	return &CurriculumRepository{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchCourses retrieves GET /mk, the sole network dependency of the grading
// core. Transport failures and non-success envelopes surface as plain errors
// for the service layer to classify as retryable.
func (r *CurriculumRepository) FetchCourses(ctx context.Context) ([]dto.CoursePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/mk", nil)
	if err != nil {
		return nil, fmt.Errorf("build curriculum request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch curriculum: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch curriculum: unexpected status %d", resp.StatusCode)
	}

	var envelope dto.CurriculumResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode curriculum payload: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		return nil, fmt.Errorf("curriculum backend rejected request: %s", msg)
	}

	return envelope.Data, nil
}
