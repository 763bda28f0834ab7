package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
	"github.com/noah-isme/obe-kurikulum-api/pkg/response"
)

type workbookServiceMock struct {
	session   *models.WorkbookSession
	student   *grading.Student
	err       error
	lastCount int
}

func (m *workbookServiceMock) SelectCourse(ctx context.Context, code string) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) Session(ctx context.Context, code string) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) AddStudents(ctx context.Context, code string, count int) (*models.WorkbookSession, error) {
	m.lastCount = count
	return m.session, m.err
}

func (m *workbookServiceMock) RemoveStudent(ctx context.Context, code, key string) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) UpdateStudent(ctx context.Context, code, key string, req dto.UpdateStudentRequest) (*grading.Student, error) {
	return m.student, m.err
}

func (m *workbookServiceMock) SetWeight(ctx context.Context, code string, req dto.SetWeightRequest) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) UpdateAssessmentTypes(ctx context.Context, code string, req dto.AssessmentTypesRequest) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) UpdateCourseInfo(ctx context.Context, code string, req dto.CourseInfoRequest) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) SwitchMode(ctx context.Context, code string, req dto.SwitchModeRequest) (*models.WorkbookSession, error) {
	return m.session, m.err
}

func (m *workbookServiceMock) DeleteSession(ctx context.Context, code string) error {
	return m.err
}

func (m *workbookServiceMock) Selections(ctx context.Context) ([]models.CourseSelection, error) {
	return nil, m.err
}

func (m *workbookServiceMock) LastCourse(ctx context.Context) string {
	return ""
}

func (m *workbookServiceMock) Statistics(ctx context.Context, code string) (*grading.ClassStatistics, error) {
	return &grading.ClassStatistics{}, m.err
}

func (m *workbookServiceMock) WeightSummary(ctx context.Context, code string) ([]grading.NodeTotal, error) {
	return nil, m.err
}

func newTestContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "courseCode", Value: "IF101"}}
	return c, w
}

func TestWorkbookHandlerAddStudentsValidatesCount(t *testing.T) {
	handler := NewWorkbookHandler(&workbookServiceMock{session: &models.WorkbookSession{CourseCode: "IF101"}})

	c, w := newTestContext(t, http.MethodPost, "/workbooks/IF101/students", dto.AddStudentsRequest{Count: 0})
	handler.AddStudents(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(t, http.MethodPost, "/workbooks/IF101/students", dto.AddStudentsRequest{Count: 101})
	handler.AddStudents(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkbookHandlerAddStudentsOK(t *testing.T) {
	mock := &workbookServiceMock{session: &models.WorkbookSession{CourseCode: "IF101"}}
	handler := NewWorkbookHandler(mock)

	c, w := newTestContext(t, http.MethodPost, "/workbooks/IF101/students", dto.AddStudentsRequest{Count: 5})
	handler.AddStudents(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 5, mock.lastCount)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
}

func TestWorkbookHandlerSwitchModeConflict(t *testing.T) {
	mock := &workbookServiceMock{err: appErrors.ErrPreconditionFailed}
	handler := NewWorkbookHandler(mock)

	c, w := newTestContext(t, http.MethodPut, "/workbooks/IF101/mode", dto.SwitchModeRequest{Mode: "node"})
	handler.SwitchMode(c)

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "PRECONDITION_FAILED", envelope.Error.Code)
}

func TestWorkbookHandlerUpdateStudentInvalidBody(t *testing.T) {
	handler := NewWorkbookHandler(&workbookServiceMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/workbooks/IF101/students/key", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.UpdateStudent(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkbookHandlerGetSessionNotFound(t *testing.T) {
	handler := NewWorkbookHandler(&workbookServiceMock{err: appErrors.ErrNotFound})

	c, w := newTestContext(t, http.MethodGet, "/workbooks/IF101", nil)
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
