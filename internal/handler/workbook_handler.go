package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
	"github.com/noah-isme/obe-kurikulum-api/pkg/response"
)

type workbookService interface {
	SelectCourse(ctx context.Context, courseCode string) (*models.WorkbookSession, error)
	Session(ctx context.Context, courseCode string) (*models.WorkbookSession, error)
	AddStudents(ctx context.Context, courseCode string, count int) (*models.WorkbookSession, error)
	RemoveStudent(ctx context.Context, courseCode, studentKey string) (*models.WorkbookSession, error)
	UpdateStudent(ctx context.Context, courseCode, studentKey string, req dto.UpdateStudentRequest) (*grading.Student, error)
	SetWeight(ctx context.Context, courseCode string, req dto.SetWeightRequest) (*models.WorkbookSession, error)
	UpdateAssessmentTypes(ctx context.Context, courseCode string, req dto.AssessmentTypesRequest) (*models.WorkbookSession, error)
	UpdateCourseInfo(ctx context.Context, courseCode string, req dto.CourseInfoRequest) (*models.WorkbookSession, error)
	SwitchMode(ctx context.Context, courseCode string, req dto.SwitchModeRequest) (*models.WorkbookSession, error)
	DeleteSession(ctx context.Context, courseCode string) error
	Selections(ctx context.Context) ([]models.CourseSelection, error)
	LastCourse(ctx context.Context) string
	Statistics(ctx context.Context, courseCode string) (*grading.ClassStatistics, error)
	WeightSummary(ctx context.Context, courseCode string) ([]grading.NodeTotal, error)
}

// WorkbookHandler exposes the grading-session endpoints.
type WorkbookHandler struct {
	service workbookService
}

// NewWorkbookHandler builds a new handler.
func NewWorkbookHandler(service workbookService) *WorkbookHandler {
	return &WorkbookHandler{service: service}
}

// Select godoc
// @Summary Open or create the grading session for a course
// @Tags Workbook
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode} [post]
func (h *WorkbookHandler) Select(c *gin.Context) {
	session, err := h.service.SelectCourse(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "workbook opened", session)
}

// Get godoc
// @Summary Get the grading session for a course
// @Tags Workbook
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode} [get]
func (h *WorkbookHandler) Get(c *gin.Context) {
	session, err := h.service.Session(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "workbook retrieved", session)
}

// Delete godoc
// @Summary Delete a course's grading data
// @Tags Workbook
// @Param courseCode path string true "Course code"
// @Success 204
// @Router /workbooks/{courseCode} [delete]
func (h *WorkbookHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteSession(c.Request.Context(), c.Param("courseCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Selections godoc
// @Summary List courses that have been opened, most recent first
// @Tags Workbook
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /workbooks [get]
func (h *WorkbookHandler) Selections(c *gin.Context) {
	selections, err := h.service.Selections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "selections retrieved", gin.H{
		"selections":  selections,
		"last_course": h.service.LastCourse(c.Request.Context()),
	})
}

// AddStudents godoc
// @Summary Append blank roster rows
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.AddStudentsRequest true "Row count"
// @Success 201 {object} response.Envelope
// @Router /workbooks/{courseCode}/students [post]
func (h *WorkbookHandler) AddStudents(c *gin.Context) {
	var req dto.AddStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid add-students payload"))
		return
	}
	if req.Count < 1 || req.Count > 100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "count must be between 1 and 100"))
		return
	}
	session, err := h.service.AddStudents(c.Request.Context(), c.Param("courseCode"), req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "students added", session)
}

// RemoveStudent godoc
// @Summary Remove one roster row
// @Tags Workbook
// @Produce json
// @Param courseCode path string true "Course code"
// @Param studentKey path string true "Student key"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/students/{studentKey} [delete]
func (h *WorkbookHandler) RemoveStudent(c *gin.Context) {
	session, err := h.service.RemoveStudent(c.Request.Context(), c.Param("courseCode"), c.Param("studentKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "student removed", session)
}

// UpdateStudent godoc
// @Summary Patch one field of one roster row
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param studentKey path string true "Student key"
// @Param payload body dto.UpdateStudentRequest true "Field patch"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/students/{studentKey} [patch]
func (h *WorkbookHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.service.UpdateStudent(c.Request.Context(), c.Param("courseCode"), c.Param("studentKey"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "student updated", student)
}

// SetWeight godoc
// @Summary Write one weight-matrix cell
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.SetWeightRequest true "Weight cell"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/weights [put]
func (h *WorkbookHandler) SetWeight(c *gin.Context) {
	var req dto.SetWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weight payload"))
		return
	}
	session, err := h.service.SetWeight(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "weight updated", session)
}

// WeightSummary godoc
// @Summary Report each node's weight total against the 100% target
// @Tags Workbook
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/weights/summary [get]
func (h *WorkbookHandler) WeightSummary(c *gin.Context) {
	totals, err := h.service.WeightSummary(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "weight summary retrieved", totals)
}

// UpdateAssessmentTypes godoc
// @Summary Replace the active assessment-type set
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.AssessmentTypesRequest true "Types"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/assessment-types [put]
func (h *WorkbookHandler) UpdateAssessmentTypes(c *gin.Context) {
	var req dto.AssessmentTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment-types payload"))
		return
	}
	session, err := h.service.UpdateAssessmentTypes(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "assessment types updated", session)
}

// UpdateCourseInfo godoc
// @Summary Update the session's course metadata
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.CourseInfoRequest true "Course info"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/info [put]
func (h *WorkbookHandler) UpdateCourseInfo(c *gin.Context) {
	var req dto.CourseInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course-info payload"))
		return
	}
	session, err := h.service.UpdateCourseInfo(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "course info updated", session)
}

// SwitchMode godoc
// @Summary Switch between raw-score and node-input entry
// @Tags Workbook
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.SwitchModeRequest true "Target mode"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/mode [put]
func (h *WorkbookHandler) SwitchMode(c *gin.Context) {
	var req dto.SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mode payload"))
		return
	}
	session, err := h.service.SwitchMode(c.Request.Context(), c.Param("courseCode"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "input mode updated", session)
}

// Statistics godoc
// @Summary Get the class summary statistics
// @Tags Workbook
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/statistics [get]
func (h *WorkbookHandler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "statistics retrieved", stats)
}
