package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
	"github.com/noah-isme/obe-kurikulum-api/pkg/response"
)

type curriculumService interface {
	Courses(ctx context.Context) ([]grading.Course, error)
	Course(ctx context.Context, code string) (*grading.Course, error)
	Refresh(ctx context.Context) (*grading.Graph, error)
	Graph(ctx context.Context) (*grading.Graph, error)
}

// CurriculumHandler exposes the read-only curriculum endpoints.
type CurriculumHandler struct {
	service curriculumService
}

// NewCurriculumHandler builds a new handler.
func NewCurriculumHandler(service curriculumService) *CurriculumHandler {
	return &CurriculumHandler{service: service}
}

// ListCourses godoc
// @Summary List all courses from the curriculum backend
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CurriculumHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "courses retrieved", courses)
}

// GetCourse godoc
// @Summary Get one course with its outcome structure
// @Tags Curriculum
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseCode} [get]
func (h *CurriculumHandler) GetCourse(c *gin.Context) {
	course, err := h.service.Course(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "course retrieved", course)
}

// GetStructure godoc
// @Summary Get the CPL/CPMK structure reachable from a course
// @Tags Curriculum
// @Produce json
// @Param courseCode path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseCode}/structure [get]
func (h *CurriculumHandler) GetStructure(c *gin.Context) {
	graph, err := h.service.Graph(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	code := c.Param("courseCode")

	type cpmkNode struct {
		Code        string   `json:"code"`
		Description string   `json:"description"`
		SubCPMK     []string `json:"sub_cpmk,omitempty"`
	}
	type cplNode struct {
		Code        string     `json:"code"`
		Description string     `json:"description"`
		CPMK        []cpmkNode `json:"cpmk"`
	}

	course, ok := graph.Courses[code]
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "course not found"))
		return
	}

	structure := make([]cplNode, 0, len(course.RelatedCPL))
	for _, cplCode := range course.RelatedCPL {
		cpl, ok := graph.CPL[cplCode]
		if !ok {
			continue
		}
		node := cplNode{Code: cpl.Code, Description: cpl.Description}
		for _, cpmkCode := range cpl.RelatedCPMK {
			if cpmk, ok := graph.CPMK[cpmkCode]; ok {
				node.CPMK = append(node.CPMK, cpmkNode{
					Code:        cpmk.Code,
					Description: cpmk.Description,
					SubCPMK:     cpmk.RelatedSubCPMK,
				})
			}
		}
		structure = append(structure, node)
	}
	response.JSON(c, http.StatusOK, "structure retrieved", gin.H{
		"course_code": course.Code,
		"course_name": course.Name,
		"has_sub_cpmk": graph.CourseHasSubCPMK(code),
		"structure":   structure,
	})
}

// Refresh godoc
// @Summary Re-fetch the curriculum from the backend
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/refresh [post]
func (h *CurriculumHandler) Refresh(c *gin.Context) {
	graph, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "curriculum refreshed", gin.H{
		"courses":  len(graph.Courses),
		"cpl":      len(graph.CPL),
		"cpmk":     len(graph.CPMK),
		"sub_cpmk": len(graph.SubCPMK),
	})
}

// GradeScale godoc
// @Summary Get the institutional grade scale
// @Tags Curriculum
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-scale [get]
func (h *CurriculumHandler) GradeScale(c *gin.Context) {
	response.JSON(c, http.StatusOK, "grade scale retrieved", grading.GradeBands())
}
