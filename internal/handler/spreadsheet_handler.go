package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	"github.com/noah-isme/obe-kurikulum-api/internal/service"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
	"github.com/noah-isme/obe-kurikulum-api/pkg/response"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type spreadsheetService interface {
	Template(ctx context.Context, courseCode string) (string, []byte, error)
	ExportScores(ctx context.Context, courseCode string) (string, []byte, error)
	ExportDetail(ctx context.Context, courseCode string) (string, []byte, error)
	ExportReport(ctx context.Context, courseCode string) (string, []byte, error)
	ExportCSV(ctx context.Context, courseCode string) (string, []byte, error)
	ExportPDF(ctx context.Context, courseCode string) (string, []byte, error)
	ParseImport(ctx context.Context, courseCode string, r io.Reader) (*service.ImportPreview, error)
	ConfirmImport(ctx context.Context, courseCode, token string) (*models.WorkbookSession, error)
}

// SpreadsheetHandler exposes template, export and import endpoints.
type SpreadsheetHandler struct {
	service spreadsheetService
}

// NewSpreadsheetHandler builds a new handler.
func NewSpreadsheetHandler(service spreadsheetService) *SpreadsheetHandler {
	return &SpreadsheetHandler{service: service}
}

// Template godoc
// @Summary Download the pre-structured entry workbook
// @Tags Spreadsheet
// @Produce application/octet-stream
// @Param courseCode path string true "Course code"
// @Success 200 {file} binary
// @Router /workbooks/{courseCode}/template [get]
func (h *SpreadsheetHandler) Template(c *gin.Context) {
	name, content, err := h.service.Template(c.Request.Context(), c.Param("courseCode"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, name, contentTypeXLSX, content)
}

// Export godoc
// @Summary Export the roster in the requested format
// @Tags Spreadsheet
// @Produce application/octet-stream
// @Param courseCode path string true "Course code"
// @Param format query string false "Format: xlsx, detail, report, csv, pdf" default(xlsx)
// @Success 200 {file} binary
// @Router /workbooks/{courseCode}/export [get]
func (h *SpreadsheetHandler) Export(c *gin.Context) {
	code := c.Param("courseCode")
	ctx := c.Request.Context()

	var (
		name        string
		content     []byte
		err         error
		contentType = contentTypeXLSX
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		name, content, err = h.service.ExportScores(ctx, code)
	case "detail":
		name, content, err = h.service.ExportDetail(ctx, code)
	case "report":
		name, content, err = h.service.ExportReport(ctx, code)
	case "csv":
		contentType = "text/csv"
		name, content, err = h.service.ExportCSV(ctx, code)
	case "pdf":
		contentType = "application/pdf"
		name, content, err = h.service.ExportPDF(ctx, code)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown export format"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, name, contentType, content)
}

// Import godoc
// @Summary Upload an xlsx score sheet and stage it for confirmation
// @Tags Spreadsheet
// @Accept multipart/form-data
// @Produce json
// @Param courseCode path string true "Course code"
// @Param file formData file true "Score workbook"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/import [post]
func (h *SpreadsheetHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file upload is required"))
		return
	}
	defer file.Close()

	preview, err := h.service.ParseImport(c.Request.Context(), c.Param("courseCode"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "import staged, confirm to apply", preview)
}

// ConfirmImport godoc
// @Summary Apply a staged import, replacing the roster
// @Tags Spreadsheet
// @Accept json
// @Produce json
// @Param courseCode path string true "Course code"
// @Param payload body dto.ConfirmImportRequest true "Preview token"
// @Success 200 {object} response.Envelope
// @Router /workbooks/{courseCode}/import/confirm [post]
func (h *SpreadsheetHandler) ConfirmImport(c *gin.Context) {
	var req dto.ConfirmImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid confirmation payload"))
		return
	}
	session, err := h.service.ConfirmImport(c.Request.Context(), c.Param("courseCode"), req.Token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "import applied", session)
}
