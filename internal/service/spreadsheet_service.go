package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
	"github.com/noah-isme/obe-kurikulum-api/internal/models"
	"github.com/noah-isme/obe-kurikulum-api/pkg/config"
	"github.com/noah-isme/obe-kurikulum-api/pkg/export"
	appErrors "github.com/noah-isme/obe-kurikulum-api/pkg/errors"
)

const (
	sheetInfo         = "Informasi"
	sheetScores       = "Data Nilai"
	sheetInstructions = "Petunjuk"
	sheetStructure    = "Struktur Kurikulum"
	sheetWeights      = "Bobot Penilaian"

	previewTTL  = 15 * time.Minute
	maxColWidth = 40.0
	minColWidth = 8.0
)

// ImportPreview is a parsed upload held server-side until the caller confirms
// applying it. Confirmation replaces the whole roster atomically; an expired
// or unknown token applies nothing.
type ImportPreview struct {
	Token       string            `json:"token"`
	CourseCode  string            `json:"course_code"`
	Students    []grading.Student `json:"students"`
	SkippedRows int               `json:"skipped_rows"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// SpreadsheetService renders workbook templates and reports as xlsx/csv/pdf
// and parses uploaded score sheets back into rosters.
type SpreadsheetService struct {
	workbooks  *WorkbookService
	curriculum *CurriculumService
	exportDir  string
	logger     *zap.Logger

	mu       sync.Mutex
	previews map[string]*ImportPreview
}

// NewSpreadsheetService constructs the service. Generated files are archived
// under cfg.Dir when it is set.
func NewSpreadsheetService(workbooks *WorkbookService, curriculum *CurriculumService, cfg config.ExportConfig, logger *zap.Logger) *SpreadsheetService {
	return &SpreadsheetService{
		workbooks:  workbooks,
		curriculum: curriculum,
		exportDir:  cfg.Dir,
		logger:     logger,
		previews:   make(map[string]*ImportPreview),
	}
}

// archive writes a server-side copy of a generated file. Failures only warn;
// the download response is already built from the in-memory bytes.
func (s *SpreadsheetService) archive(name string, content []byte) {
	if s.exportDir == "" {
		return
	}
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.logger.Warn("export archive dir unavailable", zap.String("dir", s.exportDir), zap.Error(err))
		return
	}
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		s.logger.Warn("export archive write failed", zap.String("path", path), zap.Error(err))
	}
}

// Template renders the pre-structured entry workbook for a course: an info
// sheet, the score grid matching the session's input mode with sample rows,
// usage instructions, the curriculum structure and the current weight matrix.
func (s *SpreadsheetService) Template(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}
	graph, err := s.curriculum.Graph(ctx)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	s.writeInfoSheet(f, session)
	s.writeScoreSheet(f, session, true)
	s.writeInstructionSheet(f, session)
	s.writeStructureSheet(f, graph, session.CourseCode)
	s.writeWeightSheet(f, session)
	f.DeleteSheet("Sheet1")
	if index, idxErr := f.GetSheetIndex(sheetScores); idxErr == nil && index >= 0 {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("render template: %w", err)
	}

	name := fmt.Sprintf("Template_%s_%s_%s.xlsx", modeLabel(session.Mode), session.CourseCode, dateStamp())
	s.archive(name, buf.Bytes())
	return name, buf.Bytes(), nil
}

// ExportScores renders the current roster with final grades.
func (s *SpreadsheetService) ExportScores(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	s.writeInfoSheet(f, session)
	s.writeScoreSheet(f, session, false)
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("render scores export: %w", err)
	}
	name := fmt.Sprintf("Nilai_%s_%s.xlsx", session.CourseCode, dateStamp())
	s.archive(name, buf.Bytes())
	return name, buf.Bytes(), nil
}

// ExportDetail renders the roster including the per-node breakdown columns.
func (s *SpreadsheetService) ExportDetail(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	s.writeInfoSheet(f, session)
	s.writeDetailSheet(f, session)
	s.writeWeightSheet(f, session)
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("render detail export: %w", err)
	}
	name := fmt.Sprintf("Nilai_Detail_%s_%s.xlsx", session.CourseCode, dateStamp())
	s.archive(name, buf.Bytes())
	return name, buf.Bytes(), nil
}

// ExportReport renders the summary report: class statistics, the grade scale
// and the weight completeness table.
func (s *SpreadsheetService) ExportReport(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}
	stats, err := s.workbooks.Statistics(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	s.writeInfoSheet(f, session)
	s.writeReportSheet(f, session, stats)
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("render report export: %w", err)
	}
	name := fmt.Sprintf("Laporan_%s_%s.xlsx", session.CourseCode, dateStamp())
	s.archive(name, buf.Bytes())
	return name, buf.Bytes(), nil
}

// ExportCSV renders the roster as CSV.
func (s *SpreadsheetService) ExportCSV(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}
	data := rosterDataset(session)
	content, err := export.CSV(data)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("Nilai_%s_%s.csv", session.CourseCode, dateStamp())
	s.archive(name, content)
	return name, content, nil
}

// ExportPDF renders the roster as a tabular PDF.
func (s *SpreadsheetService) ExportPDF(ctx context.Context, courseCode string) (string, []byte, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return "", nil, err
	}
	data := rosterDataset(session)
	title := fmt.Sprintf("Rekap Nilai %s %s", session.CourseCode, session.CourseName)
	content, err := export.PDF(data, title)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("Nilai_%s_%s.pdf", session.CourseCode, dateStamp())
	s.archive(name, content)
	return name, content, nil
}

// ParseImport reads an uploaded xlsx and stages the parsed roster behind a
// one-time token. Nothing touches the session until ConfirmImport; any
// structural failure aborts the whole upload.
func (s *SpreadsheetService) ParseImport(ctx context.Context, courseCode string, r io.Reader) (*ImportPreview, error) {
	session, err := s.workbooks.Session(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportInvalid.Code, appErrors.ErrImportInvalid.Status, "file is not a readable xlsx workbook")
	}
	defer f.Close()

	sheet := pickScoreSheet(f)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrImportInvalid.Code, appErrors.ErrImportInvalid.Status, "score sheet could not be read")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "score sheet has no data rows")
	}

	columns, err := mapColumns(rows[0], session)
	if err != nil {
		return nil, err
	}

	students := make([]grading.Student, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			skipped++
			continue
		}
		student := grading.NewStudent(len(students) + 1)
		student.NIM = cellAt(row, columns.nim)
		student.Nama = cellAt(row, columns.nama)
		if student.NIM == "" && student.Nama == "" {
			skipped++
			continue
		}
		for assessmentType, col := range columns.scores {
			if value, ok := parseScore(cellAt(row, col)); ok {
				student.Scores[assessmentType] = grading.ClampScore(value)
			}
		}
		for inputKey, col := range columns.inputs {
			if value, ok := parseScore(cellAt(row, col)); ok {
				if student.NodeInputs == nil {
					student.NodeInputs = make(map[string]float64)
				}
				student.NodeInputs[inputKey] = grading.ClampScore(value)
			}
		}
		students = append(students, student)
	}

	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "no usable student rows found")
	}

	preview := &ImportPreview{
		Token:       uuid.NewString(),
		CourseCode:  courseCode,
		Students:    students,
		SkippedRows: skipped,
		ExpiresAt:   time.Now().Add(previewTTL),
	}

	s.mu.Lock()
	s.pruneExpired()
	s.previews[preview.Token] = preview
	s.mu.Unlock()

	s.logger.Info("import staged",
		zap.String("course", courseCode),
		zap.Int("students", len(students)),
		zap.Int("skipped", skipped))
	return preview, nil
}

// ConfirmImport applies a staged preview to the session, replacing the whole
// roster. The token is single-use.
func (s *SpreadsheetService) ConfirmImport(ctx context.Context, courseCode, token string) (*models.WorkbookSession, error) {
	s.mu.Lock()
	preview, ok := s.previews[token]
	if ok {
		delete(s.previews, token)
	}
	s.mu.Unlock()

	if !ok || time.Now().After(preview.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import preview not found or expired")
	}
	if preview.CourseCode != courseCode {
		return nil, appErrors.Clone(appErrors.ErrValidation, "import preview belongs to another course")
	}

	return s.workbooks.ReplaceRoster(ctx, courseCode, preview.Students)
}

func (s *SpreadsheetService) pruneExpired() {
	now := time.Now()
	for token, preview := range s.previews {
		if now.After(preview.ExpiresAt) {
			delete(s.previews, token)
		}
	}
}

func (s *SpreadsheetService) writeInfoSheet(f *excelize.File, session *models.WorkbookSession) {
	f.NewSheet(sheetInfo)
	rows := [][]interface{}{
		{"Kode Mata Kuliah", session.CourseCode},
		{"Nama Mata Kuliah", session.CourseName},
		{"Mode Input", modeLabel(session.Mode)},
		{"Semester", session.CourseInfo.Semester},
		{"Tahun Ajaran", session.CourseInfo.TahunAjaran},
		{"Kelas", session.CourseInfo.Kelas},
		{"Dosen Pengampu", session.CourseInfo.Dosen},
		{"Jumlah Mahasiswa", len(session.Students)},
		{"Dibuat", time.Now().Format("2006-01-02 15:04")},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetSheetRow(sheetInfo, cell, &row)
	}
	f.SetColWidth(sheetInfo, "A", "A", 22)
	f.SetColWidth(sheetInfo, "B", "B", 30)
}

// writeScoreSheet renders the entry grid. Template mode fills the first rows
// with sample values so the column semantics are obvious on open.
func (s *SpreadsheetService) writeScoreSheet(f *excelize.File, session *models.WorkbookSession, template bool) {
	f.NewSheet(sheetScores)

	headers := []interface{}{"No", "NIM", "Nama"}
	for _, column := range scoreColumns(session) {
		headers = append(headers, column)
	}
	if !template {
		headers = append(headers, "Nilai Akhir", "Huruf", "Status")
	}
	f.SetSheetRow(sheetScores, "A1", &headers)

	rowIndex := 2
	if template {
		sample := []interface{}{1, "230001", "Contoh Mahasiswa"}
		for range scoreColumns(session) {
			sample = append(sample, 75)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIndex)
		f.SetSheetRow(sheetScores, cell, &sample)
		rowIndex++
	}

	for i := range session.Students {
		student := &session.Students[i]
		if template && student.NIM == "" && student.Nama == "" {
			continue
		}
		row := []interface{}{student.No, student.NIM, student.Nama}
		if session.Mode == models.ModeNode {
			for _, node := range session.Weights.Nodes() {
				for _, t := range session.AssessmentTypes {
					row = append(row, student.NodeInputs[node.Key(t).String()])
				}
			}
		} else {
			for _, t := range session.AssessmentTypes {
				row = append(row, student.Scores[t])
			}
		}
		if !template {
			row = append(row, student.FinalScore, student.LetterGrade, student.PassStatus)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIndex)
		f.SetSheetRow(sheetScores, cell, &row)
		rowIndex++
	}

	autoFitColumns(f, sheetScores, headers)
}

func (s *SpreadsheetService) writeDetailSheet(f *excelize.File, session *models.WorkbookSession) {
	f.NewSheet(sheetScores)

	headers := []interface{}{"No", "NIM", "Nama"}
	for _, t := range session.AssessmentTypes {
		headers = append(headers, t)
	}
	nodes := session.Weights.Nodes()
	for _, node := range nodes {
		headers = append(headers, node.String())
	}
	headers = append(headers, "Nilai Akhir", "Huruf", "Status", "Capaian")
	f.SetSheetRow(sheetScores, "A1", &headers)

	for i := range session.Students {
		student := &session.Students[i]
		row := []interface{}{student.No, student.NIM, student.Nama}
		for _, t := range session.AssessmentTypes {
			row = append(row, student.Scores[t])
		}
		for _, node := range nodes {
			row = append(row, student.PerNode[node.String()])
		}
		level := grading.Performance(student.FinalScore)
		row = append(row, student.FinalScore, student.LetterGrade, student.PassStatus,
			fmt.Sprintf("%d - %s", level.Level, level.Label))
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(sheetScores, cell, &row)
	}

	autoFitColumns(f, sheetScores, headers)
}

func (s *SpreadsheetService) writeInstructionSheet(f *excelize.File, session *models.WorkbookSession) {
	f.NewSheet(sheetInstructions)
	lines := []string{
		"Petunjuk Pengisian",
		"",
		"1. Isi kolom NIM dan Nama untuk setiap mahasiswa.",
		"2. Nilai diisi dalam rentang 0-100. Nilai di luar rentang akan dipotong otomatis.",
		"3. Baris kosong akan dilewati saat impor.",
		"4. Jangan mengubah baris judul kolom.",
	}
	if session.Mode == models.ModeNode {
		lines = append(lines,
			"5. Mode input per node aktif: setiap kolom adalah persentase capaian",
			"   untuk satu kombinasi CPL/CPMK dan jenis penilaian.")
	} else {
		lines = append(lines,
			"5. Mode input nilai mentah aktif: satu kolom per jenis penilaian.")
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		f.SetCellValue(sheetInstructions, cell, line)
	}
	f.SetColWidth(sheetInstructions, "A", "A", 80)
}

func (s *SpreadsheetService) writeStructureSheet(f *excelize.File, graph *grading.Graph, courseCode string) {
	f.NewSheet(sheetStructure)
	headers := []interface{}{"CPL", "Deskripsi CPL", "CPMK", "Deskripsi CPMK", "Sub-CPMK"}
	f.SetSheetRow(sheetStructure, "A1", &headers)

	course, ok := graph.Courses[courseCode]
	if !ok {
		return
	}
	rowIndex := 2
	for _, cplCode := range course.RelatedCPL {
		cpl, ok := graph.CPL[cplCode]
		if !ok {
			continue
		}
		for _, cpmkCode := range cpl.RelatedCPMK {
			cpmk, ok := graph.CPMK[cpmkCode]
			if !ok {
				continue
			}
			subs := strings.Join(cpmk.RelatedSubCPMK, ", ")
			row := []interface{}{cpl.Code, cpl.Description, cpmk.Code, cpmk.Description, subs}
			cell, _ := excelize.CoordinatesToCellName(1, rowIndex)
			f.SetSheetRow(sheetStructure, cell, &row)
			rowIndex++
		}
	}
	f.SetColWidth(sheetStructure, "B", "B", maxColWidth)
	f.SetColWidth(sheetStructure, "D", "D", maxColWidth)
}

func (s *SpreadsheetService) writeWeightSheet(f *excelize.File, session *models.WorkbookSession) {
	f.NewSheet(sheetWeights)
	headers := []interface{}{"Node"}
	for _, t := range session.AssessmentTypes {
		headers = append(headers, t)
	}
	headers = append(headers, "Total")
	f.SetSheetRow(sheetWeights, "A1", &headers)

	for i, node := range session.Weights.Nodes() {
		weights := session.Weights.Weights(node)
		row := []interface{}{node.String()}
		total := 0.0
		for _, t := range session.AssessmentTypes {
			row = append(row, weights[t])
			total += weights[t]
		}
		row = append(row, total)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(sheetWeights, cell, &row)
	}
	f.SetColWidth(sheetWeights, "A", "A", 30)
}

func (s *SpreadsheetService) writeReportSheet(f *excelize.File, session *models.WorkbookSession, stats *grading.ClassStatistics) {
	const sheet = "Ringkasan"
	f.NewSheet(sheet)

	rows := [][]interface{}{
		{"Ringkasan Kelas"},
		{"Jumlah Mahasiswa", len(session.Students)},
		{"Data Lengkap", stats.CompleteCount},
		{"Lulus", stats.PassCount},
		{"Persentase Kelulusan", stats.PassRate},
		{"Rata-rata Nilai Akhir", stats.AverageFinal},
		{},
		{"Rata-rata per Jenis Penilaian"},
	}
	for _, t := range session.AssessmentTypes {
		rows = append(rows, []interface{}{t, stats.Averages[t]})
	}

	if nodes := session.Weights.Nodes(); len(nodes) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Rata-rata per CPMK"})
		count := float64(len(session.Students))
		for _, node := range nodes {
			sum := 0.0
			for i := range session.Students {
				sum += session.Students[i].PerNode[node.String()]
			}
			avg := 0.0
			if count > 0 {
				avg = sum / count
			}
			rows = append(rows, []interface{}{node.String(), formatScore(avg)})
		}
	}

	level := grading.Performance(stats.AverageFinal)
	rows = append(rows, []interface{}{},
		[]interface{}{"Indikator Capaian", fmt.Sprintf("%d - %s", level.Level, level.Label)})

	rows = append(rows, []interface{}{}, []interface{}{"Skala Nilai"},
		[]interface{}{"Rentang", "Huruf", "Status"})
	for _, band := range grading.GradeBands() {
		rows = append(rows, []interface{}{
			fmt.Sprintf("%.2f - %.2f", band.Min, band.Max), band.Letter, band.Status,
		})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		rowCopy := row
		f.SetSheetRow(sheet, cell, &rowCopy)
	}
	f.SetColWidth(sheet, "A", "A", 26)
}

type importColumns struct {
	no     int
	nim    int
	nama   int
	scores map[string]int
	inputs map[string]int
}

// mapColumns locates the required columns. NIM and Nama tolerate decorated
// headers like "NIM Mahasiswa" via substring match; the No column is matched
// exactly so score headers containing "no" are not captured.
func mapColumns(header []string, session *models.WorkbookSession) (*importColumns, error) {
	columns := &importColumns{no: -1, nim: -1, nama: -1, scores: map[string]int{}, inputs: map[string]int{}}

	for i, raw := range header {
		cell := strings.ToLower(strings.TrimSpace(raw))
		if cell == "" {
			continue
		}
		switch {
		case columns.no < 0 && (cell == "no" || cell == "no." || cell == "nomor"):
			columns.no = i
			continue
		case columns.nim < 0 && strings.Contains(cell, "nim"):
			columns.nim = i
			continue
		case columns.nama < 0 && strings.Contains(cell, "nama"):
			columns.nama = i
			continue
		}
		if session.Mode == models.ModeNode {
			for _, node := range session.Weights.Nodes() {
				for _, t := range session.AssessmentTypes {
					key := node.Key(t)
					if strings.EqualFold(strings.TrimSpace(raw), key.InputColumn()) ||
						strings.EqualFold(strings.TrimSpace(raw), key.String()) {
						columns.inputs[key.String()] = i
					}
				}
			}
			continue
		}
		for _, t := range session.AssessmentTypes {
			if strings.Contains(cell, strings.ToLower(t)) {
				columns.scores[t] = i
				break
			}
		}
	}

	if columns.no < 0 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "No column not found")
	}
	if columns.nim < 0 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "NIM column not found")
	}
	if columns.nama < 0 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "Nama column not found")
	}
	if len(columns.scores) == 0 && len(columns.inputs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrImportInvalid, "no score columns match the active assessment types")
	}
	return columns, nil
}

// pickScoreSheet prefers a sheet whose name mentions scores or data, falling
// back to the first sheet.
func pickScoreSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	for _, name := range sheets {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "nilai") || strings.Contains(lower, "data") {
			return name
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return "Sheet1"
}

func scoreColumns(session *models.WorkbookSession) []string {
	if session.Mode == models.ModeNode {
		var columns []string
		for _, node := range session.Weights.Nodes() {
			for _, t := range session.AssessmentTypes {
				columns = append(columns, node.Key(t).InputColumn())
			}
		}
		return columns
	}
	return append([]string(nil), session.AssessmentTypes...)
}

func rosterDataset(session *models.WorkbookSession) export.Dataset {
	headers := []string{"No", "NIM", "Nama"}
	headers = append(headers, session.AssessmentTypes...)
	headers = append(headers, "Nilai Akhir", "Huruf", "Status")

	rows := make([]map[string]string, 0, len(session.Students))
	for i := range session.Students {
		student := &session.Students[i]
		row := map[string]string{
			"No":          strconv.Itoa(student.No),
			"NIM":         student.NIM,
			"Nama":        student.Nama,
			"Nilai Akhir": formatScore(student.FinalScore),
			"Huruf":       student.LetterGrade,
			"Status":      student.PassStatus,
		}
		for _, t := range session.AssessmentTypes {
			row[t] = formatScore(student.Scores[t])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func autoFitColumns(f *excelize.File, sheet string, headers []interface{}) {
	for i, header := range headers {
		width := float64(len(fmt.Sprint(header))) + 4
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		f.SetColWidth(sheet, name, name, width)
	}
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parseScore(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func modeLabel(mode models.InputMode) string {
	if mode == models.ModeNode {
		return "PerNode"
	}
	return "NilaiMentah"
}

func dateStamp() string {
	return time.Now().Format("2006-01-02")
}
