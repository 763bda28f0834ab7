package models

import (
	"time"

	"github.com/noah-isme/obe-kurikulum-api/internal/grading"
)

// InputMode selects how scores are entered for a workbook.
type InputMode string

const (
	// ModeRaw enters one score per assessment type; node scores derive.
	ModeRaw InputMode = "raw"
	// ModeNode enters one score per node per type; the assessment-type
	// score is back-solved.
	ModeNode InputMode = "node"
)

// Valid reports whether the mode is one of the two known values.
func (m InputMode) Valid() bool {
	return m == ModeRaw || m == ModeNode
}

// CourseInfo is free-form session metadata, never computed.
type CourseInfo struct {
	Semester    int    `json:"semester"`
	TahunAjaran string `json:"tahun_ajaran"`
	Kelas       string `json:"kelas"`
	Dosen       string `json:"dosen"`
}

// WorkbookSession aggregates one course's grading state: the roster, the
// weight matrix, the active assessment types with their comments, and course
// metadata. Identified by course code; exactly one session is active at a
// time.
type WorkbookSession struct {
	CourseCode      string               `json:"course_code"`
	CourseName      string               `json:"course_name"`
	Mode            InputMode            `json:"mode"`
	Students        []grading.Student    `json:"students"`
	Weights         grading.WeightMatrix `json:"weights"`
	AssessmentTypes []string             `json:"assessment_types"`
	TypeComments    map[string]string    `json:"type_comments,omitempty"`
	CourseInfo      CourseInfo           `json:"course_info"`
	LastModified    time.Time            `json:"last_modified"`
}

// Clone returns a deep copy that is safe to read or serialize outside the
// owning service's lock while the original keeps mutating.
func (s *WorkbookSession) Clone() *WorkbookSession {
	out := *s
	out.Students = make([]grading.Student, len(s.Students))
	for i := range s.Students {
		out.Students[i] = s.Students[i].Clone()
	}
	out.Weights = s.Weights.Clone()
	out.AssessmentTypes = append([]string(nil), s.AssessmentTypes...)
	if s.TypeComments != nil {
		out.TypeComments = make(map[string]string, len(s.TypeComments))
		for k, v := range s.TypeComments {
			out.TypeComments[k] = v
		}
	}
	return &out
}

// Touch bumps the modification timestamp.
func (s *WorkbookSession) Touch() {
	s.LastModified = time.Now().UTC()
}

// StudentByKey finds a roster row by its stable key.
func (s *WorkbookSession) StudentByKey(key string) *grading.Student {
	for i := range s.Students {
		if s.Students[i].Key == key {
			return &s.Students[i]
		}
	}
	return nil
}

// Progress summarizes the session for the course-selection list.
func (s *WorkbookSession) Progress() SessionProgress {
	progress := SessionProgress{
		TotalStudents:     len(s.Students),
		TypesConfigured:   len(s.AssessmentTypes) > 0,
		WeightsConfigured: s.Weights.TotalWeight() > 0,
	}
	for i := range s.Students {
		if s.Students[i].HasCompleteScores(s.AssessmentTypes) {
			progress.CompletedStudents++
		}
	}
	return progress
}
