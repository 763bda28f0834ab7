package models

import "time"

// SchemaVersion identifies the persisted store layout. Opening a store
// written by an older version adds the missing collections in place; data
// already present is never dropped.
const SchemaVersion = 2

// Store collection names.
const (
	CollectionGradingData     = "grading_data"
	CollectionSelections      = "course_selections"
	CollectionAssessmentTypes = "assessment_types"
	CollectionSettings        = "settings"
)

// DefaultAssessmentTypes seeds a store that has no global type record yet.
var DefaultAssessmentTypes = []string{"tugas", "kuis", "uts", "uas"}

// SessionProgress is the denormalized completion summary kept alongside each
// course selection. It is refreshed by every grading-data write, not joined
// at read time.
type SessionProgress struct {
	TotalStudents     int  `json:"total_students"`
	CompletedStudents int  `json:"completed_students"`
	WeightsConfigured bool `json:"weights_configured"`
	TypesConfigured   bool `json:"types_configured"`
}

// CourseSelection records a course the user has opened, surviving deletion
// of its grading data.
type CourseSelection struct {
	CourseCode   string          `json:"course_code"`
	CourseName   string          `json:"course_name"`
	SKS          int             `json:"sks"`
	Semester     int             `json:"semester"`
	LastAccessed time.Time       `json:"last_accessed"`
	HasData      bool            `json:"has_data"`
	Progress     SessionProgress `json:"progress"`
}

// AssessmentTypeRecord is the single global record of active assessment
// types and their free-text comments.
type AssessmentTypeRecord struct {
	Types    []string          `json:"types"`
	Comments map[string]string `json:"comments,omitempty"`
}
