package dto

// AddStudentsRequest appends blank roster rows. The dashboard uses batch
// sizes of 1 and 5.
type AddStudentsRequest struct {
	Count int `json:"count" validate:"required,min=1,max=100"`
}

// UpdateStudentRequest patches one field of one student. Text fields (nim,
// nama) travel in Value; numeric fields (a raw assessment-type score or a
// node input key in node mode) travel in Score.
type UpdateStudentRequest struct {
	Field string   `json:"field" validate:"required"`
	Value string   `json:"value,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// SetWeightRequest writes one weight cell. SubCPMK is set only for courses
// operating in Sub-CPMK mode.
type SetWeightRequest struct {
	CPL            string  `json:"cpl" validate:"required"`
	CPMK           string  `json:"cpmk" validate:"required"`
	SubCPMK        string  `json:"sub_cpmk,omitempty"`
	AssessmentType string  `json:"assessment_type" validate:"required"`
	Value          float64 `json:"value"`
}

// AssessmentTypesRequest replaces the active assessment-type set. At least
// one type must remain.
type AssessmentTypesRequest struct {
	Types    []string          `json:"types" validate:"required,min=1,dive,required"`
	Comments map[string]string `json:"comments,omitempty"`
}

// CourseInfoRequest carries free-form session metadata.
type CourseInfoRequest struct {
	Semester    int    `json:"semester" validate:"omitempty,min=1,max=3"`
	TahunAjaran string `json:"tahun_ajaran,omitempty"`
	Kelas       string `json:"kelas,omitempty"`
	Dosen       string `json:"dosen,omitempty"`
}

// SwitchModeRequest toggles between raw-score and node-input entry. The
// switch wipes all entered scores, so callers must confirm once any student
// holds data.
type SwitchModeRequest struct {
	Mode    string `json:"mode" validate:"required,oneof=raw node"`
	Confirm bool   `json:"confirm"`
}

// ConfirmImportRequest applies a previously parsed import preview.
type ConfirmImportRequest struct {
	Token string `json:"token" validate:"required"`
}
