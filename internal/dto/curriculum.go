package dto

// CurriculumResponse is the envelope returned by the curriculum CRUD backend
// for GET /mk. The nested shape is association-style: a CPMK may appear under
// several courses and carries its parent CPLs inline.
type CurriculumResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    []CoursePayload `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// CoursePayload is one mata kuliah as served by the backend.
type CoursePayload struct {
	ID       int           `json:"id"`
	KodeMK   string        `json:"kode_mk"`
	NamaMK   string        `json:"nama_mk"`
	SKS      int           `json:"sks"`
	Prodi    string        `json:"prodi"`
	JenisMK  string        `json:"jenis_mk"`
	Semester int           `json:"semester"`
	CPMK     []CPMKPayload `json:"cpmk"`
}

// CPMKPayload embeds parent CPLs and optional Sub-CPMK children.
type CPMKPayload struct {
	ID        int              `json:"id"`
	KodeCPMK  string           `json:"kode_cpmk"`
	Deskripsi string           `json:"deskripsi"`
	CPL       []CPLPayload     `json:"cpl"`
	SubCPMK   []SubCPMKPayload `json:"subcpmk,omitempty"`
}

type CPLPayload struct {
	ID        int    `json:"id"`
	KodeCPL   string `json:"kode_cpl"`
	Deskripsi string `json:"deskripsi"`
}

type SubCPMKPayload struct {
	ID          int    `json:"id"`
	KodeSubCPMK string `json:"kode_subcpmk"`
	Deskripsi   string `json:"deskripsi"`
}
