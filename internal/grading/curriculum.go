package grading

// CPL is a graduate learning outcome (Capaian Pembelajaran Lulusan).
type CPL struct {
	ID          int      `json:"id"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	RelatedCPMK []string `json:"related_cpmk"`
}

// CPMK is a course learning outcome. A CPMK may belong to several CPL and
// may optionally be refined into Sub-CPMK.
type CPMK struct {
	ID             int      `json:"id"`
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	RelatedCPL     []string `json:"related_cpl"`
	RelatedSubCPMK []string `json:"related_subcpmk"`
}

// SubCPMK is a finer-grained outcome under exactly one CPMK.
type SubCPMK struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ParentCPMK  string `json:"parent_cpmk"`
}

// Course is a mata kuliah. RelatedCPMK holds the direct course→CPMK edges
// from the source payload, which is narrower than the set reachable through
// RelatedCPL.
type Course struct {
	ID          int      `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	SKS         int      `json:"sks"`
	Prodi       string   `json:"prodi"`
	Jenis       string   `json:"jenis"`
	Semester    int      `json:"semester"`
	RelatedCPL  []string `json:"related_cpl"`
	RelatedCPMK []string `json:"related_cpmk"`
}
