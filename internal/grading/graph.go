package grading

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-kurikulum-api/internal/dto"
)

// Placeholder defaults for absent or malformed course fields. The loader
// never rejects a payload; it patches holes and keeps going.
const (
	defaultCourseName  = "Unknown Course"
	defaultDescription = "No description available"
	defaultSKS         = 3
	defaultSemester    = 1
)

// Graph is the loaded curriculum: four code-keyed lookup maps plus the
// bidirectional CPL↔CPMK indices derived from the one-directional payload.
type Graph struct {
	Courses map[string]*Course
	CPL     map[string]*CPL
	CPMK    map[string]*CPMK
	SubCPMK map[string]*SubCPMK
}

// BuildGraph transforms the flat backend payload into lookup maps in a
// single pass. Repeated CPMK appearances across courses are merged by union,
// never overwritten. Data-quality holes (a CPMK without CPL, a course
// without CPMK) are logged and tolerated; downstream falls back to
// unweighted grading.
func BuildGraph(payload []dto.CoursePayload, logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Graph{
		Courses: make(map[string]*Course, len(payload)),
		CPL:     make(map[string]*CPL),
		CPMK:    make(map[string]*CPMK),
		SubCPMK: make(map[string]*SubCPMK),
	}

	for _, raw := range payload {
		course := &Course{
			ID:          raw.ID,
			Code:        codeOr(raw.KodeMK, raw.ID),
			Name:        stringOr(raw.NamaMK, defaultCourseName),
			SKS:         intOr(raw.SKS, defaultSKS),
			Prodi:       raw.Prodi,
			Jenis:       raw.JenisMK,
			Semester:    intOr(raw.Semester, defaultSemester),
			RelatedCPL:  []string{},
			RelatedCPMK: []string{},
		}

		if len(raw.CPMK) == 0 {
			logger.Warn("course without cpmk, weighted grading unavailable",
				zap.String("course", course.Code))
		}

		for _, rawCPMK := range raw.CPMK {
			cpmkCode := codeOr(rawCPMK.KodeCPMK, rawCPMK.ID)
			cpmk := g.upsertCPMK(cpmkCode, rawCPMK)
			course.RelatedCPMK = appendUnique(course.RelatedCPMK, cpmkCode)

			if len(rawCPMK.CPL) == 0 {
				logger.Warn("cpmk without cpl", zap.String("cpmk", cpmkCode),
					zap.String("course", course.Code))
			}

			for _, rawCPL := range rawCPMK.CPL {
				cplCode := codeOr(rawCPL.KodeCPL, rawCPL.ID)
				cpl := g.upsertCPL(cplCode, rawCPL)
				cpl.RelatedCPMK = appendUnique(cpl.RelatedCPMK, cpmkCode)
				cpmk.RelatedCPL = appendUnique(cpmk.RelatedCPL, cplCode)
				course.RelatedCPL = appendUnique(course.RelatedCPL, cplCode)
			}

			for _, rawSub := range rawCPMK.SubCPMK {
				subCode := codeOr(rawSub.KodeSubCPMK, rawSub.ID)
				if _, ok := g.SubCPMK[subCode]; !ok {
					g.SubCPMK[subCode] = &SubCPMK{
						ID:          rawSub.ID,
						Code:        subCode,
						Description: stringOr(rawSub.Deskripsi, defaultDescription),
						ParentCPMK:  cpmkCode,
					}
				}
				cpmk.RelatedSubCPMK = appendUnique(cpmk.RelatedSubCPMK, subCode)
			}
		}

		g.Courses[course.Code] = course
	}

	return g
}

func (g *Graph) upsertCPMK(code string, raw dto.CPMKPayload) *CPMK {
	if existing, ok := g.CPMK[code]; ok {
		return existing
	}
	cpmk := &CPMK{
		ID:             raw.ID,
		Code:           code,
		Description:    stringOr(raw.Deskripsi, defaultDescription),
		RelatedCPL:     []string{},
		RelatedSubCPMK: []string{},
	}
	g.CPMK[code] = cpmk
	return cpmk
}

func (g *Graph) upsertCPL(code string, raw dto.CPLPayload) *CPL {
	if existing, ok := g.CPL[code]; ok {
		return existing
	}
	cpl := &CPL{
		ID:          raw.ID,
		Code:        code,
		Description: stringOr(raw.Deskripsi, defaultDescription),
		RelatedCPMK: []string{},
	}
	g.CPL[code] = cpl
	return cpl
}

// CourseDirectCPMK returns exactly the CPMK codes embedded under the course
// in the source payload, order-preserving.
func (g *Graph) CourseDirectCPMK(courseCode string) []string {
	course, ok := g.Courses[courseCode]
	if !ok {
		return nil
	}
	return append([]string(nil), course.RelatedCPMK...)
}

// CourseAllCPMKViaCPL returns every CPMK reachable by following the course's
// related CPLs, order-preserving and de-duplicated. This is the broader set
// the grading tables walk.
func (g *Graph) CourseAllCPMKViaCPL(courseCode string) []string {
	course, ok := g.Courses[courseCode]
	if !ok {
		return nil
	}
	var result []string
	for _, cplCode := range course.RelatedCPL {
		cpl, ok := g.CPL[cplCode]
		if !ok {
			continue
		}
		for _, cpmkCode := range cpl.RelatedCPMK {
			result = appendUnique(result, cpmkCode)
		}
	}
	return result
}

// CourseHasSubCPMK reports whether any CPMK reachable from the course
// carries Sub-CPMK children. One hit switches the whole course into
// Sub-CPMK mode.
func (g *Graph) CourseHasSubCPMK(courseCode string) bool {
	for _, cpmkCode := range g.CourseAllCPMKViaCPL(courseCode) {
		if cpmk, ok := g.CPMK[cpmkCode]; ok && len(cpmk.RelatedSubCPMK) > 0 {
			return true
		}
	}
	return false
}

// CourseList returns all courses sorted by code.
func (g *Graph) CourseList() []Course {
	list := make([]Course, 0, len(g.Courses))
	for _, course := range g.Courses {
		list = append(list, *course)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func codeOr(code string, id int) string {
	if code != "" {
		return code
	}
	return strconv.Itoa(id)
}

func stringOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
