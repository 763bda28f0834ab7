package grading

import "sort"

// AssessmentWeights maps an assessment type to its percentage weight.
type AssessmentWeights map[string]float64

// WeightRow is a tagged variant: either a flat per-type cell set scored at
// the CPMK level (Direct), or a nested per-Sub-CPMK cell set (Sub). Exactly
// one side is populated; a Sub-CPMK-less CPMK inside a Sub-mode course still
// uses Direct.
type WeightRow struct {
	Direct AssessmentWeights            `json:"direct,omitempty"`
	Sub    map[string]AssessmentWeights `json:"sub,omitempty"`
}

// HasSub reports whether this row nests Sub-CPMK cells.
func (r *WeightRow) HasSub() bool {
	return r != nil && len(r.Sub) > 0
}

// WeightMatrix is the mutable nested weight mapping CPL → CPMK → WeightRow.
type WeightMatrix map[string]map[string]*WeightRow

// InitWeights performs the full rebuild for one course: walk related CPL →
// related CPMK (→ related Sub-CPMK when the course operates in Sub-CPMK
// mode) and zero-initialize a cell per assessment type at the deepest
// applicable level. Prior weights are deliberately discarded.
func InitWeights(g *Graph, courseCode string, types []string) WeightMatrix {
	m := WeightMatrix{}
	course, ok := g.Courses[courseCode]
	if !ok {
		return m
	}
	subMode := g.CourseHasSubCPMK(courseCode)

	for _, cplCode := range course.RelatedCPL {
		cpl, ok := g.CPL[cplCode]
		if !ok {
			continue
		}
		for _, cpmkCode := range cpl.RelatedCPMK {
			cpmk, ok := g.CPMK[cpmkCode]
			if !ok {
				continue
			}
			row := &WeightRow{}
			if subMode && len(cpmk.RelatedSubCPMK) > 0 {
				row.Sub = make(map[string]AssessmentWeights, len(cpmk.RelatedSubCPMK))
				for _, subCode := range cpmk.RelatedSubCPMK {
					row.Sub[subCode] = zeroWeights(types)
				}
			} else {
				row.Direct = zeroWeights(types)
			}
			if m[cplCode] == nil {
				m[cplCode] = make(map[string]*WeightRow)
			}
			m[cplCode][cpmkCode] = row
		}
	}
	return m
}

// SetWeight writes one cell, clamping the value to [0, 100] and creating
// intermediate nodes lazily.
func (m WeightMatrix) SetWeight(cpl, cpmk, assessmentType string, value float64, subCPMK string) {
	value = clampScore(value)

	if m[cpl] == nil {
		m[cpl] = make(map[string]*WeightRow)
	}
	row := m[cpl][cpmk]
	if row == nil {
		row = &WeightRow{}
		m[cpl][cpmk] = row
	}

	if subCPMK != "" {
		if row.Sub == nil {
			row.Sub = make(map[string]AssessmentWeights)
		}
		if row.Sub[subCPMK] == nil {
			row.Sub[subCPMK] = AssessmentWeights{}
		}
		row.Sub[subCPMK][assessmentType] = value
		return
	}

	if row.Direct == nil {
		row.Direct = AssessmentWeights{}
	}
	row.Direct[assessmentType] = value
}

// Weights returns the cell map for one node, or nil when the node is absent.
func (m WeightMatrix) Weights(node NodeRef) AssessmentWeights {
	row := m[node.CPL][node.CPMK]
	if row == nil {
		return nil
	}
	if node.SubCPMK != "" {
		return row.Sub[node.SubCPMK]
	}
	return row.Direct
}

// Nodes lists every weighted node in stable (sorted) order.
func (m WeightMatrix) Nodes() []NodeRef {
	var nodes []NodeRef
	for _, cplCode := range sortedKeys(m) {
		rows := m[cplCode]
		cpmkCodes := make([]string, 0, len(rows))
		for code := range rows {
			cpmkCodes = append(cpmkCodes, code)
		}
		sort.Strings(cpmkCodes)
		for _, cpmkCode := range cpmkCodes {
			row := rows[cpmkCode]
			if row.HasSub() {
				subCodes := make([]string, 0, len(row.Sub))
				for code := range row.Sub {
					subCodes = append(subCodes, code)
				}
				sort.Strings(subCodes)
				for _, subCode := range subCodes {
					nodes = append(nodes, NodeRef{CPL: cplCode, CPMK: cpmkCode, SubCPMK: subCode})
				}
				continue
			}
			nodes = append(nodes, NodeRef{CPL: cplCode, CPMK: cpmkCode})
		}
	}
	return nodes
}

// Clone returns a deep copy of the matrix, detaching every row and cell map.
func (m WeightMatrix) Clone() WeightMatrix {
	if m == nil {
		return nil
	}
	out := make(WeightMatrix, len(m))
	for cplCode, rows := range m {
		cloned := make(map[string]*WeightRow, len(rows))
		for cpmkCode, row := range rows {
			next := &WeightRow{}
			if row.Direct != nil {
				next.Direct = make(AssessmentWeights, len(row.Direct))
				for k, v := range row.Direct {
					next.Direct[k] = v
				}
			}
			if row.Sub != nil {
				next.Sub = make(map[string]AssessmentWeights, len(row.Sub))
				for subCode, weights := range row.Sub {
					copied := make(AssessmentWeights, len(weights))
					for k, v := range weights {
						copied[k] = v
					}
					next.Sub[subCode] = copied
				}
			}
			cloned[cpmkCode] = next
		}
		out[cplCode] = cloned
	}
	return out
}

// TotalWeight sums every cell in the matrix. Zero means no weights are
// configured anywhere and grading falls back to plain averaging.
func (m WeightMatrix) TotalWeight() float64 {
	total := 0.0
	for _, node := range m.Nodes() {
		for _, w := range m.Weights(node) {
			total += w
		}
	}
	return total
}

// NodeTotal is the per-node weight sum shown against the 100% target. It is
// informational only and never blocks scoring.
type NodeTotal struct {
	Node     NodeRef `json:"node"`
	Total    float64 `json:"total"`
	Balanced bool    `json:"balanced"`
}

// Completeness reports each node's weight total against the 100% target.
func (m WeightMatrix) Completeness() []NodeTotal {
	nodes := m.Nodes()
	totals := make([]NodeTotal, 0, len(nodes))
	for _, node := range nodes {
		sum := 0.0
		for _, w := range m.Weights(node) {
			sum += w
		}
		totals = append(totals, NodeTotal{Node: node, Total: sum, Balanced: sum == 100})
	}
	return totals
}

func zeroWeights(types []string) AssessmentWeights {
	w := make(AssessmentWeights, len(types))
	for _, t := range types {
		w[t] = 0
	}
	return w
}

func sortedKeys(m WeightMatrix) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
