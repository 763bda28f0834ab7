package grading

import "strings"

// NodeRef identifies one weighted node in the outcome hierarchy: a
// (CPL, CPMK) pair, optionally refined by a Sub-CPMK.
type NodeRef struct {
	CPL     string `json:"cpl"`
	CPMK    string `json:"cpmk"`
	SubCPMK string `json:"sub_cpmk,omitempty"`
}

// String returns the canonical encoding used for sparse per-student maps and
// spreadsheet column names, e.g. "CPL-1_CPMK-2" or "CPL-1_CPMK-2_SUB-1".
func (n NodeRef) String() string {
	parts := []string{n.CPL, n.CPMK}
	if n.SubCPMK != "" {
		parts = append(parts, n.SubCPMK)
	}
	return strings.Join(parts, "_")
}

// NodeKey extends a NodeRef with the assessment type it scores.
type NodeKey struct {
	NodeRef
	AssessmentType string `json:"assessment_type"`
}

// Key builds the NodeKey for one assessment type under this node.
func (n NodeRef) Key(assessmentType string) NodeKey {
	return NodeKey{NodeRef: n, AssessmentType: assessmentType}
}

// String returns the canonical encoding, e.g. "CPL-1_CPMK-2_tugas".
func (k NodeKey) String() string {
	return k.NodeRef.String() + "_" + k.AssessmentType
}

// InputColumn is the spreadsheet column header carrying the node-input value
// for this key.
func (k NodeKey) InputColumn() string {
	return k.String() + "_Input"
}
