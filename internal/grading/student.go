package grading

import "github.com/google/uuid"

// Student is one roster row. Raw per-assessment-type scores live in Scores;
// node-input mode additionally populates NodeInputs (the 0-100 percentages
// entered per node per type, keyed by NodeKey.String()) and NodeScores
// (their weighted equivalents). PerNode holds the derived per-node display
// scores, rounded to one decimal.
type Student struct {
	Key         string             `json:"key"`
	No          int                `json:"no"`
	NIM         string             `json:"nim"`
	Nama        string             `json:"nama"`
	Scores      map[string]float64 `json:"scores"`
	NodeInputs  map[string]float64 `json:"node_inputs,omitempty"`
	NodeScores  map[string]float64 `json:"node_scores,omitempty"`
	PerNode     map[string]float64 `json:"per_node,omitempty"`
	FinalScore  float64            `json:"final_score"`
	LetterGrade string             `json:"letter_grade"`
	PassStatus  string             `json:"pass_status"`
}

// NewStudent creates a blank roster row with a stable key and the given
// sequence number.
func NewStudent(no int) Student {
	return Student{
		Key:    uuid.NewString(),
		No:     no,
		Scores: make(map[string]float64),
	}
}

// Clone returns a deep copy, detaching every score map from the original.
func (s *Student) Clone() Student {
	out := *s
	out.Scores = copyScoreMap(s.Scores)
	out.NodeInputs = copyScoreMap(s.NodeInputs)
	out.NodeScores = copyScoreMap(s.NodeScores)
	out.PerNode = copyScoreMap(s.PerNode)
	return out
}

func copyScoreMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HasCompleteScores reports whether every assessment type carries a strictly
// positive raw score. Students with any missing or zero score are never
// graded, even partially.
func (s *Student) HasCompleteScores(types []string) bool {
	for _, t := range types {
		if s.Scores[t] <= 0 {
			return false
		}
	}
	return len(types) > 0
}

// ResetScores wipes every entered and derived value, keeping identity
// fields. Used by the destructive input-mode switch.
func (s *Student) ResetScores() {
	s.Scores = make(map[string]float64)
	s.NodeInputs = nil
	s.NodeScores = nil
	s.PerNode = nil
	s.FinalScore = 0
	s.LetterGrade = ""
	s.PassStatus = ""
}

// AlignScores backfills zeroed entries for newly added assessment types and
// drops entries for removed ones, preserving scores of surviving types.
func (s *Student) AlignScores(types []string) {
	next := make(map[string]float64, len(types))
	for _, t := range types {
		next[t] = s.Scores[t]
	}
	s.Scores = next
}

// HasAnyData reports whether the student carries any entered score in either
// input mode. Drives the confirmation requirement on mode switches.
func (s *Student) HasAnyData() bool {
	for _, v := range s.Scores {
		if v != 0 {
			return true
		}
	}
	for _, v := range s.NodeInputs {
		if v != 0 {
			return true
		}
	}
	return false
}
