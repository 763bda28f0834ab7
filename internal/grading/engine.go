package grading

import "math"

// StudentResult is the outcome of one forward computation.
type StudentResult struct {
	FinalScore  float64            `json:"final_score"`
	LetterGrade string             `json:"letter_grade"`
	PassStatus  string             `json:"pass_status"`
	PerNode     map[string]float64 `json:"per_node"`
}

// ComputeStudentResult derives the final score, letter grade and pass status
// for one student from their raw assessment-type scores and the weight
// matrix.
//
// Each node scores the weight-normalized average of its assessment types:
// Σ(raw·weight) / Σ(weight). Node scores are then combined weighted by each
// node's total weight. A matrix with no weights at all degrades to the plain
// arithmetic mean of the raw scores. A student missing any raw score is not
// graded at all.
func ComputeStudentResult(s *Student, m WeightMatrix, types []string) StudentResult {
	if !s.HasCompleteScores(types) {
		return StudentResult{PerNode: map[string]float64{}}
	}

	perNode := make(map[string]float64)
	totalWeightedScore := 0.0
	totalWeight := 0.0

	for _, node := range m.Nodes() {
		weights := m.Weights(node)
		weightedSum := 0.0
		nodeWeight := 0.0
		for _, t := range types {
			w := weights[t]
			weightedSum += s.Scores[t] * w
			nodeWeight += w
		}
		if nodeWeight <= 0 {
			continue
		}
		nodeScore := weightedSum / nodeWeight
		perNode[node.String()] = round1(nodeScore)
		totalWeightedScore += nodeScore * nodeWeight
		totalWeight += nodeWeight
	}

	var final float64
	if totalWeight == 0 {
		// No weights configured anywhere: equal-weight fallback.
		sum := 0.0
		for _, t := range types {
			sum += s.Scores[t]
		}
		final = sum / float64(len(types))
	} else {
		final = totalWeightedScore / totalWeight
	}
	final = round2(final)

	letter, status := LetterGrade(final)
	return StudentResult{
		FinalScore:  final,
		LetterGrade: letter,
		PassStatus:  status,
		PerNode:     perNode,
	}
}

// ApplyResult stores a computed result back onto the student.
func (s *Student) ApplyResult(r StudentResult) {
	s.FinalScore = r.FinalScore
	s.LetterGrade = r.LetterGrade
	s.PassStatus = r.PassStatus
	s.PerNode = r.PerNode
}

// ApplyNodeInputs back-solves raw assessment-type scores from node-level
// inputs (node-input mode). For every node and type the entered 0-100
// percentage is turned into a weighted contribution input·weight/100, and
// each type's raw score becomes the weight-normalized average
// Σ(input·weight) / Σ(weight) over all nodes holding a non-zero weight for
// that type. A type with no weighted nodes resets to 0. Callers re-run the
// forward computation afterwards.
func ApplyNodeInputs(s *Student, m WeightMatrix, types []string) {
	if s.NodeInputs == nil {
		s.NodeInputs = make(map[string]float64)
	}
	s.NodeScores = make(map[string]float64)
	if s.Scores == nil {
		s.Scores = make(map[string]float64)
	}

	nodes := m.Nodes()
	for _, t := range types {
		weightedInputs := 0.0
		weightTotal := 0.0
		for _, node := range nodes {
			w := m.Weights(node)[t]
			key := node.Key(t).String()
			input := s.NodeInputs[key]
			s.NodeScores[key] = round2(input * w / 100)
			if w <= 0 {
				continue
			}
			weightedInputs += input * w
			weightTotal += w
		}
		if weightTotal > 0 {
			s.Scores[t] = round2(weightedInputs / weightTotal)
		} else {
			s.Scores[t] = 0
		}
	}
}

// ClassStatistics aggregates the roster for the summary row and reports.
// Column averages are unconditional means over every student, zero
// contributions included; the pass rate considers only students with
// complete raw scores.
type ClassStatistics struct {
	Averages      map[string]float64 `json:"averages"`
	AverageFinal  float64            `json:"average_final"`
	CompleteCount int                `json:"complete_count"`
	PassCount     int                `json:"pass_count"`
	PassRate      float64            `json:"pass_rate"`
}

// ComputeClassStatistics builds the per-column averages and the pass rate.
func ComputeClassStatistics(students []Student, types []string) ClassStatistics {
	stats := ClassStatistics{Averages: make(map[string]float64, len(types))}
	if len(students) == 0 {
		return stats
	}

	n := float64(len(students))
	for _, t := range types {
		sum := 0.0
		for i := range students {
			sum += students[i].Scores[t]
		}
		stats.Averages[t] = round2(sum / n)
	}

	finalSum := 0.0
	for i := range students {
		s := &students[i]
		finalSum += s.FinalScore
		if !s.HasCompleteScores(types) {
			continue
		}
		stats.CompleteCount++
		if s.PassStatus == StatusLulus {
			stats.PassCount++
		}
	}
	stats.AverageFinal = round2(finalSum / n)
	if stats.CompleteCount > 0 {
		stats.PassRate = round2(float64(stats.PassCount) / float64(stats.CompleteCount) * 100)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ClampScore bounds an entered or imported score to the valid [0, 100]
// range.
func ClampScore(v float64) float64 {
	return clampScore(v)
}
