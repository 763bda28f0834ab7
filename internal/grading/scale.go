package grading

// Pass statuses as displayed on transcripts.
const (
	StatusLulus      = "Lulus"
	StatusTidakLulus = "Tidak Lulus"
)

// GradeBand is one row of the institutional grade scale. Boundaries are
// inclusive and the table is contiguous from 0 to 100.
type GradeBand struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Letter string  `json:"letter"`
	Status string  `json:"status"`
}

var gradeScale = []GradeBand{
	{Min: 80, Max: 100, Letter: "A", Status: StatusLulus},
	{Min: 76.25, Max: 79.99, Letter: "A-", Status: StatusLulus},
	{Min: 68.75, Max: 76.24, Letter: "B+", Status: StatusLulus},
	{Min: 65, Max: 68.74, Letter: "B", Status: StatusLulus},
	{Min: 62.5, Max: 64.99, Letter: "B-", Status: StatusLulus},
	{Min: 57.5, Max: 62.49, Letter: "C+", Status: StatusLulus},
	{Min: 55, Max: 57.49, Letter: "C", Status: StatusLulus},
	{Min: 51.25, Max: 54.99, Letter: "C-", Status: StatusTidakLulus},
	{Min: 43.75, Max: 51.24, Letter: "D+", Status: StatusTidakLulus},
	{Min: 40, Max: 43.74, Letter: "D", Status: StatusTidakLulus},
	{Min: 0, Max: 39.99, Letter: "E", Status: StatusTidakLulus},
}

// LetterGrade maps a final score to its letter and pass status. Scores
// falling through the table (unreachable with the contiguous bands) default
// to E / Tidak Lulus.
func LetterGrade(score float64) (string, string) {
	for _, band := range gradeScale {
		if score >= band.Min && score <= band.Max {
			return band.Letter, band.Status
		}
	}
	return "E", StatusTidakLulus
}

// GradeBands exposes a copy of the scale for reports and exports.
func GradeBands() []GradeBand {
	return append([]GradeBand(nil), gradeScale...)
}

// PerformanceLevel is the coarser 0-4 mastery indicator used for reporting
// and radar charts. It never feeds pass/fail.
type PerformanceLevel struct {
	Level int    `json:"level"`
	Label string `json:"label"`
}

// Performance maps a score to its mastery level.
func Performance(score float64) PerformanceLevel {
	switch {
	case score >= 76.25:
		return PerformanceLevel{Level: 4, Label: "Sangat Menguasai"}
	case score >= 65:
		return PerformanceLevel{Level: 3, Label: "Menguasai"}
	case score >= 51.25:
		return PerformanceLevel{Level: 2, Label: "Cukup Menguasai"}
	case score >= 40:
		return PerformanceLevel{Level: 1, Label: "Kurang Menguasai"}
	default:
		return PerformanceLevel{Level: 0, Label: "Tidak Menguasai"}
	}
}
