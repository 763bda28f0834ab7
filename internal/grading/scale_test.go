package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterGradeBoundaries(t *testing.T) {
	tests := []struct {
		score  float64
		letter string
		status string
	}{
		{100, "A", StatusLulus},
		{80, "A", StatusLulus},
		{79.99, "A-", StatusLulus},
		{76.25, "A-", StatusLulus},
		{76.24, "B+", StatusLulus},
		{68.75, "B+", StatusLulus},
		{68.74, "B", StatusLulus},
		{65, "B", StatusLulus},
		{64.99, "B-", StatusLulus},
		{62.5, "B-", StatusLulus},
		{62.49, "C+", StatusLulus},
		{57.5, "C+", StatusLulus},
		{57.49, "C", StatusLulus},
		{55, "C", StatusLulus},
		{54.99, "C-", StatusTidakLulus},
		{51.25, "C-", StatusTidakLulus},
		{51.24, "D+", StatusTidakLulus},
		{43.75, "D+", StatusTidakLulus},
		{43.74, "D", StatusTidakLulus},
		{40, "D", StatusTidakLulus},
		{39.99, "E", StatusTidakLulus},
		{0, "E", StatusTidakLulus},
	}
	for _, tc := range tests {
		letter, status := LetterGrade(tc.score)
		assert.Equalf(t, tc.letter, letter, "score %.2f", tc.score)
		assert.Equalf(t, tc.status, status, "score %.2f", tc.score)
	}
}

func TestGradeBandsAreContiguous(t *testing.T) {
	bands := GradeBands()
	require.Len(t, bands, 11)
	for i := 0; i < len(bands)-1; i++ {
		assert.InDeltaf(t, bands[i].Min, bands[i+1].Max+0.01, 1e-6,
			"gap between %s and %s", bands[i].Letter, bands[i+1].Letter)
	}
	assert.Equal(t, 100.0, bands[0].Max)
	assert.Equal(t, 0.0, bands[len(bands)-1].Min)
}

func TestEveryScoreMatchesExactlyOneBand(t *testing.T) {
	bands := GradeBands()
	for i := 0; i <= 10000; i++ {
		score := float64(i) / 100
		matches := 0
		for _, band := range bands {
			if score >= band.Min && score <= band.Max {
				matches++
			}
		}
		assert.Equalf(t, 1, matches, "score %.2f", score)
	}
}

func TestPerformanceLevels(t *testing.T) {
	tests := []struct {
		score float64
		level int
		label string
	}{
		{90, 4, "Sangat Menguasai"},
		{76.25, 4, "Sangat Menguasai"},
		{70, 3, "Menguasai"},
		{65, 3, "Menguasai"},
		{60, 2, "Cukup Menguasai"},
		{51.25, 2, "Cukup Menguasai"},
		{45, 1, "Kurang Menguasai"},
		{40, 1, "Kurang Menguasai"},
		{39, 0, "Tidak Menguasai"},
		{0, 0, "Tidak Menguasai"},
	}
	for _, tc := range tests {
		p := Performance(tc.score)
		assert.Equalf(t, tc.level, p.Level, "score %.2f", tc.score)
		assert.Equalf(t, tc.label, p.Label, "score %.2f", tc.score)
	}
}
