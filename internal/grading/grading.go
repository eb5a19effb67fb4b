// Package grading holds the pure grade derivation rules: converting a raw
// grade and a point value into a percentage and a letter grade. No state,
// no I/O.
package grading

import "math"

// Derivation carries the values derived from a raw grade.
type Derivation struct {
	Percentage  float64 `json:"percentage"`
	LetterGrade string  `json:"letter_grade"`
}

// Percentage returns grade/points*100 rounded to two decimals. A non-positive
// point value yields 0 rather than a division error.
func Percentage(grade, points float64) float64 {
	if points <= 0 {
		return 0
	}
	return math.Round(grade/points*100*100) / 100
}

// Letter maps a percentage onto the fixed letter-grade bands. Lower bounds
// are inclusive: exactly 90 is an A-, not a B+.
func Letter(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 63:
		return "D"
	case percentage >= 60:
		return "D-"
	default:
		return "F"
	}
}

// Derive computes both the percentage and the letter grade.
func Derive(grade, points float64) Derivation {
	pct := Percentage(grade, points)
	return Derivation{Percentage: pct, LetterGrade: Letter(pct)}
}
