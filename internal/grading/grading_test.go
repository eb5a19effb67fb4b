package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercentageRoundsToTwoDecimals(t *testing.T) {
	require.InDelta(t, 66.67, Percentage(2, 3), 0.001)
	require.InDelta(t, 85.0, Percentage(85, 100), 0.001)
	require.InDelta(t, 91.67, Percentage(55, 60), 0.001)
}

func TestPercentageZeroPoints(t *testing.T) {
	require.Zero(t, Percentage(10, 0))
	require.Zero(t, Percentage(10, -5))
}

func TestLetterBandLowerBoundsInclusive(t *testing.T) {
	cases := []struct {
		percentage float64
		letter     string
	}{
		{100, "A+"},
		{97, "A+"},
		{96.99, "A"},
		{93, "A"},
		{90, "A-"},
		{89.99, "B+"},
		{87, "B+"},
		{83, "B"},
		{80, "B-"},
		{77, "C+"},
		{73, "C"},
		{70, "C-"},
		{67, "D+"},
		{63, "D"},
		{60, "D-"},
		{59.99, "F"},
		{0, "F"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.letter, Letter(tc.percentage), "percentage %.2f", tc.percentage)
	}
}

func TestDerive(t *testing.T) {
	derived := Derive(90, 100)
	require.InDelta(t, 90.0, derived.Percentage, 0.001)
	require.Equal(t, "A-", derived.LetterGrade)

	derived = Derive(50, 60)
	require.InDelta(t, 83.33, derived.Percentage, 0.001)
	require.Equal(t, "B", derived.LetterGrade)
}
