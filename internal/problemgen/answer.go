package problemgen

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmptyAnswer is returned for blank input.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrNotNumeric is returned when input does not parse as a finite number.
	ErrNotNumeric = errors.New("answer is not a number")
)

// ParseAnswer converts learner input to a number.
//
// Normalization rules:
// - Whitespace is trimmed
// - Decimal and exponent forms are accepted ("3", "3.0", "-0.5", "1e3")
// - NaN and infinities are rejected
func ParseAnswer(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrEmptyAnswer
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumeric
	}
	return f, nil
}

// IsCorrect grades by exact numeric equality, with no tolerance.
func IsCorrect(user, correct float64) bool {
	return user == correct
}

// FormatAnswer renders a number in its shortest exact form ("19", "2.5").
func FormatAnswer(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
