package problemgen

import (
	"errors"
	"testing"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr error
	}{
		{"19", 19, nil},
		{" 19 ", 19, nil},
		{"019", 19, nil},
		{"3.0", 3, nil},
		{"-4", -4, nil},
		{"0", 0, nil},
		{"-0", 0, nil},
		{"2.5", 2.5, nil},
		{"1e3", 1000, nil},
		{"", 0, ErrEmptyAnswer},
		{"   ", 0, ErrEmptyAnswer},
		{"abc", 0, ErrNotNumeric},
		{"12 apples", 0, ErrNotNumeric},
		{"NaN", 0, ErrNotNumeric},
		{"Inf", 0, ErrNotNumeric},
	}

	for _, tc := range tests {
		got, err := ParseAnswer(tc.input)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("ParseAnswer(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("ParseAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsCorrect_ExactEquality(t *testing.T) {
	tests := []struct {
		user, correct float64
		want          bool
	}{
		{3, 3.0, true},
		{0, 0, true},
		{-7, -7, true},
		{3, 3.01, false},
		{19, 20, false},
		{-1, 1, false},
	}

	for _, tc := range tests {
		if got := IsCorrect(tc.user, tc.correct); got != tc.want {
			t.Errorf("IsCorrect(%v, %v) = %v, want %v", tc.user, tc.correct, got, tc.want)
		}
	}
}

func TestIsCorrect_ParsedString(t *testing.T) {
	user, err := ParseAnswer("3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsCorrect(user, 3) {
		t.Error("expected \"3\" to equal 3 after parsing")
	}
}

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{19, "19"},
		{2.5, "2.5"},
		{-3, "-3"},
		{1250000, "1250000"},
	}
	for _, tc := range tests {
		if got := FormatAnswer(tc.in); got != tc.want {
			t.Errorf("FormatAnswer(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
